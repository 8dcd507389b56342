package notify

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

// Service fans an announcement out to the configured channels with a shared
// rate limit. Announcements beyond the budget are dropped, not queued; every
// mismatched check cycle produces one, and operators only need the first.
type Service struct {
	log      logx.Logger
	limiter  *rate.Limiter
	channels []Notifier
}

func NewService(log logx.Logger, ratePerSec int, channels ...Notifier) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Service{
		log:      log,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		channels: channels,
	}
}

// Announce pushes info to every channel, best-effort.
func (s *Service) Announce(ctx context.Context, info UpdateInfo) {
	if len(s.channels) == 0 {
		return
	}
	if !s.limiter.Allow() {
		s.log.Debug("announcement dropped (rate limited)", logx.String("version", info.Version))
		return
	}
	if info.DetectedAt.IsZero() {
		info.DetectedAt = time.Now()
	}

	for _, ch := range s.channels {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := ch.NotifyUpdate(cctx, info); err != nil {
			s.log.Warn("announcement failed", logx.Err(err))
		}
		cancel()
	}
}
