package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/GreatAuk/webupdate/internal/artifact"
	"github.com/GreatAuk/webupdate/internal/config"
	"github.com/GreatAuk/webupdate/internal/dismiss"
	"github.com/GreatAuk/webupdate/internal/eventbus"
	"github.com/GreatAuk/webupdate/internal/notice"
	"github.com/GreatAuk/webupdate/internal/notify"
	"github.com/GreatAuk/webupdate/internal/poller"
	"github.com/GreatAuk/webupdate/internal/runtime/supervisor"
	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

func initWatchCmd() {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the update-watch sidecar",
		Long: "Polls a deployed site's version manifest, maintains the notification " +
			"fragment for the page, and announces new builds to operators.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWatch(ctx, cfgPath)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "./webupdate.yaml", "path to config file (json or yaml)")

	rootCmd.AddCommand(cmd)
}

func runWatch(ctx context.Context, cfgPath string) error {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	builtVersion, err := resolveBuiltVersion(cfg)
	if err != nil {
		return err
	}

	var store dismiss.Store
	if cfg.Storage != nil {
		busy, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
		store, err = dismiss.Open(dismiss.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busy,
		}, log.With(logx.String("comp", "dismiss")))
		if err != nil {
			return fmt.Errorf("open dismissal store: %w", err)
		}
		if store != nil {
			defer store.Close()
		}
	}

	interval, err := config.ParseDurationOrDefault("check_interval", cfg.CheckInterval, poller.DefaultCheckInterval)
	if err != nil {
		return err
	}

	var anchor notice.Anchor
	if strings.TrimSpace(cfg.AnchorFile) != "" {
		anchor = notice.NewFileAnchor(cfg.AnchorFile)
	} else {
		anchor = notice.NewMemoryAnchor()
	}

	bus := eventbus.New()
	opts := poller.Options{
		Base:              cfg.URLBase,
		BuiltVersion:      builtVersion,
		CheckInterval:     interval,
		CheckSchedule:     cfg.CheckSchedule,
		HideDefaultNotice: cfg.HiddenDefaultNotification,
		HideDismissButton: cfg.HiddenDismissButton,
		CustomHTML:        cfg.CustomNotificationHTML,
		Locale:            cfg.Locale,
		LocaleData:        cfg.LocaleData,
		Anchor:            anchor,
		Store:             store,
		Bus:               bus,
		Log:               log,
	}
	if cfg.NotificationProps != nil {
		opts.Props = *cfg.NotificationProps
	}

	session, err := poller.Start(ctx, opts)
	if err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer session.Close()

	sup := supervisor.New(ctx, supervisor.WithLogger(log.With(logx.String("comp", "watch"))))

	startAnnouncer(sup, cfg, bus, builtVersion, log)
	startConfigWatch(sup, mgr, logSvc, log)
	startHUPTrigger(sup, session, log)
	startWatchdog(sup, log)

	if sent, err := sd.SdNotify(false, sd.SdNotifyReady); err != nil {
		log.Warn("sd_notify failed", logx.Err(err))
	} else if sent {
		log.Debug("sd_notify: ready")
	}

	log.Info("watching for new builds",
		logx.String("url", cfg.URLBase),
		logx.String("built_version", builtVersion),
		logx.Duration("interval", interval),
	)

	<-ctx.Done()
	_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
	return sup.Stop(10 * time.Second)
}

func resolveBuiltVersion(cfg *config.Config) (string, error) {
	if v := strings.TrimSpace(cfg.BuiltVersion); v != "" {
		return v, nil
	}
	m, err := artifact.Read(cfg.BuiltVersionFile)
	if err != nil {
		return "", fmt.Errorf("read built version file: %w", err)
	}
	if strings.TrimSpace(m.Version) == "" {
		return "", fmt.Errorf("built version file %s has empty version", cfg.BuiltVersionFile)
	}
	return m.Version, nil
}

// startAnnouncer forwards update-detected events to the operator channels.
func startAnnouncer(sup *supervisor.Supervisor, cfg *config.Config, bus eventbus.Bus, builtVersion string, log logx.Logger) {
	if cfg.Notify == nil {
		return
	}

	var channels []notify.Notifier
	if cfg.Notify.Stdout {
		channels = append(channels, &notify.WriterNotifier{Out: os.Stdout})
	}
	if tg := cfg.Notify.Telegram; tg != nil {
		tn, err := notify.NewTelegram(tg.Token, tg.ChatID)
		if err != nil {
			log.Warn("telegram channel disabled", logx.Err(err))
		} else {
			channels = append(channels, tn)
		}
	}
	if len(channels) == 0 {
		return
	}

	svc := notify.NewService(log.With(logx.String("comp", "notify")), cfg.Notify.RatePerSec, channels...)
	events, unsub := bus.Subscribe(16)

	sup.Go("watch.announce", func(ctx context.Context) error {
		defer unsub()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case e, ok := <-events:
				if !ok {
					return nil
				}
				if e.Type != poller.EventUpdateDetected {
					continue
				}
				ue, ok := e.Data.(poller.UpdateEvent)
				if !ok {
					continue
				}
				svc.Announce(ctx, notify.UpdateInfo{
					URL:             cfg.URLBase,
					Version:         ue.Version,
					PreviousVersion: builtVersion,
					DetectedAt:      e.Time,
				})
			}
		}
	})
}

// startConfigWatch hot-reloads what can change without a restart (logging).
func startConfigWatch(sup *supervisor.Supervisor, mgr *config.Manager, logSvc *logx.Service, log logx.Logger) {
	updates := mgr.Subscribe(4)

	sup.Go("watch.config", func(ctx context.Context) error {
		defer mgr.Unsubscribe(updates)
		return mgr.Watch(ctx)
	})
	sup.Go("watch.config.apply", func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cfg, ok := <-updates:
				if !ok {
					return nil
				}
				logSvc.Apply(logx.Config{
					Level:   cfg.Logging.Level,
					Console: cfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: cfg.Logging.File.Enabled,
						Path:    cfg.Logging.File.Path,
					},
				})
				log.Info("logging config applied; other changes take effect on restart")
			}
		}
	})
}

// startHUPTrigger maps SIGHUP to an immediate, undebounced check.
func startHUPTrigger(sup *supervisor.Supervisor, session *poller.Session, log logx.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	sup.Go("watch.sighup", func(ctx context.Context) error {
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-hup:
				log.Info("SIGHUP received, checking now")
				session.CheckNow()
			}
		}
	})
}

// startWatchdog pets the systemd watchdog when one is configured.
func startWatchdog(sup *supervisor.Supervisor, log logx.Logger) {
	interval, err := sd.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	sup.Go("watch.watchdog", func(ctx context.Context) error {
		t := time.NewTicker(interval / 2)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				if _, err := sd.SdNotify(false, sd.SdNotifyWatchdog); err != nil {
					log.Warn("watchdog notify failed", logx.Err(err))
				}
			}
		}
	})
}
