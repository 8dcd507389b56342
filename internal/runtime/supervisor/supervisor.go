// Package supervisor manages named goroutines tied to a shared context:
// panic recovery, graceful stop, timeout-aware waiting.
package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc

	log logx.Logger

	doneOnce sync.Once
	doneCh   chan struct{}
	wg       sync.WaitGroup
}

type Option func(*Supervisor)

func WithLogger(log logx.Logger) Option {
	return func(s *Supervisor) { s.log = log }
}

func New(parent context.Context, opts ...Option) *Supervisor {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Supervisor{
		ctx:    ctx,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Supervisor) Context() context.Context { return s.ctx }

// Go starts fn under the supervisor. Panics are recovered and logged; they
// never take down the process.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("goroutine panicked",
					logx.String("name", name),
					logx.Any("panic", r),
					logx.String("stack", string(debug.Stack())),
				)
			}
		}()
		if err := fn(s.ctx); err != nil && err != context.Canceled {
			s.log.Warn("goroutine exited with error", logx.String("name", name), logx.Err(err))
		}
	}()
}

// Stop cancels the supervisor context and waits for all goroutines, up to
// the given timeout (0 means wait indefinitely).
func (s *Supervisor) Stop(timeout time.Duration) error {
	s.cancel()
	s.doneOnce.Do(func() {
		go func() {
			s.wg.Wait()
			close(s.doneCh)
		}()
	})

	if timeout <= 0 {
		<-s.doneCh
		return nil
	}
	select {
	case <-s.doneCh:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("supervisor: stop timed out after %s", timeout)
	}
}
