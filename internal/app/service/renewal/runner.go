package renewal

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/DallanL/nms-like-n-subscribe/pkg/config"
)

// Runner drives the engine on the configured poll interval as a background
// process tied to service lifetime. One cycle runs immediately at startup.
type Runner struct {
	engine   *Engine
	interval time.Duration
	log      *zap.SugaredLogger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(e *Engine, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Runner {
	return &Runner{
		engine:   e,
		interval: cfg.Renewal.PollInterval,
		log:      log,
		done:     make(chan struct{}),
	}
}

func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.loop(ctx)
}

// Stop cancels the loop and waits for an in-flight cycle to wind down, or for
// the shutdown deadline, whichever comes first.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.log.Warnw("renewal loop did not finish before shutdown deadline")
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	r.log.Infow("renewal loop started", "interval", r.interval.String())

	r.engine.Cycle(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Infow("renewal loop stopped")
			return
		case <-ticker.C:
			r.engine.Cycle(ctx)
		}
	}
}

func registerRunner(lc fx.Lifecycle, r *Runner, log *zap.SugaredLogger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting subscription renewal runner")
			r.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping subscription renewal runner")
			return r.Stop(ctx)
		},
	})
}
