// Package scheduler runs the invoicing pipeline for every billable
// customer on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/arledger/internal/clock"
	"github.com/smallbiznis/arledger/internal/config"
	invoicingdomain "github.com/smallbiznis/arledger/internal/invoicing/domain"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(Start),
)

// Config controls the scheduler loop.
type Config struct {
	// RunInterval is the gap between invoice runs. Zero or negative
	// disables the scheduler entirely.
	RunInterval time.Duration
	// RunTimeout bounds a single invoice run.
	RunTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.RunTimeout <= 0 {
		c.RunTimeout = 5 * time.Minute
	}
	return c
}

// ProvideConfig derives the scheduler config from application config.
func ProvideConfig(cfg config.Config) Config {
	return Config{RunInterval: cfg.InvoiceRunInterval}
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Cfg       Config
	Clock     clock.Clock
	Invoicing invoicingdomain.Service
}

// Scheduler periodically issues invoices for all billable customers.
type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	invoicing invoicingdomain.Service
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:       p.Log.Named("scheduler"),
		cfg:       p.Cfg.withDefaults(),
		clock:     p.Clock,
		invoicing: p.Invoicing,
	}
}

// RunOnce issues invoices for every billable customer. Customers that
// fail are reported in the run summary, not as a run error.
func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.RunTimeout)
	defer cancel()

	started := s.clock.Now()
	resp, err := s.invoicing.RunInvoices(ctx, invoicingdomain.RunInvoicesRequest{})
	if err != nil {
		return err
	}

	s.log.Info("scheduled invoice run finished",
		zap.Int("issued", len(resp.Results)),
		zap.Int("failed", len(resp.Failures)),
		zap.Duration("elapsed", s.clock.Now().Sub(started)),
	)
	return nil
}

// RunForever runs invoice runs on the configured interval until ctx is
// canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduled invoice run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start launches the scheduler loop in the background when an interval
// is configured.
func Start(lc fx.Lifecycle, sched *Scheduler) {
	if sched.cfg.RunInterval <= 0 {
		sched.log.Info("scheduler disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
