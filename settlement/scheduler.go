package settlement

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/photon-storage/go-common/log"
)

// Scheduler settles every validator whose pending amount reached the
// minimum payout, once per interval.
type Scheduler struct {
	ctx      context.Context
	engine   *Engine
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
}

// NewScheduler returns a scheduler for the engine.
func NewScheduler(ctx context.Context, engine *Engine) *Scheduler {
	return &Scheduler{
		ctx:      ctx,
		engine:   engine,
		interval: engine.cfg.AutoSettleInterval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run executes payout rounds until stopped.
func (s *Scheduler) Run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return

		case <-s.ctx.Done():
			return

		case <-ticker.C:

		}

		if _, err := s.engine.SettleDue(s.ctx); err != nil {
			log.Error("payout round failed", "error", err)
		}
	}
}

// Stop exits the loop and waits for the running round.
func (s *Scheduler) Stop() {
	close(s.quit)
	<-s.done
}

// SettleDue settles the validators whose pending amount reached the minimum
// payout and returns how many were paid. Validators with a live intent are
// skipped.
func (e *Engine) SettleDue(ctx context.Context) (int, error) {
	ids, err := e.store.SettleableValidators(ctx, e.cfg.MinPayout)
	if err != nil {
		return 0, err
	}

	settled := make([]bool, len(ids))
	g := errgroup.Group{}
	g.SetLimit(e.cfg.ReconcileWorkers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			res, err := e.Settle(ctx, id)
			switch {
			case errors.Is(err, ErrConflict):
				return nil

			case err != nil:
				log.Error("scheduled settlement failed",
					"validator", id,
					"error", err,
				)
				return nil
			}

			settled[i] = res.Outcome == OutcomeSettled
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := 0
	for _, ok := range settled {
		if ok {
			count++
		}
	}

	return count, nil
}
