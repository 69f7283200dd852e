package settlement

import (
	"context"
	"time"

	"github.com/photon-storage/go-common/log"
)

// Reconciler runs reconciliation passes periodically.
type Reconciler struct {
	ctx      context.Context
	engine   *Engine
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
}

// NewReconciler returns a reconciler for the engine.
func NewReconciler(ctx context.Context, engine *Engine) *Reconciler {
	return &Reconciler{
		ctx:      ctx,
		engine:   engine,
		interval: engine.cfg.ReconcileInterval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run executes one pass immediately to recover intents left by a previous
// process, then one per interval until stopped.
func (r *Reconciler) Run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.engine.Reconcile(r.ctx); err != nil {
			log.Error("reconciliation pass failed", "error", err)
		}

		select {
		case <-r.quit:
			return

		case <-r.ctx.Done():
			return

		case <-ticker.C:

		}
	}
}

// Stop exits the loop and waits for the running pass.
func (r *Reconciler) Stop() {
	close(r.quit)
	<-r.done
}
