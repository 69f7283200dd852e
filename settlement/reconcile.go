package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/photon-storage/go-common/log"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
)

const (
	reasonAbandoned  = "abandoned before submission"
	reasonNotFound   = "no transfer found for idempotency key"
	reasonUnverified = "unverified: rail has no lookup, manual review required"
)

// Report summarizes one reconciliation pass.
type Report struct {
	Scanned    int
	Confirmed  int
	Failed     int
	Unverified int
	// Pending counts submitted intents kept for a later pass.
	Pending int
	Skipped int
}

func (r *Report) add(result string) {
	switch result {
	case "confirmed":
		r.Confirmed++
	case "failed":
		r.Failed++
	case "unverified":
		r.Unverified++
	case "pending":
		r.Pending++
	default:
		r.Skipped++
	}
}

// Reconcile resolves live intents older than the reconcile delay that no
// attempt in this process is working on. Errors on single intents are
// logged and the first one is returned once every intent was visited.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	now := e.now()
	intents, err := e.store.LiveIntents(ctx, now.Add(-e.cfg.ReconcileDelay))
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report = &Report{}
		g      errgroup.Group
	)
	g.SetLimit(e.cfg.ReconcileWorkers)
	for _, intent := range intents {
		intent := intent
		if e.inFlight(intent.ID) {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			result, err := e.reconcileIntent(ctx, intent, now)
			if err != nil {
				log.Error("reconcile intent failed",
					"intent", intent.ID,
					"state", intent.State,
					"error", err,
				)
				result = "error"
			} else if result != "pending" {
				e.metrics.Reconciled(result)
			}

			mu.Lock()
			report.Scanned++
			report.add(result)
			mu.Unlock()
			return err
		})
	}
	err = g.Wait()

	if report.Scanned > 0 {
		log.Info("reconciliation pass done",
			"scanned", report.Scanned,
			"confirmed", report.Confirmed,
			"failed", report.Failed,
			"unverified", report.Unverified,
			"pending", report.Pending,
		)
	}

	return report, err
}

func (e *Engine) reconcileIntent(
	ctx context.Context,
	intent *orm.SettlementIntent,
	now time.Time,
) (string, error) {
	if intent.State == orm.IntentCreated {
		return e.fail(ctx, intent, reasonAbandoned, "failed")
	}

	submittedAt := intent.UpdatedAt
	if intent.SubmittedAt != nil {
		submittedAt = *intent.SubmittedAt
	}
	expired := now.Sub(submittedAt) >= e.cfg.GracePeriod

	if e.lookup == nil {
		if !expired {
			return "pending", nil
		}

		result, err := e.fail(ctx, intent, reasonUnverified, "unverified")
		if err == nil && result == "unverified" {
			log.Error("submitted intent failed without rail verification",
				"intent", intent.ID,
				"validator", intent.ValidatorID,
				"amount", intent.Amount,
				"idempotency_key", intent.IdempotencyKey,
			)
			e.metrics.UnverifiedFailure()
		}
		return result, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.cfg.RailTimeout)
	transferID, found, err := e.lookup.Lookup(lookupCtx, intent.IdempotencyKey)
	cancel()
	if err != nil {
		return "", errors.Wrap(err, "lookup transfer")
	}

	if found {
		if err := e.store.MarkIntentConfirmed(ctx, intent.ID, transferID); errors.Is(err, ledger.ErrInvalidTransition) {
			return "skipped", nil
		} else if err != nil {
			return "", err
		}
		e.metrics.Settled(intent.Amount)
		return "confirmed", nil
	}

	if !expired {
		return "pending", nil
	}

	return e.fail(ctx, intent, reasonNotFound, "failed")
}

func (e *Engine) fail(ctx context.Context, intent *orm.SettlementIntent, reason, result string) (string, error) {
	err := e.store.MarkIntentFailed(ctx, intent.ID, reason)
	if errors.Is(err, ledger.ErrInvalidTransition) {
		// resolved in the meantime
		return "skipped", nil
	} else if err != nil {
		return "", err
	}

	return result, nil
}
