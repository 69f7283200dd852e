// Package settlement pays validator balances out through a payment rail,
// at most once per accrued amount.
package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/photon-storage/go-common/log"

	"github.com/varunguleriaCodes/DeWebStatus/config"
	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
	"github.com/varunguleriaCodes/DeWebStatus/metrics"
	"github.com/varunguleriaCodes/DeWebStatus/rail"
)

// Outcome is the result class of a settlement attempt.
type Outcome string

const (
	OutcomeSettled        Outcome = "settled"
	OutcomeNothingPending Outcome = "nothing_pending"
	OutcomeRejected       Outcome = "rejected"
	OutcomeUnresolved     Outcome = "outcome_unknown"
	OutcomeInProgress     Outcome = "in_progress"
	OutcomeConflict       Outcome = "conflict"
	OutcomeError          Outcome = "error"
)

// Result describes a settlement attempt. IntentID is set whenever an intent
// was written, including on ErrRailTransient, ErrRailRejected and
// ErrInProgress.
type Result struct {
	Outcome    Outcome
	Amount     uint64
	IntentID   uint64
	TransferID string
}

// Engine runs the settlement protocol.
type Engine struct {
	store   *ledger.Store
	rail    rail.PaymentRail
	lookup  rail.Lookuper
	cfg     config.Settlement
	metrics *metrics.Metrics
	now     func() time.Time

	mu       sync.Mutex
	closed   bool
	inflight map[uint64]struct{}
	wg       sync.WaitGroup
}

// NewEngine returns an engine paying through r. Reconciliation looks
// transfers up when r implements rail.Lookuper.
func NewEngine(
	store *ledger.Store,
	r rail.PaymentRail,
	cfg config.Settlement,
	m *metrics.Metrics,
) *Engine {
	cfg.SetDefaults()
	lookup, _ := r.(rail.Lookuper)

	return &Engine{
		store:    store,
		rail:     r,
		lookup:   lookup,
		cfg:      cfg,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
		inflight: make(map[uint64]struct{}),
	}
}

// Settle pays out the pending amount of a validator.
//
// The validator row is locked only while the intent is written. The rail is
// called after commit, detached from ctx: if ctx ends first, Settle returns
// ErrInProgress and the attempt runs to completion in the background.
func (e *Engine) Settle(ctx context.Context, validatorID uint64) (*Result, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}

	var (
		address string
		intent  *orm.SettlementIntent
	)
	err := e.store.Transaction(ctx, func(tx *ledger.Tx) error {
		snapshot, err := tx.LockValidatorForSettlement(validatorID)
		if err != nil {
			return err
		}

		active, err := tx.ActiveIntent(validatorID)
		if err != nil {
			return err
		}

		if active != nil {
			return errors.Wrapf(ErrConflict,
				"validator %d has live intent %d", validatorID, active.ID)
		}

		if snapshot.PendingAmount == 0 {
			return nil
		}

		if snapshot.PayoutAddress == "" {
			return errors.Wrapf(ErrConflict,
				"validator %d has no payout address", validatorID)
		}

		address = snapshot.PayoutAddress
		intent, err = tx.WriteIntent(validatorID, snapshot.PendingAmount)
		return err
	})
	if errors.Is(err, ErrConflict) {
		e.metrics.Settlement(string(OutcomeConflict))
		return nil, err
	} else if err != nil {
		e.metrics.Settlement(string(OutcomeError))
		return nil, err
	}

	if intent == nil {
		e.metrics.Settlement(string(OutcomeNothingPending))
		return &Result{Outcome: OutcomeNothingPending}, nil
	}

	type attempt struct {
		res *Result
		err error
	}
	done := make(chan attempt, 1)
	if !e.track(intent.ID) {
		// intent stays created and is failed by reconciliation
		return &Result{Outcome: OutcomeError, Amount: intent.Amount, IntentID: intent.ID}, ErrClosed
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		defer e.wg.Done()

		res, err := e.execute(detached, intent, address)
		e.untrack(intent.ID)
		done <- attempt{res: res, err: err}
	}()

	select {
	case a := <-done:
		return a.res, a.err

	case <-ctx.Done():
		log.Info("settlement continues after caller left",
			"validator", validatorID,
			"intent", intent.ID,
		)
		return &Result{
			Outcome:  OutcomeInProgress,
			Amount:   intent.Amount,
			IntentID: intent.ID,
		}, errors.Wrapf(ErrInProgress, "intent %d", intent.ID)
	}
}

// Close waits for detached attempts to finish. Settle fails with ErrClosed
// afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Engine) execute(ctx context.Context, intent *orm.SettlementIntent, address string) (*Result, error) {
	res := &Result{Amount: intent.Amount, IntentID: intent.ID}

	if err := e.store.MarkIntentSubmitted(ctx, intent.ID); err != nil {
		log.Error("mark intent submitted failed",
			"intent", intent.ID,
			"error", err,
		)
		e.metrics.Settlement(string(OutcomeError))
		res.Outcome = OutcomeError
		return res, errors.Wrapf(err, "intent %d", intent.ID)
	}

	railCtx, cancel := context.WithTimeout(ctx, e.cfg.RailTimeout)
	transferID, err := e.rail.Transfer(railCtx, address, intent.Amount, intent.IdempotencyKey)
	cancel()
	if rail.IsRejected(err) {
		if ferr := e.store.MarkIntentFailed(ctx, intent.ID, err.Error()); ferr != nil {
			log.Error("mark rejected intent failed",
				"intent", intent.ID,
				"error", ferr,
			)
		}
		e.metrics.Settlement(string(OutcomeRejected))
		res.Outcome = OutcomeRejected
		return res, errors.Wrapf(ErrRailRejected, "intent %d: %v", intent.ID, err)
	} else if err != nil {
		log.Error("payout outcome unknown, awaiting reconciliation",
			"intent", intent.ID,
			"validator", intent.ValidatorID,
			"amount", intent.Amount,
			"error", err,
		)
		e.metrics.Settlement(string(OutcomeUnresolved))
		res.Outcome = OutcomeUnresolved
		return res, errors.Wrapf(ErrRailTransient, "intent %d: %v", intent.ID, err)
	}

	res.TransferID = transferID
	if err := e.store.MarkIntentConfirmed(ctx, intent.ID, transferID); err != nil {
		log.Error("transfer executed but confirmation not recorded",
			"intent", intent.ID,
			"transfer", transferID,
			"error", err,
		)
		e.metrics.Settlement(string(OutcomeUnresolved))
		res.Outcome = OutcomeUnresolved
		return res, errors.Wrapf(ErrConfirmationNotRecorded, "intent %d: %v", intent.ID, err)
	}

	log.Info("validator settled",
		"validator", intent.ValidatorID,
		"intent", intent.ID,
		"amount", intent.Amount,
		"transfer", transferID,
	)
	e.metrics.Settlement(string(OutcomeSettled))
	e.metrics.Settled(intent.Amount)
	res.Outcome = OutcomeSettled
	return res, nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}

func (e *Engine) track(intentID uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}

	e.inflight[intentID] = struct{}{}
	e.wg.Add(1)
	return true
}

func (e *Engine) untrack(intentID uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.inflight, intentID)
}

func (e *Engine) inFlight(intentID uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.inflight[intentID]
	return ok
}
