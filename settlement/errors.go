package settlement

import (
	"github.com/pkg/errors"

	"github.com/varunguleriaCodes/DeWebStatus/ledger"
)

var (
	// ErrConflict is returned when the validator already has a live intent.
	// The request is not queued.
	ErrConflict = ledger.ErrConflict
	// ErrRailRejected means the rail refused the transfer. Nothing was paid
	// and the pending amount is unchanged.
	ErrRailRejected = errors.New("payout rejected by payment rail")
	// ErrRailTransient means the transfer may or may not have executed. The
	// intent stays submitted until reconciliation resolves it.
	ErrRailTransient = errors.New("payout outcome unknown")
	// ErrInProgress is returned when the caller stopped waiting after the
	// intent was committed. The attempt keeps running.
	ErrInProgress = errors.New("settlement in progress")
	// ErrConfirmationNotRecorded means the rail executed the transfer but the
	// confirmation could not be persisted.
	ErrConfirmationNotRecorded = errors.New("transfer executed but confirmation not recorded")
	// ErrClosed is returned by a closed engine.
	ErrClosed = errors.New("settlement engine closed")
)

// OutcomeUnknown reports whether err leaves the payout unresolved, as
// opposed to a failure where nothing was transferred.
func OutcomeUnknown(err error) bool {
	return errors.Is(err, ErrRailTransient) ||
		errors.Is(err, ErrInProgress) ||
		errors.Is(err, ErrConfirmationNotRecorded)
}
