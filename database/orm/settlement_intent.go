package orm

import (
	"database/sql"
	"time"
)

// IntentState represents the state of a settlement attempt.
type IntentState string

const (
	IntentCreated   IntentState = "created"
	IntentSubmitted IntentState = "submitted"
	IntentConfirmed IntentState = "confirmed"
	IntentFailed    IntentState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s IntentState) Terminal() bool {
	return s == IntentConfirmed || s == IntentFailed
}

// SettlementIntent is a gorm table definition represents the write-ahead
// record of one payout attempt.
type SettlementIntent struct {
	ID             uint64 `gorm:"primary_key"`
	ValidatorID    uint64 `gorm:"index"`
	Amount         uint64
	State          IntentState `gorm:"index;size:16"`
	IdempotencyKey string      `gorm:"uniqueIndex;size:36"`
	// ExternalTransferID is set once the rail confirmed the transfer.
	ExternalTransferID sql.NullString
	FailureReason      string
	// ActiveValidatorID equals ValidatorID while the intent is live and is
	// NULL once it reached a terminal state. The unique index allows at most
	// one live intent per validator.
	ActiveValidatorID *uint64 `gorm:"uniqueIndex"`
	SubmittedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
