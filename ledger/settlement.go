package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
)

// ValidatorSnapshot is the validator state read under the settlement lock.
type ValidatorSnapshot struct {
	ValidatorID   uint64
	PayoutAddress string
	PendingAmount uint64
}

// Tx is a transaction scoped view of the store.
type Tx struct {
	db  *gorm.DB
	now func() time.Time
}

// LockValidatorForSettlement takes an exclusive lock on the validator row
// until the enclosing transaction ends. Concurrent settlement of the same
// validator blocks here; other validators are not affected.
func (tx *Tx) LockValidatorForSettlement(validatorID uint64) (*ValidatorSnapshot, error) {
	v := &orm.Validator{}
	if err := tx.db.Model(&orm.Validator{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", validatorID).
		First(v).
		Error; err == gorm.ErrRecordNotFound {
		return nil, errors.Wrapf(ErrNotFound, "validator %d", validatorID)
	} else if err != nil {
		return nil, errors.Wrap(err, "lock validator")
	}

	return &ValidatorSnapshot{
		ValidatorID:   v.ID,
		PayoutAddress: v.PayoutAddress,
		PendingAmount: v.PendingAmount,
	}, nil
}

// ActiveIntent returns the live intent of the validator, or nil.
func (tx *Tx) ActiveIntent(validatorID uint64) (*orm.SettlementIntent, error) {
	intent := &orm.SettlementIntent{}
	err := tx.db.Model(&orm.SettlementIntent{}).
		Where("active_validator_id = ?", validatorID).
		First(intent).
		Error
	switch err {
	case gorm.ErrRecordNotFound:
		return nil, nil

	case nil:
		return intent, nil

	default:
		return nil, errors.Wrap(err, "query active intent")
	}
}

// WriteIntent persists a created intent for amount. It must be called
// while holding the validator lock.
func (tx *Tx) WriteIntent(validatorID, amount uint64) (*orm.SettlementIntent, error) {
	if amount == 0 {
		return nil, errors.New("intent amount must be positive")
	}

	active := validatorID
	intent := &orm.SettlementIntent{
		ValidatorID:       validatorID,
		Amount:            amount,
		State:             orm.IntentCreated,
		IdempotencyKey:    uuid.NewString(),
		ActiveValidatorID: &active,
	}
	if err := tx.db.Model(&orm.SettlementIntent{}).Create(intent).Error; err != nil {
		return nil, errors.Wrap(err, "insert intent")
	}

	return intent, nil
}

// MarkIntentSubmitted moves a created intent to submitted. It happens
// before the rail is called.
func (s *Store) MarkIntentSubmitted(ctx context.Context, intentID uint64) error {
	res := s.db.WithContext(ctx).Model(&orm.SettlementIntent{}).
		Where("id = ? AND state = ?", intentID, orm.IntentCreated).
		Updates(map[string]interface{}{
			"state":        orm.IntentSubmitted,
			"submitted_at": s.now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark intent submitted")
	}

	if res.RowsAffected != 1 {
		return errors.Wrapf(ErrInvalidTransition, "intent %d is not created", intentID)
	}

	return nil
}

// MarkIntentConfirmed records the external transfer and subtracts the
// amount captured by the intent from the validator balance. Ticks credited
// after the intent was written stay pending. Confirming an already
// confirmed intent with the same transfer id is a no-op.
func (s *Store) MarkIntentConfirmed(ctx context.Context, intentID uint64, transferID string) error {
	if transferID == "" {
		return errors.New("empty transfer id")
	}

	return s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		intent, err := lockIntent(dbTx, intentID)
		if err != nil {
			return err
		}

		switch intent.State {
		case orm.IntentConfirmed:
			if intent.ExternalTransferID.String == transferID {
				return nil
			}
			return errors.Wrapf(ErrInvalidTransition,
				"intent %d confirmed with transfer %s", intentID, intent.ExternalTransferID.String)

		case orm.IntentCreated:
			return errors.Wrapf(ErrInvalidTransition, "intent %d was never submitted", intentID)

		case orm.IntentFailed:
			return errors.Wrapf(ErrInvalidTransition, "intent %d already failed", intentID)
		}

		res := dbTx.Model(&orm.Validator{}).
			Where("id = ? AND pending_amount >= ?", intent.ValidatorID, intent.Amount).
			Update("pending_amount", gorm.Expr("pending_amount - ?", intent.Amount))
		if res.Error != nil {
			return errors.Wrap(res.Error, "debit validator")
		}

		if res.RowsAffected != 1 {
			return errors.Wrapf(ErrInsufficientPending, "validator %d", intent.ValidatorID)
		}

		return dbTx.Model(&orm.SettlementIntent{}).
			Where("id = ?", intentID).
			Updates(map[string]interface{}{
				"state":                orm.IntentConfirmed,
				"external_transfer_id": sql.NullString{String: transferID, Valid: true},
				"active_validator_id":  nil,
			}).
			Error
	})
}

// MarkIntentFailed closes a live intent without touching the balance; it
// was never debited.
func (s *Store) MarkIntentFailed(ctx context.Context, intentID uint64, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		intent, err := lockIntent(dbTx, intentID)
		if err != nil {
			return err
		}

		if intent.State.Terminal() {
			return errors.Wrapf(ErrInvalidTransition, "intent %d already %s", intentID, intent.State)
		}

		return dbTx.Model(&orm.SettlementIntent{}).
			Where("id = ?", intentID).
			Updates(map[string]interface{}{
				"state":               orm.IntentFailed,
				"failure_reason":      reason,
				"active_validator_id": nil,
			}).
			Error
	})
}

// Intent returns the intent with the given id.
func (s *Store) Intent(ctx context.Context, intentID uint64) (*orm.SettlementIntent, error) {
	intent := &orm.SettlementIntent{}
	if err := s.primary(ctx).Model(&orm.SettlementIntent{}).
		Where("id = ?", intentID).
		First(intent).
		Error; err == gorm.ErrRecordNotFound {
		return nil, errors.Wrapf(ErrNotFound, "intent %d", intentID)
	} else if err != nil {
		return nil, errors.Wrap(err, "query intent")
	}

	return intent, nil
}

// IntentsByValidator lists the intents of a validator, newest first.
func (s *Store) IntentsByValidator(
	ctx context.Context,
	validatorID uint64,
	start int,
	limit int,
) ([]*orm.SettlementIntent, int64, error) {
	start, limit = pageBounds(start, limit)

	count := int64(0)
	if err := s.db.WithContext(ctx).Model(&orm.SettlementIntent{}).
		Where("validator_id = ?", validatorID).
		Count(&count).
		Error; err != nil {
		return nil, 0, errors.Wrap(err, "count intents")
	}

	intents := make([]*orm.SettlementIntent, 0)
	if err := s.db.WithContext(ctx).Model(&orm.SettlementIntent{}).
		Where("validator_id = ?", validatorID).
		Order("id desc").
		Offset(start).
		Limit(limit).
		Find(&intents).
		Error; err != nil {
		return nil, 0, errors.Wrap(err, "query intents")
	}

	return intents, count, nil
}

// LiveIntents returns the created or submitted intents last updated before
// the given time.
func (s *Store) LiveIntents(ctx context.Context, before time.Time) ([]*orm.SettlementIntent, error) {
	intents := make([]*orm.SettlementIntent, 0)
	if err := s.primary(ctx).Model(&orm.SettlementIntent{}).
		Where("state IN ?", []orm.IntentState{orm.IntentCreated, orm.IntentSubmitted}).
		Where("updated_at < ?", before.UTC()).
		Order("id").
		Find(&intents).
		Error; err != nil {
		return nil, errors.Wrap(err, "query live intents")
	}

	return intents, nil
}

func lockIntent(dbTx *gorm.DB, intentID uint64) (*orm.SettlementIntent, error) {
	intent := &orm.SettlementIntent{}
	if err := dbTx.Model(&orm.SettlementIntent{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", intentID).
		First(intent).
		Error; err == gorm.ErrRecordNotFound {
		return nil, errors.Wrapf(ErrNotFound, "intent %d", intentID)
	} else if err != nil {
		return nil, errors.Wrap(err, "lock intent")
	}

	return intent, nil
}
