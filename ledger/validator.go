package ledger

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
)

// Registration is the identity a validator signs up with.
type Registration struct {
	PublicKey     string
	PayoutAddress string
	IP            string
	Location      string
}

// RegisterValidator returns the validator with the given public key,
// creating it on first sign up. The payout address cannot change once set.
func (s *Store) RegisterValidator(ctx context.Context, r Registration) (*orm.Validator, error) {
	v := &orm.Validator{}
	err := s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		err := dbTx.Model(&orm.Validator{}).
			Where("public_key = ?", r.PublicKey).
			First(v).
			Error
		switch err {
		case gorm.ErrRecordNotFound:
			*v = orm.Validator{
				PublicKey:     r.PublicKey,
				PayoutAddress: r.PayoutAddress,
				IP:            r.IP,
				Location:      r.Location,
			}
			return errors.Wrap(dbTx.Model(&orm.Validator{}).Create(v).Error, "insert validator")

		case nil:
			if v.PayoutAddress != "" && v.PayoutAddress != r.PayoutAddress {
				return errors.Wrapf(ErrConflict,
					"validator %d payout address is immutable", v.ID)
			}

			return errors.Wrap(dbTx.Model(v).Updates(map[string]interface{}{
				"payout_address": r.PayoutAddress,
				"ip":             r.IP,
				"location":       r.Location,
			}).Error, "update validator")

		default:
			return errors.Wrap(err, "query validator")
		}
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Validator returns the validator with the given id.
func (s *Store) Validator(ctx context.Context, validatorID uint64) (*orm.Validator, error) {
	v := &orm.Validator{}
	if err := s.primary(ctx).Model(&orm.Validator{}).
		Where("id = ?", validatorID).
		First(v).
		Error; err == gorm.ErrRecordNotFound {
		return nil, errors.Wrapf(ErrNotFound, "validator %d", validatorID)
	} else if err != nil {
		return nil, errors.Wrap(err, "query validator")
	}

	return v, nil
}

// SettleableValidators returns the ids of validators whose pending amount
// reached minAmount.
func (s *Store) SettleableValidators(ctx context.Context, minAmount uint64) ([]uint64, error) {
	if minAmount == 0 {
		minAmount = 1
	}

	ids := make([]uint64, 0)
	if err := s.db.WithContext(ctx).Model(&orm.Validator{}).
		Where("pending_amount >= ?", minAmount).
		Where("payout_address <> ''").
		Order("id").
		Pluck("id", &ids).
		Error; err != nil {
		return nil, errors.Wrap(err, "query settleable validators")
	}

	return ids, nil
}
