package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
)

// StatusUnknown is the derived status of a website without ticks.
const StatusUnknown = "unknown"

// TickRecord is one observation to persist.
type TickRecord struct {
	WebsiteID   uint64
	ValidatorID uint64
	Status      orm.TickStatus
	LatencyMS   uint64
	ObservedAt  time.Time
}

// WebsiteStatus is the status derived from the latest tick of a website.
type WebsiteStatus struct {
	WebsiteID uint64
	Status    string
	LatencyMS uint64
	LastSeen  time.Time
}

// RecordTick inserts the tick and credits the reporting validator in the
// same transaction.
func (s *Store) RecordTick(ctx context.Context, r TickRecord) (uint64, error) {
	tick := &orm.Tick{
		WebsiteID:   r.WebsiteID,
		ValidatorID: r.ValidatorID,
		Status:      r.Status,
		LatencyMS:   r.LatencyMS,
		ObservedAt:  r.ObservedAt.UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		website := &orm.Website{}
		if err := dbTx.Model(&orm.Website{}).
			Where("id = ?", r.WebsiteID).
			First(website).
			Error; err == gorm.ErrRecordNotFound {
			return errors.Wrapf(ErrNotFound, "website %d", r.WebsiteID)
		} else if err != nil {
			return errors.Wrap(err, "query website")
		}

		if website.Disabled {
			return errors.Wrapf(ErrNotFound, "website %d is disabled", r.WebsiteID)
		}

		if err := dbTx.Model(&orm.Tick{}).Create(tick).Error; err != nil {
			return errors.Wrap(err, "insert tick")
		}

		res := dbTx.Model(&orm.Validator{}).
			Where("id = ?", r.ValidatorID).
			Update("pending_amount", gorm.Expr("pending_amount + ?", s.rewardPerTick))
		if res.Error != nil {
			return errors.Wrap(res.Error, "credit validator")
		}

		if res.RowsAffected != 1 {
			return errors.Wrapf(ErrNotFound, "validator %d", r.ValidatorID)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return tick.ID, nil
}

// CurrentStatus derives the website status from its most recent tick.
func (s *Store) CurrentStatus(ctx context.Context, websiteID uint64) (*WebsiteStatus, error) {
	db := s.db.WithContext(ctx)
	if err := db.Model(&orm.Website{}).
		Where("id = ?", websiteID).
		First(&orm.Website{}).
		Error; err == gorm.ErrRecordNotFound {
		return nil, errors.Wrapf(ErrNotFound, "website %d", websiteID)
	} else if err != nil {
		return nil, errors.Wrap(err, "query website")
	}

	tick := &orm.Tick{}
	err := db.Model(&orm.Tick{}).
		Where("website_id = ?", websiteID).
		Order("observed_at desc").
		Order("id desc").
		First(tick).
		Error
	switch err {
	case gorm.ErrRecordNotFound:
		return &WebsiteStatus{WebsiteID: websiteID, Status: StatusUnknown}, nil

	case nil:
		return &WebsiteStatus{
			WebsiteID: websiteID,
			Status:    string(tick.Status),
			LatencyMS: tick.LatencyMS,
			LastSeen:  tick.ObservedAt,
		}, nil

	default:
		return nil, errors.Wrap(err, "query latest tick")
	}
}

// Ticks lists the ticks of a website, newest first.
func (s *Store) Ticks(ctx context.Context, websiteID uint64, start, limit int) ([]*orm.Tick, int64, error) {
	start, limit = pageBounds(start, limit)
	query := s.db.WithContext(ctx).Model(&orm.Tick{}).Where("website_id = ?", websiteID)

	count := int64(0)
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count ticks")
	}

	ticks := make([]*orm.Tick, 0)
	if err := s.db.WithContext(ctx).Model(&orm.Tick{}).
		Where("website_id = ?", websiteID).
		Order("observed_at desc").
		Order("id desc").
		Offset(start).
		Limit(limit).
		Find(&ticks).
		Error; err != nil {
		return nil, 0, errors.Wrap(err, "query ticks")
	}

	return ticks, count, nil
}
