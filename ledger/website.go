package ledger

import (
	"context"

	"github.com/pkg/errors"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
)

// CreateWebsite registers a website to monitor. Website management is owned
// by the dashboard backend; the hub only needs rows to exist.
func (s *Store) CreateWebsite(ctx context.Context, url, ownerID string) (*orm.Website, error) {
	w := &orm.Website{URL: url, OwnerID: ownerID}
	if err := s.db.WithContext(ctx).Model(&orm.Website{}).Create(w).Error; err != nil {
		return nil, errors.Wrap(err, "insert website")
	}

	return w, nil
}

// DisableWebsite soft deletes a website. Ticks keep referencing it.
func (s *Store) DisableWebsite(ctx context.Context, websiteID uint64) error {
	res := s.db.WithContext(ctx).Model(&orm.Website{}).
		Where("id = ?", websiteID).
		Update("disabled", true)
	if res.Error != nil {
		return errors.Wrap(res.Error, "disable website")
	}

	if res.RowsAffected != 1 {
		return errors.Wrapf(ErrNotFound, "website %d", websiteID)
	}

	return nil
}

// EnabledWebsites lists the websites validators should probe.
func (s *Store) EnabledWebsites(ctx context.Context, start, limit int) ([]*orm.Website, int64, error) {
	start, limit = pageBounds(start, limit)

	count := int64(0)
	if err := s.db.WithContext(ctx).Model(&orm.Website{}).
		Where("disabled = ?", false).
		Count(&count).
		Error; err != nil {
		return nil, 0, errors.Wrap(err, "count websites")
	}

	websites := make([]*orm.Website, 0)
	if err := s.db.WithContext(ctx).Model(&orm.Website{}).
		Where("disabled = ?", false).
		Order("id").
		Offset(start).
		Limit(limit).
		Find(&websites).
		Error; err != nil {
		return nil, 0, errors.Wrap(err, "query websites")
	}

	return websites, count, nil
}
