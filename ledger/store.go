// Package ledger is the durable state of the hub: websites, validators,
// ticks and settlement intents.
package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// Store provides atomic read/update primitives over the hub tables.
type Store struct {
	db            *gorm.DB
	rewardPerTick uint64
	now           func() time.Time
}

// NewStore returns a store crediting rewardPerTick for every recorded tick.
func NewStore(db *gorm.DB, rewardPerTick uint64) *Store {
	return &Store{
		db:            db,
		rewardPerTick: rewardPerTick,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RewardPerTick returns the credit of one tick.
func (s *Store) RewardPerTick() uint64 {
	return s.rewardPerTick
}

// Transaction runs fn inside a database transaction. Row locks taken
// through the Tx are released when fn returns.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		return fn(&Tx{db: dbTx, now: s.now})
	})
}

// primary routes reads to the source database so they observe the latest
// committed intent state.
func (s *Store) primary(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Clauses(dbresolver.Write)
}

func pageBounds(start, limit int) (int, int) {
	if start < 0 {
		start = 0
	}
	if limit <= 0 {
		limit = 20
	}
	return start, limit
}
