// Package testutil provides fixtures shared by store-backed tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
)

// NewDB opens a migrated sqlite database in a temporary directory.
// SQLite has no row locks, so the pool is limited to one connection and
// transactions are serialized by the pool instead.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hub.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := orm.AutoMigrate(db); err != nil {
		t.Fatalf("migrate tables: %v", err)
	}

	return db
}

// CreateWebsite inserts a website row.
func CreateWebsite(t testing.TB, db *gorm.DB, url string, disabled bool) *orm.Website {
	t.Helper()

	w := &orm.Website{URL: url, OwnerID: "owner", Disabled: disabled}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("create website: %v", err)
	}

	return w
}

// CreateValidator inserts a validator row with the given pending amount.
func CreateValidator(t testing.TB, db *gorm.DB, address string, pending uint64) *orm.Validator {
	t.Helper()

	v := &orm.Validator{
		PublicKey:     address,
		PayoutAddress: address,
		PendingAmount: pending,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create validator: %v", err)
	}

	return v
}

// PendingAmount reads the current pending amount of a validator.
func PendingAmount(t testing.TB, db *gorm.DB, validatorID uint64) uint64 {
	t.Helper()

	v := &orm.Validator{}
	if err := db.Where("id = ?", validatorID).First(v).Error; err != nil {
		t.Fatalf("query validator: %v", err)
	}

	return v.PendingAmount
}
