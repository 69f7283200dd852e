package orm

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables the hub owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Website{},
		&Validator{},
		&Tick{},
		&SettlementIntent{},
	)
}
