package orm

import "time"

// Validator is a gorm table definition represents the validators.
type Validator struct {
	ID            uint64 `gorm:"primary_key"`
	PublicKey     string `gorm:"uniqueIndex;size:64"`
	PayoutAddress string
	IP            string
	Location      string
	// PendingAmount is denominated in the smallest unit of the payment rail.
	PendingAmount uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
