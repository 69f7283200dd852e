package orm

import "time"

// Website is a gorm table definition represents the monitored websites.
type Website struct {
	ID        uint64 `gorm:"primary_key"`
	URL       string
	OwnerID   string `gorm:"index"`
	Disabled  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
