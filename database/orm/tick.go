package orm

import "time"

// TickStatus represents the liveness reported by a validator.
type TickStatus string

const (
	TickUp   TickStatus = "up"
	TickDown TickStatus = "down"
)

// Valid reports whether the status is one validators may report.
func (s TickStatus) Valid() bool {
	return s == TickUp || s == TickDown
}

// Tick is a gorm table definition represents the website ticks.
// Rows are append only.
type Tick struct {
	ID          uint64 `gorm:"primary_key;index:idx_website_observed,priority:3"`
	WebsiteID   uint64 `gorm:"index:idx_website_observed,priority:1"`
	ValidatorID uint64 `gorm:"index"`
	Status      TickStatus
	LatencyMS   uint64
	ObservedAt  time.Time `gorm:"index:idx_website_observed,priority:2"`
	CreatedAt   time.Time
}
