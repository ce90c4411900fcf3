package store

import (
	"time"
)

// Seed records the last content applied by a seeder.
type Seed struct {
	ID         string `gorm:"primarykey"`
	Checksum   string
	ExecutedAt time.Time
}
