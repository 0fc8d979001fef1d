package models

import "time"

// AccountMapping is a learned receiver name → masked account pair.
type AccountMapping struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:255;uniqueIndex;not null"` // normalized, upper-case
	Account   string `gorm:"size:64;not null"`
}
