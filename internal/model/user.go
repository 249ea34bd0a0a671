package model

import "time"

// User is a messaging platform user who has issued a claim.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	PlatformID  string `gorm:"uniqueIndex;not null"`
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
