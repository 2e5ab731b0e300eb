package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a banner shown on the public site while active.
type Announcement struct {
	ID        uuid.UUID  `gorm:"column:id;primaryKey"`
	Title     string     `gorm:"column:title;not null"`
	Body      string     `gorm:"column:body;not null;default:''"`
	Active    bool       `gorm:"column:active;not null"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
