package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn records a walk-in or arriving customer at the front desk kiosk.
type CheckIn struct {
	ID           uuid.UUID `gorm:"column:id;primaryKey"`
	CustomerName string    `gorm:"column:customer_name;not null"`
	Phone        string    `gorm:"column:phone;not null"`
	ServiceName  string    `gorm:"column:service_name;not null;default:''"`
	BookingID    string    `gorm:"column:booking_id;not null;default:''"`
	CheckedInAt  time.Time `gorm:"column:checked_in_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the snake-cased table name.
func (CheckIn) TableName() string {
	return "check_ins"
}
