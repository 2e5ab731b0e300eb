package models

import "time"

// BusinessHour is the opening window for one weekday (0 = Sunday).
type BusinessHour struct {
	Weekday   int       `gorm:"column:weekday;primaryKey;autoIncrement:false"`
	OpenHour  int       `gorm:"column:open_hour;not null"`
	CloseHour int       `gorm:"column:close_hour;not null"`
	Closed    bool      `gorm:"column:closed;not null;default:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
