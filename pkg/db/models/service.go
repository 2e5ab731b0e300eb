package models

import (
	"time"

	dbtypes "github.com/angelmondragon/spa-backend/pkg/db/types"
	"github.com/google/uuid"
)

// ServiceVariation is a priced option of an admin-managed service.
type ServiceVariation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price"`
	Currency   string `json:"currency,omitempty"`
	DurationMs int64  `json:"duration"`
	Version    int64  `json:"version,omitempty"`
}

// Service is a treatment offered when the catalog source is the database.
type Service struct {
	ID              uuid.UUID                        `gorm:"column:id;primaryKey"`
	Name            string                           `gorm:"column:name;not null;uniqueIndex:services_name_key"`
	Category        string                           `gorm:"column:category;not null;default:''"`
	Description     string                           `gorm:"column:description;not null;default:''"`
	DisplayPrice    string                           `gorm:"column:display_price;not null;default:''"`
	DurationMinutes int                              `gorm:"column:duration_minutes;not null;default:0"`
	Variations      dbtypes.JSON[[]ServiceVariation] `gorm:"column:variations;not null"`
	Active          bool                             `gorm:"column:active;not null"`
	Position        int                              `gorm:"column:position;not null;default:0"`
	CreatedAt       time.Time                        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                        `gorm:"column:updated_at;autoUpdateTime"`
}
