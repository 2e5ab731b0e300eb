package hours

import (
	"context"
	"time"

	"github.com/angelmondragon/spa-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the weekly business hours.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a business hours repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every configured weekday, Sunday first.
func (r *Repository) List(ctx context.Context) ([]models.BusinessHour, error) {
	var rows []models.BusinessHour
	err := r.db.WithContext(ctx).Order("weekday ASC").Find(&rows).Error
	return rows, err
}

// Upsert inserts or replaces the row for row.Weekday.
func (r *Repository) Upsert(ctx context.Context, row *models.BusinessHour) (*models.BusinessHour, error) {
	row.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "weekday"}},
			DoUpdates: clause.AssignmentColumns([]string{"open_hour", "close_hour", "closed", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}
