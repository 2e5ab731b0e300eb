package catalog

import (
	"context"

	"github.com/angelmondragon/spa-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists admin-managed services.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a services repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns active services in display order.
func (r *Repository) ListActive(ctx context.Context) ([]models.Service, error) {
	var rows []models.Service
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

// ListAll returns every service, inactive included.
func (r *Repository) ListAll(ctx context.Context) ([]models.Service, error) {
	var rows []models.Service
	err := r.db.WithContext(ctx).
		Order("position ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

// FindByID loads one service.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var row models.Service
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a service, assigning an id when missing.
func (r *Repository) Create(ctx context.Context, row *models.Service) (*models.Service, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update saves every column of the service.
func (r *Repository) Update(ctx context.Context, row *models.Service) (*models.Service, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes a service, reporting whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Service{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
