package announcements

import (
	"context"
	"time"

	"github.com/angelmondragon/spa-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists announcements.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an announcements repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Announcement, error) {
	var rows []models.Announcement
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

// ListFlaggedActive returns rows with the active flag set, ignoring their window.
func (r *Repository) ListFlaggedActive(ctx context.Context) ([]models.Announcement, error) {
	var rows []models.Announcement
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	var row models.Announcement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Announcement) (*models.Announcement, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) Update(ctx context.Context, row *models.Announcement) (*models.Announcement, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Announcement{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteEndedBefore removes announcements whose window closed before cutoff.
// Rows without an end are kept.
func (r *Repository) DeleteEndedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	res := conn.WithContext(ctx).
		Where("ends_at IS NOT NULL AND ends_at < ?", cutoff.UTC()).
		Delete(&models.Announcement{})
	return res.RowsAffected, res.Error
}
