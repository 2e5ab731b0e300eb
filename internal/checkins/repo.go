package checkins

import (
	"context"
	"time"

	"github.com/angelmondragon/spa-backend/pkg/db/models"
	"github.com/angelmondragon/spa-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type listParams struct {
	From   time.Time
	To     time.Time
	Limit  int
	Cursor *pagination.Cursor
}

// Repository persists kiosk check-ins.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a check-in repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, row *models.CheckIn) (*models.CheckIn, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// List pages newest first within [From, To). The returned cursor is nil on the last page.
func (r *Repository) List(ctx context.Context, params listParams) ([]models.CheckIn, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.rangeQuery(ctx, params.From, params.To)
	if params.Cursor != nil {
		query = query.Where("checked_in_at < ? OR (checked_in_at = ? AND id < ?)",
			params.Cursor.At, params.Cursor.At, params.Cursor.ID)
	}

	var rows []models.CheckIn
	if err := query.Order("checked_in_at DESC, id DESC").Limit(pagination.LimitWithBuffer(normalized)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{At: last.CheckedInAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// ListRange returns every check-in within [from, to) for aggregation.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time) ([]models.CheckIn, error) {
	var rows []models.CheckIn
	err := r.rangeQuery(ctx, from, to).Order("checked_in_at ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) rangeQuery(ctx context.Context, from, to time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.CheckIn{})
	if !from.IsZero() {
		query = query.Where("checked_in_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		query = query.Where("checked_in_at < ?", to.UTC())
	}
	return query
}

// DeleteBefore removes check-ins recorded before cutoff.
func (r *Repository) DeleteBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	res := conn.WithContext(ctx).Where("checked_in_at < ?", cutoff.UTC()).Delete(&models.CheckIn{})
	return res.RowsAffected, res.Error
}
