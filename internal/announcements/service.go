package announcements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/spa-backend/pkg/db"
	"github.com/angelmondragon/spa-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/google/uuid"
)

// Input is the admin payload for an announcement.
type Input struct {
	Title    string
	Body     string
	Active   *bool
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Announcement is the API shape.
type Announcement struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Active    bool       `json:"active"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Service interface {
	List(ctx context.Context) ([]Announcement, error)
	ListActive(ctx context.Context, now time.Time) ([]Announcement, error)
	Create(ctx context.Context, input Input) (*Announcement, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Announcement, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type announcementRepository interface {
	List(ctx context.Context) ([]models.Announcement, error)
	ListFlaggedActive(ctx context.Context) ([]models.Announcement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	Create(ctx context.Context, row *models.Announcement) (*models.Announcement, error)
	Update(ctx context.Context, row *models.Announcement) (*models.Announcement, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo announcementRepository
}

func NewService(repo announcementRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("announcement repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]Announcement, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list announcements")
	}
	return toDTOs(rows), nil
}

// ListActive returns flagged rows whose window contains now. Open-ended bounds match.
func (s *service) ListActive(ctx context.Context, now time.Time) ([]Announcement, error) {
	rows, err := s.repo.ListFlaggedActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list announcements")
	}
	live := rows[:0]
	for _, row := range rows {
		if row.StartsAt != nil && now.Before(*row.StartsAt) {
			continue
		}
		if row.EndsAt != nil && !now.Before(*row.EndsAt) {
			continue
		}
		live = append(live, row)
	}
	return toDTOs(live), nil
}

func (s *service) Create(ctx context.Context, input Input) (*Announcement, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	row := &models.Announcement{}
	apply(row, input)
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create announcement")
	}
	dto := toDTO(*created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*Announcement, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "announcement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load announcement")
	}
	apply(row, input)
	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update announcement")
	}
	dto := toDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete announcement")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "announcement not found")
	}
	return nil
}

func validate(input Input) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.EndsAt.After(*input.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}
	return nil
}

func apply(row *models.Announcement, input Input) {
	row.Title = strings.TrimSpace(input.Title)
	row.Body = strings.TrimSpace(input.Body)
	row.Active = input.Active == nil || *input.Active
	row.StartsAt = utcPtr(input.StartsAt)
	row.EndsAt = utcPtr(input.EndsAt)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func toDTOs(rows []models.Announcement) []Announcement {
	out := make([]Announcement, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out
}

func toDTO(row models.Announcement) Announcement {
	return Announcement{
		ID:        row.ID,
		Title:     row.Title,
		Body:      row.Body,
		Active:    row.Active,
		StartsAt:  row.StartsAt,
		EndsAt:    row.EndsAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
