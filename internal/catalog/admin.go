package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/spa-backend/pkg/db"
	"github.com/angelmondragon/spa-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/spa-backend/pkg/db/types"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/google/uuid"
)

// ServiceInput is the admin payload for creating or replacing a service.
type ServiceInput struct {
	Name            string
	Category        string
	Description     string
	DisplayPrice    string
	DurationMinutes int
	Variations      []VariationInput
	Active          *bool
	Position        int
}

// VariationInput is one priced option; ID is generated when blank.
type VariationInput struct {
	ID              string
	Name            string
	PriceCents      int64
	Currency        string
	DurationMinutes int
}

// AdminService manages database-backed services.
type AdminService interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	CreateService(ctx context.Context, input ServiceInput) (*models.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, input ServiceInput) (*models.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
}

type serviceRepository interface {
	ListAll(ctx context.Context) ([]models.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	Create(ctx context.Context, row *models.Service) (*models.Service, error)
	Update(ctx context.Context, row *models.Service) (*models.Service, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

type adminService struct {
	repo    serviceRepository
	catalog invalidator
	logg    *logger.Logger
}

// NewAdminService builds the admin service. catalog may be nil when nothing is cached.
func NewAdminService(repo serviceRepository, catalog invalidator, logg *logger.Logger) (AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("service repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &adminService{repo: repo, catalog: catalog, logg: logg}, nil
}

func (s *adminService) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list services")
	}
	return rows, nil
}

func (s *adminService) CreateService(ctx context.Context, input ServiceInput) (*models.Service, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	row := &models.Service{}
	applyInput(row, input)

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, mapWriteError(err, "create")
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *adminService) UpdateService(ctx context.Context, id uuid.UUID, input ServiceInput) (*models.Service, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load service")
	}
	applyInput(row, input)

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, mapWriteError(err, "update")
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *adminService) DeleteService(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete service")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *adminService) invalidate(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.invalidate_failed")
	}
}

func validateInput(input ServiceInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.DurationMinutes < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must be non-negative")
	}
	for i, v := range input.Variations {
		if v.PriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variations[%d]: price must be non-negative", i))
		}
		if v.DurationMinutes <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variations[%d]: duration must be positive", i))
		}
	}
	return nil
}

func applyInput(row *models.Service, input ServiceInput) {
	row.Name = strings.TrimSpace(input.Name)
	row.Category = strings.TrimSpace(input.Category)
	row.Description = strings.TrimSpace(input.Description)
	row.DisplayPrice = strings.TrimSpace(input.DisplayPrice)
	row.DurationMinutes = input.DurationMinutes
	row.Position = input.Position
	row.Active = input.Active == nil || *input.Active

	variations := make([]models.ServiceVariation, 0, len(input.Variations))
	for _, v := range input.Variations {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			id = uuid.NewString()
		}
		currency := strings.ToUpper(strings.TrimSpace(v.Currency))
		if currency == "" {
			currency = DefaultCurrency
		}
		variations = append(variations, models.ServiceVariation{
			ID:         id,
			Name:       strings.TrimSpace(v.Name),
			PriceCents: v.PriceCents,
			Currency:   currency,
			DurationMs: int64(v.DurationMinutes) * msPerMinute,
			Version:    1,
		})
	}
	row.Variations = dbtypes.NewJSON(variations)
}

func mapWriteError(err error, op string) error {
	if db.IsUniqueViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a service with that name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("failed to %s service", op))
}
