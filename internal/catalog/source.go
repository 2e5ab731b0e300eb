package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/spa-backend/pkg/db/models"
	"github.com/angelmondragon/spa-backend/pkg/square"
)

// Source delivers raw catalog records.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawService, error)
}

type squareCatalog interface {
	ListCatalogServices(ctx context.Context) ([]square.CatalogItem, error)
}

// SquareSource reads bookable appointment services from the Square catalog.
type SquareSource struct {
	client squareCatalog
}

// NewSquareSource wraps the Square client.
func NewSquareSource(client squareCatalog) (*SquareSource, error) {
	if client == nil {
		return nil, fmt.Errorf("square client required")
	}
	return &SquareSource{client: client}, nil
}

func (s *SquareSource) Name() string { return "square" }

// Fetch keeps items with at least one variation available for booking.
func (s *SquareSource) Fetch(ctx context.Context) ([]RawService, error) {
	items, err := s.client.ListCatalogServices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RawService, 0, len(items))
	for _, item := range items {
		raw := RawService{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
		}
		for _, v := range item.Variations {
			if !v.AvailableForBooking {
				continue
			}
			raw.Variations = append(raw.Variations, Variation{
				ID:         v.ID,
				Name:       v.Name,
				PriceCents: v.PriceCents,
				Currency:   strings.ToUpper(v.Currency),
				DurationMs: v.ServiceDurationMs,
				Version:    v.Version,
			})
		}
		if len(raw.Variations) == 0 {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

type activeLister interface {
	ListActive(ctx context.Context) ([]models.Service, error)
}

// DBSource reads admin-managed services.
type DBSource struct {
	repo activeLister
}

// NewDBSource wraps the services repository.
func NewDBSource(repo activeLister) (*DBSource, error) {
	if repo == nil {
		return nil, fmt.Errorf("service repository required")
	}
	return &DBSource{repo: repo}, nil
}

func (s *DBSource) Name() string { return "db" }

func (s *DBSource) Fetch(ctx context.Context) ([]RawService, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RawService, 0, len(rows))
	for _, row := range rows {
		out = append(out, rawFromModel(row))
	}
	return out, nil
}

func rawFromModel(row models.Service) RawService {
	raw := RawService{
		ID:          row.ID.String(),
		Name:        row.Name,
		Category:    row.Category,
		Description: row.Description,
		Price:       Text(row.DisplayPrice),
		Duration:    Number(float64(row.DurationMinutes)),
	}
	for _, v := range row.Variations.Val {
		raw.Variations = append(raw.Variations, Variation{
			ID:         v.ID,
			Name:       v.Name,
			PriceCents: v.PriceCents,
			Currency:   v.Currency,
			DurationMs: v.DurationMs,
			Version:    v.Version,
		})
	}
	return raw
}
