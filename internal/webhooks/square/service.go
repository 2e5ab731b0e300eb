package squarewebhook

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

const (
	EventCatalogUpdated = "catalog.version.updated"
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
)

type catalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	catalog catalogInvalidator
	logg    *logger.Logger
}

func NewService(catalog catalogInvalidator, logg *logger.Logger) (*Service, error) {
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{catalog: catalog, logg: logg}, nil
}

type SquareWebhookEvent struct {
	MerchantID string            `json:"merchant_id"`
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	CreatedAt  string            `json:"created_at"`
	Data       SquareWebhookData `json:"data"`
}

type SquareWebhookData struct {
	Type   string              `json:"type"`
	ID     string              `json:"id"`
	Object SquareWebhookObject `json:"object"`
}

type SquareWebhookObject struct {
	Booking *SquareBooking `json:"booking,omitempty"`
}

type SquareBooking struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	StartAt    string `json:"start_at"`
	LocationID string `json:"location_id"`
	Version    int64  `json:"version"`
}

// HandleEvent drops the cached catalog when Square reports a catalog change
// and records booking lifecycle changes made outside the storefront.
func (s *Service) HandleEvent(ctx context.Context, event *SquareWebhookEvent) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "square event required")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"square_event_id":   event.EventID,
		"square_event_type": event.Type,
	})

	switch strings.ToLower(strings.TrimSpace(event.Type)) {
	case EventCatalogUpdated:
		if err := s.catalog.Invalidate(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate catalog cache")
		}
		s.logg.Info(ctx, "square.catalog.invalidated")
	case EventBookingCreated, EventBookingUpdated:
		booking := event.Data.Object.Booking
		if booking == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "booking payload missing")
		}
		ctx = s.logg.WithFields(ctx, map[string]any{
			"booking_id":     booking.ID,
			"booking_status": booking.Status,
			"start_at":       booking.StartAt,
		})
		s.logg.Info(ctx, "square.booking.changed")
	default:
		s.logg.Debug(ctx, "square.event.ignored")
	}
	return nil
}
