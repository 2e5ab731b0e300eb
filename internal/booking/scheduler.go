package booking

import (
	"context"
	"fmt"
	"time"

	sq "github.com/square/square-go-sdk"

	"github.com/angelmondragon/spa-backend/internal/availability"
	"github.com/angelmondragon/spa-backend/pkg/square"
)

// Scheduler is the remote booking system. Calls are never retried; errors
// come back as typed collaborator or dependency errors.
type Scheduler interface {
	SearchAvailability(ctx context.Context, variationID string, day time.Time) ([]availability.Window, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*Appointment, error)
}

type squareBookings interface {
	EnsureCustomer(ctx context.Context, params square.CustomerCreateParams) (*sq.Customer, error)
	SearchAvailability(ctx context.Context, params square.AvailabilitySearchParams) ([]square.Availability, error)
	CreateBooking(ctx context.Context, params square.BookingCreateParams) (*square.Booking, error)
}

// SquareScheduler books appointments through Square Appointments.
type SquareScheduler struct {
	client squareBookings
}

func NewSquareScheduler(client squareBookings) (*SquareScheduler, error) {
	if client == nil {
		return nil, fmt.Errorf("square client required")
	}
	return &SquareScheduler{client: client}, nil
}

// SearchAvailability returns open start times for the 24 hours following day.
func (s *SquareScheduler) SearchAvailability(ctx context.Context, variationID string, day time.Time) ([]availability.Window, error) {
	slots, err := s.client.SearchAvailability(ctx, square.AvailabilitySearchParams{
		ServiceVariationID: variationID,
		StartAt:            day,
		EndAt:              day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, err
	}
	out := make([]availability.Window, 0, len(slots))
	for _, slot := range slots {
		out = append(out, availability.Window{
			StartAt:            slot.StartAt,
			LocationID:         slot.LocationID,
			TeamMemberID:       slot.TeamMemberID,
			ServiceVariationID: slot.ServiceVariationID,
			DurationMinutes:    slot.DurationMinutes,
		})
	}
	return out, nil
}

// CreateBooking finds or creates the customer by email and books the single segment.
func (s *SquareScheduler) CreateBooking(ctx context.Context, req BookingRequest) (*Appointment, error) {
	customer, err := s.client.EnsureCustomer(ctx, square.CustomerCreateParams{
		Email:       req.Email,
		PhoneNumber: req.Phone,
		GivenName:   req.GivenName,
		FamilyName:  req.FamilyName,
	})
	if err != nil {
		return nil, err
	}
	customerID := ""
	if customer != nil && customer.ID != nil {
		customerID = *customer.ID
	}

	created, err := s.client.CreateBooking(ctx, square.BookingCreateParams{
		StartAt:                 req.StartAt,
		LocationID:              req.LocationID,
		CustomerID:              customerID,
		CustomerNote:            req.Note,
		ServiceVariationID:      req.ServiceVariationID,
		ServiceVariationVersion: req.VariationVersion,
		TeamMemberID:            req.TeamMemberID,
		DurationMinutes:         req.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}
	return &Appointment{
		ID:         created.ID,
		Status:     created.Status,
		StartAt:    created.StartAt,
		LocationID: created.LocationID,
		CustomerID: created.CustomerID,
	}, nil
}
