package square

import (
	"context"
	"strings"
	"time"
)

// Availability is one open start time returned by Square.
type Availability struct {
	StartAt            time.Time
	LocationID         string
	TeamMemberID       string
	ServiceVariationID string
	DurationMinutes    int
}

// Booking is the created appointment as acknowledged by Square.
type Booking struct {
	ID         string
	Status     string
	StartAt    time.Time
	LocationID string
	CustomerID string
}

// SearchAvailability lists open start times for one variation inside [StartAt, EndAt).
func (c *Client) SearchAvailability(ctx context.Context, params AvailabilitySearchParams) ([]Availability, error) {
	if strings.TrimSpace(params.LocationID) == "" {
		params.LocationID = c.locationID
	}
	if strings.TrimSpace(params.TeamMemberID) == "" {
		params.TeamMemberID = c.teamMemberID
	}
	c.log(ctx, "request", "search_availability", map[string]any{
		"service_variation_id": params.ServiceVariationID,
		"start_at":             formatTime(params.StartAt),
		"end_at":               formatTime(params.EndAt),
	})

	resp, err := c.sdk.Bookings.SearchAvailability(ctx, params.toSquareRequest())
	if err != nil {
		c.log(ctx, "error", "search_availability", map[string]any{"error": err.Error()})
		return nil, c.mapSquareError(err, "search availability")
	}

	out := make([]Availability, 0, len(resp.GetAvailabilities()))
	for _, a := range resp.GetAvailabilities() {
		if a == nil || a.StartAt == nil {
			continue
		}
		startAt, err := time.Parse(time.RFC3339, *a.StartAt)
		if err != nil {
			c.log(ctx, "response", "search_availability_skip", map[string]any{"start_at": *a.StartAt})
			continue
		}
		slot := Availability{
			StartAt:    startAt,
			LocationID: stringValue(a.LocationID),
		}
		if len(a.AppointmentSegments) > 0 && a.AppointmentSegments[0] != nil {
			seg := a.AppointmentSegments[0]
			slot.TeamMemberID = seg.TeamMemberID
			slot.ServiceVariationID = stringValue(seg.ServiceVariationID)
			if seg.DurationMinutes != nil {
				slot.DurationMinutes = *seg.DurationMinutes
			}
		}
		out = append(out, slot)
	}

	c.log(ctx, "response", "search_availability", map[string]any{"availabilities": len(out)})
	return out, nil
}

// CreateBooking places a single appointment. It is never retried.
func (c *Client) CreateBooking(ctx context.Context, params BookingCreateParams) (*Booking, error) {
	if strings.TrimSpace(params.LocationID) == "" {
		params.LocationID = c.locationID
	}
	if strings.TrimSpace(params.TeamMemberID) == "" {
		params.TeamMemberID = c.teamMemberID
	}
	req := params.toSquareRequest(c.ensureIdempotencyKey("booking.create", params.IdempotencyKey))
	c.log(ctx, "request", "create_booking", map[string]any{
		"service_variation_id": params.ServiceVariationID,
		"start_at":             formatTime(params.StartAt),
		"customer_id":          params.CustomerID,
	})

	resp, err := c.sdk.Bookings.Create(ctx, req)
	if err != nil {
		c.log(ctx, "error", "create_booking", map[string]any{"error": err.Error()})
		return nil, c.mapSquareError(err, "create booking")
	}

	b := resp.GetBooking()
	booking := &Booking{
		StartAt:    params.StartAt,
		LocationID: params.LocationID,
		CustomerID: params.CustomerID,
	}
	if b != nil {
		booking.ID = stringValue(b.ID)
		if b.Status != nil {
			booking.Status = string(*b.Status)
		}
		if b.StartAt != nil {
			if parsed, perr := time.Parse(time.RFC3339, *b.StartAt); perr == nil {
				booking.StartAt = parsed
			}
		}
	}

	c.log(ctx, "response", "create_booking", map[string]any{
		"booking_id": booking.ID,
		"status":     booking.Status,
	})
	return booking, nil
}
