package square

import (
	"strings"
	"time"

	sq "github.com/square/square-go-sdk"
)

// CustomerCreateParams defines the payload to create a Square customer.
// PhoneNumber is expected in E.164 already.
type CustomerCreateParams struct {
	Email          string
	PhoneNumber    string
	GivenName      string
	FamilyName     string
	ReferenceID    string
	Note           string
	IdempotencyKey string
}

func (p CustomerCreateParams) toSquareRequest(idempotencyKey string) *sq.CreateCustomerRequest {
	req := &sq.CreateCustomerRequest{
		IdempotencyKey: ptrString(idempotencyKey),
	}
	if trimmed := strings.TrimSpace(p.Email); trimmed != "" {
		req.EmailAddress = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.PhoneNumber); trimmed != "" {
		req.PhoneNumber = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.GivenName); trimmed != "" {
		req.GivenName = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.FamilyName); trimmed != "" {
		req.FamilyName = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.ReferenceID); trimmed != "" {
		req.ReferenceID = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.Note); trimmed != "" {
		req.Note = ptrString(trimmed)
	}
	return req
}

// AvailabilitySearchParams scopes an availability search to one service variation and time range.
type AvailabilitySearchParams struct {
	ServiceVariationID string
	StartAt            time.Time
	EndAt              time.Time
	LocationID         string
	TeamMemberID       string
}

func (p AvailabilitySearchParams) toSquareRequest() *sq.SearchAvailabilityRequest {
	segment := &sq.SegmentFilter{ServiceVariationID: p.ServiceVariationID}
	if trimmed := strings.TrimSpace(p.TeamMemberID); trimmed != "" {
		segment.TeamMemberIDFilter = &sq.FilterValue{Any: []string{trimmed}}
	}
	return &sq.SearchAvailabilityRequest{
		Query: &sq.SearchAvailabilityQuery{
			Filter: &sq.SearchAvailabilityFilter{
				StartAtRange: &sq.TimeRange{
					StartAt: ptrString(formatTime(p.StartAt)),
					EndAt:   ptrString(formatTime(p.EndAt)),
				},
				LocationID:     ptrString(p.LocationID),
				SegmentFilters: []*sq.SegmentFilter{segment},
			},
		},
	}
}

// BookingCreateParams holds a single-segment appointment request.
type BookingCreateParams struct {
	StartAt                 time.Time
	LocationID              string
	CustomerID              string
	CustomerNote            string
	ServiceVariationID      string
	ServiceVariationVersion int64
	TeamMemberID            string
	DurationMinutes         int
	IdempotencyKey          string
}

func (p BookingCreateParams) toSquareRequest(idempotencyKey string) *sq.CreateBookingRequest {
	segment := &sq.AppointmentSegment{
		ServiceVariationID: ptrString(p.ServiceVariationID),
		TeamMemberID:       p.TeamMemberID,
	}
	if p.ServiceVariationVersion > 0 {
		segment.ServiceVariationVersion = int64Ptr(p.ServiceVariationVersion)
	}
	if p.DurationMinutes > 0 {
		minutes := p.DurationMinutes
		segment.DurationMinutes = &minutes
	}
	booking := &sq.Booking{
		StartAt:             ptrString(formatTime(p.StartAt)),
		LocationID:          ptrString(p.LocationID),
		CustomerID:          ptrString(p.CustomerID),
		AppointmentSegments: []*sq.AppointmentSegment{segment},
	}
	if trimmed := strings.TrimSpace(p.CustomerNote); trimmed != "" {
		booking.CustomerNote = ptrString(trimmed)
	}
	return &sq.CreateBookingRequest{
		IdempotencyKey: ptrString(idempotencyKey),
		Booking:        booking,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}
