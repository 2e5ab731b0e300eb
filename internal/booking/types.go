package booking

import (
	"time"

	"github.com/angelmondragon/spa-backend/internal/availability"
	"github.com/angelmondragon/spa-backend/internal/cart"
	"github.com/angelmondragon/spa-backend/internal/pricing"
	"github.com/angelmondragon/spa-backend/pkg/enums"
)

// Navigation targets returned to the storefront after each transition.
const (
	TargetTime    = "time"
	TargetConfirm = "confirm"
	TargetHome    = "/"
)

// SelectedSlot is the start time held for a booking session.
type SelectedSlot struct {
	StartAt         time.Time `json:"start_at"`
	TeamMemberID    string    `json:"team_member_id,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	HeldAt          time.Time `json:"held_at"`
}

// Contact is the customer detail collected on the confirmation step.
type Contact struct {
	GivenName  string
	FamilyName string
	Email      string
	Phone      string
	Note       string
}

// BookingRequest is what the scheduler receives for one appointment.
type BookingRequest struct {
	GivenName          string
	FamilyName         string
	Email              string
	Phone              string
	Note               string
	ServiceVariationID string
	VariationVersion   int64
	StartAt            time.Time
	LocationID         string
	TeamMemberID       string
	DurationMinutes    int
}

// Appointment is the booking acknowledged by the scheduler.
type Appointment struct {
	ID         string    `json:"id"`
	Status     string    `json:"status,omitempty"`
	StartAt    time.Time `json:"start_at"`
	LocationID string    `json:"location_id"`
	CustomerID string    `json:"customer_id,omitempty"`
}

// NextResult is returned when the visitor leaves the service selection step.
type NextResult struct {
	Stage    enums.BookingStage `json:"stage"`
	Target   string             `json:"target"`
	Services []cart.LineItem    `json:"services"`
}

// SlotsResult lists the filtered start times for one day.
type SlotsResult struct {
	Date               string                `json:"date"`
	ServiceVariationID string                `json:"service_variation_id"`
	DurationMinutes    int                   `json:"duration_minutes"`
	Slots              []availability.Window `json:"slots"`
}

// State is the booking session as the storefront renders it. The hold is
// advisory only: nothing reserves the slot with the scheduler.
type State struct {
	Stage         enums.BookingStage `json:"stage"`
	Target        string             `json:"target,omitempty"`
	Services      []cart.LineItem    `json:"services"`
	Summary       pricing.Summary    `json:"summary"`
	SelectedSlot  *SelectedSlot      `json:"selected_slot,omitempty"`
	HoldMinutes   int                `json:"hold_minutes"`
	HoldExpiresAt *time.Time         `json:"hold_expires_at,omitempty"`
	HoldEnforced  bool               `json:"hold_enforced"`
}

// Confirmation is returned after a successful submission.
type Confirmation struct {
	Stage                enums.BookingStage `json:"stage"`
	Appointment          Appointment        `json:"appointment"`
	Redirect             string             `json:"redirect"`
	ScheduledVariationID string             `json:"scheduled_variation_id"`
	UnscheduledItems     int                `json:"unscheduled_items"`
}
