package enums

import "fmt"

// BookingStage is where a booking session sits in the handoff pipeline.
type BookingStage string

const (
	BookingStageSelectingServices BookingStage = "selecting_services"
	BookingStageSelectingTime     BookingStage = "selecting_time"
	BookingStageConfirmingBooking BookingStage = "confirming_booking"
	BookingStageSubmitted         BookingStage = "submitted"
)

var validBookingStages = []BookingStage{
	BookingStageSelectingServices,
	BookingStageSelectingTime,
	BookingStageConfirmingBooking,
	BookingStageSubmitted,
}

// String implements fmt.Stringer.
func (s BookingStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingStage.
func (s BookingStage) IsValid() bool {
	for _, candidate := range validBookingStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBookingStage converts raw input into a BookingStage.
func ParseBookingStage(value string) (BookingStage, error) {
	for _, candidate := range validBookingStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking stage %q", value)
}
