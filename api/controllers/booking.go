package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/spa-backend/api/responses"
	"github.com/angelmondragon/spa-backend/api/validators"
	"github.com/angelmondragon/spa-backend/internal/booking"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

type selectSlotRequest struct {
	StartAt         time.Time `json:"start_at" validate:"required"`
	TeamMemberID    string    `json:"team_member_id" validate:"max=128"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0,max=1440"`
}

// Field requirements live in the booking service so every failure is reported together.
type confirmBookingRequest struct {
	GivenName  string `json:"given_name" validate:"max=100"`
	FamilyName string `json:"family_name" validate:"max=100"`
	Email      string `json:"email" validate:"max=254"`
	Phone      string `json:"phone" validate:"max=32"`
	Note       string `json:"note" validate:"max=1000"`
}

func (p confirmBookingRequest) toContact() booking.Contact {
	return booking.Contact{
		GivenName:  validators.SanitizeString(p.GivenName, 100),
		FamilyName: validators.SanitizeString(p.FamilyName, 100),
		Email:      validators.SanitizeString(p.Email, 254),
		Phone:      validators.SanitizeString(p.Phone, 32),
		Note:       validators.SanitizeString(p.Note, 1000),
	}
}

// BookingNext hands the cart to the booking session and moves to time selection.
func BookingNext(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "booking service")
			return
		}
		owner, ok := clientID(r.Context(), w, logg)
		if !ok {
			return
		}
		session, ok := sessionID(r.Context(), w, logg)
		if !ok {
			return
		}
		result, err := svc.Next(r.Context(), owner, session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func BookingState(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "booking service")
			return
		}
		session, ok := sessionID(r.Context(), w, logg)
		if !ok {
			return
		}
		state, err := svc.State(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// BookingSlots lists start times for ?date=YYYY-MM-DD after the closing-time filter.
func BookingSlots(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "booking service")
			return
		}
		session, ok := sessionID(r.Context(), w, logg)
		if !ok {
			return
		}
		result, err := svc.SearchSlots(r.Context(), session, r.URL.Query().Get("date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func BookingSelectSlot(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "booking service")
			return
		}
		session, ok := sessionID(r.Context(), w, logg)
		if !ok {
			return
		}

		var payload selectSlotRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SelectSlot(r.Context(), session, booking.SelectedSlot{
			StartAt:         payload.StartAt,
			TeamMemberID:    validators.SanitizeString(payload.TeamMemberID, 128),
			DurationMinutes: payload.DurationMinutes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// BookingConfirm submits the appointment. On success the cart and session are
// cleared and the response redirects home.
func BookingConfirm(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "booking service")
			return
		}
		owner, ok := clientID(r.Context(), w, logg)
		if !ok {
			return
		}
		session, ok := sessionID(r.Context(), w, logg)
		if !ok {
			return
		}

		var payload confirmBookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.Confirm(r.Context(), owner, session, payload.toContact())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}
