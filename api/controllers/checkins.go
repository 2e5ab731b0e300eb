package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/spa-backend/api/responses"
	"github.com/angelmondragon/spa-backend/api/validators"
	"github.com/angelmondragon/spa-backend/internal/checkins"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/pagination"
)

type checkInRequest struct {
	CustomerName string `json:"customer_name" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"required,max=32"`
	ServiceName  string `json:"service_name" validate:"max=200"`
	BookingID    string `json:"booking_id" validate:"max=128"`
}

// CheckInCreate records a kiosk arrival.
func CheckInCreate(svc checkins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "check-in service")
			return
		}
		var payload checkInRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), checkins.Input{
			CustomerName: validators.SanitizeString(payload.CustomerName, 120),
			Phone:        payload.Phone,
			ServiceName:  validators.SanitizeString(payload.ServiceName, 200),
			BookingID:    validators.SanitizeString(payload.BookingID, 128),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminCheckInsList pages newest first. from/to are local calendar days and
// to is inclusive.
func AdminCheckInsList(svc checkins.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "check-in service")
			return
		}
		from, to, err := parseDayRange(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), checkins.ListParams{
			From:   from,
			To:     to,
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminCheckInsSummary(svc checkins.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "check-in service")
			return
		}
		from, to, err := parseDayRange(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func parseDayRange(r *http.Request, loc *time.Location) (time.Time, time.Time, error) {
	from, err := validators.ParseQueryDate(r, "from", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := validators.ParseQueryDate(r, "to", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	return from, to, nil
}
