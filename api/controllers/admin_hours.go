package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/spa-backend/api/responses"
	"github.com/angelmondragon/spa-backend/api/validators"
	"github.com/angelmondragon/spa-backend/internal/hours"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

type hoursRequest struct {
	OpenHour  int  `json:"open_hour" validate:"min=0,max=23"`
	CloseHour int  `json:"close_hour" validate:"min=0,max=24"`
	Closed    bool `json:"closed"`
}

func AdminHoursList(svc hours.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "hours service")
			return
		}
		days, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, days)
	}
}

// AdminHoursUpsert replaces one weekday's hours; {weekday} is 0 (Sunday) to 6.
func AdminHoursUpsert(svc hours.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "hours service")
			return
		}
		weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "weekday must be a number from 0 to 6"))
			return
		}
		var payload hoursRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := svc.Upsert(r.Context(), hours.Input{
			Weekday:   weekday,
			OpenHour:  payload.OpenHour,
			CloseHour: payload.CloseHour,
			Closed:    payload.Closed,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, day)
	}
}
