package controllers

import (
	"net/http"

	"github.com/angelmondragon/spa-backend/api/responses"
	"github.com/angelmondragon/spa-backend/api/validators"
	"github.com/angelmondragon/spa-backend/internal/terminal"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

type quoteRequest struct {
	Base          string  `json:"base" validate:"max=32"`
	PresetPercent *int    `json:"preset_percent" validate:"omitempty,min=0,max=100"`
	CustomPercent *string `json:"custom_percent" validate:"omitempty,max=16"`
	IncludeFee    bool    `json:"include_fee"`
}

func (p quoteRequest) toInput() terminal.QuoteInput {
	return terminal.QuoteInput{
		Base:          p.Base,
		PresetPercent: p.PresetPercent,
		CustomPercent: p.CustomPercent,
		IncludeFee:    p.IncludeFee,
	}
}

func TerminalPresets(svc terminal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "terminal service")
			return
		}
		responses.WriteSuccess(w, svc.Presets())
	}
}

// TerminalQuote renders the discount/fee breakdown. An invalid base still
// renders, with zero amounts.
func TerminalQuote(svc terminal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "terminal service")
			return
		}
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func TerminalCreateIntent(svc terminal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "terminal service")
			return
		}
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		intent, err := svc.CreateIntent(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

func TerminalIntentStatus(svc terminal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "terminal service")
			return
		}
		id, err := validators.RequireParam(r, "intentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		intent, err := svc.Status(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

// TerminalCancelIntent aborts collection on the reader.
func TerminalCancelIntent(svc terminal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "terminal service")
			return
		}
		id, err := validators.RequireParam(r, "intentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		intent, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}
