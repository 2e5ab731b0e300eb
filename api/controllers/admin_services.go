package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/spa-backend/api/responses"
	"github.com/angelmondragon/spa-backend/api/validators"
	"github.com/angelmondragon/spa-backend/internal/catalog"
	"github.com/angelmondragon/spa-backend/pkg/db/models"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

type serviceRequest struct {
	Name            string             `json:"name" validate:"required,max=200"`
	Category        string             `json:"category" validate:"max=100"`
	Description     string             `json:"description" validate:"max=5000"`
	DisplayPrice    string             `json:"display_price" validate:"max=50"`
	DurationMinutes int                `json:"duration_minutes" validate:"min=0,max=1440"`
	Variations      []variationPayload `json:"variations" validate:"dive"`
	Active          *bool              `json:"active"`
	Position        int                `json:"position" validate:"min=0"`
}

type variationPayload struct {
	ID              string `json:"id" validate:"max=128"`
	Name            string `json:"name" validate:"max=100"`
	PriceCents      int64  `json:"price_cents" validate:"min=0"`
	Currency        string `json:"currency" validate:"omitempty,len=3"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=0,max=1440"`
}

func (p serviceRequest) toInput() catalog.ServiceInput {
	input := catalog.ServiceInput{
		Name:            validators.SanitizeString(p.Name, 200),
		Category:        validators.SanitizeString(p.Category, 100),
		Description:     validators.SanitizeString(p.Description, 5000),
		DisplayPrice:    validators.SanitizeString(p.DisplayPrice, 50),
		DurationMinutes: p.DurationMinutes,
		Active:          p.Active,
		Position:        p.Position,
	}
	for _, v := range p.Variations {
		input.Variations = append(input.Variations, catalog.VariationInput{
			ID:              v.ID,
			Name:            validators.SanitizeString(v.Name, 100),
			PriceCents:      v.PriceCents,
			Currency:        v.Currency,
			DurationMinutes: v.DurationMinutes,
		})
	}
	return input
}

type serviceResponse struct {
	ID              uuid.UUID                 `json:"id"`
	Name            string                    `json:"name"`
	Category        string                    `json:"category"`
	Description     string                    `json:"description"`
	DisplayPrice    string                    `json:"display_price"`
	DurationMinutes int                       `json:"duration_minutes"`
	Variations      []models.ServiceVariation `json:"variations"`
	Active          bool                      `json:"active"`
	Position        int                       `json:"position"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

func newServiceResponse(row models.Service) serviceResponse {
	variations := row.Variations.Val
	if variations == nil {
		variations = []models.ServiceVariation{}
	}
	return serviceResponse{
		ID:              row.ID,
		Name:            row.Name,
		Category:        row.Category,
		Description:     row.Description,
		DisplayPrice:    row.DisplayPrice,
		DurationMinutes: row.DurationMinutes,
		Variations:      variations,
		Active:          row.Active,
		Position:        row.Position,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func AdminServicesList(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "service admin")
			return
		}
		rows, err := svc.ListServices(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]serviceResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, newServiceResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminServicesCreate(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "service admin")
			return
		}
		var payload serviceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.CreateService(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newServiceResponse(*row))
	}
}

func AdminServicesUpdate(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "service admin")
			return
		}
		id, err := validators.ParseUUIDParam(r, "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload serviceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.UpdateService(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newServiceResponse(*row))
	}
}

func AdminServicesDelete(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "service admin")
			return
		}
		id, err := validators.ParseUUIDParam(r, "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteService(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
