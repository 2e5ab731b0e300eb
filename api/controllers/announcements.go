package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/spa-backend/api/responses"
	"github.com/angelmondragon/spa-backend/api/validators"
	"github.com/angelmondragon/spa-backend/internal/announcements"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

type announcementRequest struct {
	Title    string     `json:"title" validate:"required,max=200"`
	Body     string     `json:"body" validate:"max=5000"`
	Active   *bool      `json:"active"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (p announcementRequest) toInput() announcements.Input {
	return announcements.Input{
		Title:    validators.SanitizeString(p.Title, 200),
		Body:     validators.SanitizeString(p.Body, 5000),
		Active:   p.Active,
		StartsAt: p.StartsAt,
		EndsAt:   p.EndsAt,
	}
}

// AnnouncementsActive lists announcements currently shown on the storefront.
func AnnouncementsActive(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "announcements service")
			return
		}
		items, err := svc.ListActive(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func AdminAnnouncementsList(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "announcements service")
			return
		}
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func AdminAnnouncementsCreate(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "announcements service")
			return
		}
		var payload announcementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func AdminAnnouncementsUpdate(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "announcements service")
			return
		}
		id, err := validators.ParseUUIDParam(r, "announcementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload announcementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func AdminAnnouncementsDelete(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "announcements service")
			return
		}
		id, err := validators.ParseUUIDParam(r, "announcementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
