package controllers

import (
	"net/http"

	"github.com/angelmondragon/spa-backend/api/responses"
	"github.com/angelmondragon/spa-backend/api/validators"
	cartsvc "github.com/angelmondragon/spa-backend/internal/cart"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

type addCartItemRequest struct {
	VariationID string `json:"variation_id" validate:"required,max=128"`
}

// CartGet returns the caller's cart and its totals.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "cart service")
			return
		}
		owner, ok := clientID(r.Context(), w, logg)
		if !ok {
			return
		}
		view, err := svc.Get(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds one unit of a service variation.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "cart service")
			return
		}
		owner, ok := clientID(r.Context(), w, logg)
		if !ok {
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddItem(r.Context(), owner, validators.SanitizeString(payload.VariationID, 128))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveItem drops a line entirely, whatever its quantity.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "cart service")
			return
		}
		owner, ok := clientID(r.Context(), w, logg)
		if !ok {
			return
		}
		itemID, err := validators.RequireParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.RemoveItem(r.Context(), owner, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(r.Context(), w, logg, "cart service")
			return
		}
		owner, ok := clientID(r.Context(), w, logg)
		if !ok {
			return
		}
		view, err := svc.Clear(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
