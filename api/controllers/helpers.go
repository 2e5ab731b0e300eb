package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/spa-backend/api/middleware"
	"github.com/angelmondragon/spa-backend/api/responses"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

func clientID(ctx context.Context, w http.ResponseWriter, logg *logger.Logger) (string, bool) {
	id := middleware.ClientIDFromContext(ctx)
	if id == "" {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "client id missing"))
		return "", false
	}
	return id, true
}

func sessionID(ctx context.Context, w http.ResponseWriter, logg *logger.Logger) (string, bool) {
	id := middleware.SessionIDFromContext(ctx)
	if id == "" {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "booking session missing"))
		return "", false
	}
	return id, true
}

func unavailable(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, name string) {
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
}
