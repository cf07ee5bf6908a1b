package controllers

import (
	"net/http"

	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/api/validators"
	userssvc "github.com/rafidahmed/tinbari-backend/internal/users"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin exchanges operator credentials for an access token.
func AuthLogin(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"token":      result.Token,
			"expires_at": result.ExpiresAt,
			"user": map[string]any{
				"id":    result.User.ID,
				"name":  result.User.Name,
				"email": result.User.Email,
				"role":  result.User.Role,
			},
		})
	}
}
