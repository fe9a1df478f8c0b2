package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/api/validators"
	"github.com/angelmondragon/caraccessories-storefront/internal/auth"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// SessionManager is the part of the auth manager the gateway drives.
type SessionManager interface {
	Login(ctx context.Context, identifier, secret string) (*types.UserProfile, error)
	Register(ctx context.Context, req types.RegisterRequest) (*auth.RegisterResponse, error)
	Logout(ctx context.Context)
	Session() auth.Session
	Restoring() bool
	IsAdmin() bool
	IsBuyer() bool
	TokenExpiry() *time.Time
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated  bool               `json:"authenticated"`
	Restoring      bool               `json:"restoring"`
	IsAdmin        bool               `json:"isAdmin"`
	IsBuyer        bool               `json:"isBuyer"`
	User           *types.UserProfile `json:"user,omitempty"`
	TokenExpiresAt *time.Time         `json:"tokenExpiresAt,omitempty"`
}

func newSessionResponse(mgr SessionManager) sessionResponse {
	s := mgr.Session()
	return sessionResponse{
		Authenticated:  s.IsAuthenticated(),
		Restoring:      mgr.Restoring(),
		IsAdmin:        mgr.IsAdmin(),
		IsBuyer:        mgr.IsBuyer(),
		User:           s.User,
		TokenExpiresAt: mgr.TokenExpiry(),
	}
}

// SessionFetch reports the current identity.
func SessionFetch(mgr SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newSessionResponse(mgr))
	}
}

// SessionLogin authenticates against the backend.
func SessionLogin(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := mgr.Login(r.Context(), validators.SanitizeString(body.Username, 254), body.Password); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(mgr))
	}
}

// SessionRegister creates an account. The caller still has to log in.
func SessionRegister(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body types.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := mgr.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}

// SessionLogout clears the session and, through session.cleared, the cart.
func SessionLogout(mgr SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr.Logout(r.Context())
		responses.WriteSuccess(w, newSessionResponse(mgr))
	}
}
