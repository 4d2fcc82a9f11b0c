package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/errs"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sqlx.DB
	Issuer    *auth.Issuer
	validator *validator.Validate
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(db *sqlx.DB, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{DB: db, Issuer: issuer, validator: validator.New()}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// loginError turns a validation failure into a client message.
func loginError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "min" {
				return fmt.Sprintf("%s must be at least %s characters", strings.ToLower(fe.Field()), fe.Param())
			}
		}
	}
	return "username and password required"
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	// Checked before any database access.
	if err := h.validator.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, errs.EInvalid, loginError(err))
		return
	}

	admin, err := auth.Authenticate(r.Context(), h.DB, req.Username, req.Password)
	if err != nil {
		handleError(w, r, err, "failed to log in")
		return
	}
	if admin == nil {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, errs.EUnauthorized, "invalid username or password")
		return
	}

	token, err := h.Issuer.Issue(admin.Username)
	if err != nil {
		handleError(w, r, err, "failed to generate token")
		return
	}

	slog.Info("admin logged in", "user", admin.Username)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, Username: admin.Username})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// just discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	jsonResponse(w, http.StatusOK, map[string]string{"username": id.Username})
}
