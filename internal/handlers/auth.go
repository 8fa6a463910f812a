package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ttbackend/apiserver/internal/auth"
	"github.com/ttbackend/apiserver/internal/services"
)

// TokenVerifier checks a bearer access token and returns its claims.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

// AuthHandler provides the login and refresh endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService) {
	handler := NewAuthHandler(authService)

	r.Post("/login", handler.Login)
	r.Post("/refresh", handler.Refresh)
}

// RequireAuth enforces bearer authentication and injects the employee id
// into the request context. Rejected requests never reach next.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, msgUnauthorized)
				return
			}

			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				writeUnauthorized(w, msgUnauthorized)
				return
			}
			employeeID, err := claims.EmployeeID()
			if err != nil {
				writeUnauthorized(w, msgUnauthorized)
				return
			}

			ctx := auth.WithEmployeeID(r.Context(), employeeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Login verifies credentials and returns an access/refresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Refresh trades a refresh token for a new access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if auth.KindOf(err) == auth.KindMissingCredentials {
			writeError(w, http.StatusBadRequest, "missing refresh token")
			return
		}
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
