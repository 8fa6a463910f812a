package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ttbackend/apiserver/internal/auth"
	"github.com/ttbackend/apiserver/internal/services"
	"github.com/ttbackend/apiserver/internal/store"
)

// EmployeeHandler serves the authenticated employee's own profile.
type EmployeeHandler struct {
	employeeService   *services.EmployeeService
	credentialService *services.CredentialService
}

func NewEmployeeHandler(employeeService *services.EmployeeService, credentialService *services.CredentialService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService:   employeeService,
		credentialService: credentialService,
	}
}

// EmployeeRouter registers employee routes. Every route is gated by authMiddleware.
func EmployeeRouter(
	r chi.Router,
	employeeService *services.EmployeeService,
	credentialService *services.CredentialService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewEmployeeHandler(employeeService, credentialService)

	r.Use(authMiddleware)
	r.Get("/me", handler.Me)
	r.Put("/me/password", handler.ChangePassword)
}

// Me returns the current authenticated employee.
func (h *EmployeeHandler) Me(w http.ResponseWriter, r *http.Request) {
	employeeID, err := auth.EmployeeIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w, msgUnauthorized)
		return
	}

	employee, err := h.employeeService.GetByID(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeUnauthorized(w, msgUnauthorized)
			return
		}
		writeError(w, http.StatusInternalServerError, msgUnexpected)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// ChangePassword replaces the authenticated employee's password.
func (h *EmployeeHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	employeeID, err := auth.EmployeeIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w, msgUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.credentialService.ChangePassword(r.Context(), employeeID, req.Password); err != nil {
		if auth.KindOf(err) == auth.KindMissingCredentials {
			writeError(w, http.StatusBadRequest, "missing password")
			return
		}
		writeAuthError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}
