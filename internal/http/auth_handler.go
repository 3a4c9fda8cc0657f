package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

type authHandler struct {
	authSvc   service.AuthService
	validator validator.Validator
	handle    func(handlerFunc) http.HandlerFunc
}

func newAuthHandler(s *Service) *authHandler {
	return &authHandler{
		authSvc:   s.svcs.Auth,
		validator: s.validator,
		handle:    s.handle,
	}
}

func (h *authHandler) routes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/login", h.handle(h.login))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=200"`
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, token)
}
