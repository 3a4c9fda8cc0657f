package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/lfs/internal/http/apierr"
	"github.com/tuanvumaihuynh/lfs/internal/service"
)

type payPalHandler struct {
	payPalSvc service.PayPalService
	handle    func(handlerFunc) http.HandlerFunc
}

func newPayPalHandler(s *Service) *payPalHandler {
	return &payPalHandler{
		payPalSvc: s.svcs.PayPal,
		handle:    s.handle,
	}
}

func (h *payPalHandler) routes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/paypal/ipn", h.handle(h.ipn))
}

// ipn receives PayPal's form encoded notification. PayPal only needs a 200
// to stop retrying, so the body is empty.
func (h *payPalHandler) ipn(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &apierr.BodyError{Err: err}
	}

	if err := h.payPalSvc.HandleIPN(r.Context(), body); err != nil {
		return err
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
