package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

type manageMarketingHandler struct {
	marketingSvc service.MarketingService
	exportSvc    service.ExportService
	validator    validator.Validator
	handle       func(handlerFunc) http.HandlerFunc
}

func newManageMarketingHandler(s *Service) *manageMarketingHandler {
	return &manageMarketingHandler{
		marketingSvc: s.svcs.Marketing,
		exportSvc:    s.svcs.Export,
		validator:    s.validator,
		handle:       s.handle,
	}
}

func (h *manageMarketingHandler) routes(r chi.Router) {
	r.Route("/topsellers", func(r chi.Router) {
		r.Get("/", h.handle(h.listTopsellers))
		r.Post("/", h.handle(h.addTopsellers))
		r.Put("/positions", h.handle(h.updateTopsellerPositions))
		r.Delete("/{id}", h.handle(h.deleteTopseller))
	})

	r.Route("/marketing", func(r chi.Router) {
		r.Post("/calculate-sales", h.handle(h.calculateSales))
		r.Post("/rating-mails", h.handle(h.sendRatingMails))
	})

	r.Route("/exports", func(r chi.Router) {
		r.Get("/", h.handle(h.listExports))
		r.Post("/", h.handle(h.createExport))
		r.Get("/{id}", h.handle(h.getExport))
		r.Put("/{id}", h.handle(h.updateExport))
		r.Delete("/{id}", h.handle(h.deleteExport))
		r.Post("/{id}/run", h.handle(h.runExport))
	})
}

func (h *manageMarketingHandler) listTopsellers(w http.ResponseWriter, r *http.Request) error {
	topsellers, err := h.marketingSvc.ListTopsellers(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Topseller]{Items: nonNil(topsellers)})
}

type AddTopsellersRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" validate:"required,min=1,max=100"`
	Position   int         `json:"position"`
}

func (h *manageMarketingHandler) addTopsellers(w http.ResponseWriter, r *http.Request) error {
	var req AddTopsellersRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	topsellers, err := h.marketingSvc.AddTopsellers(r.Context(), service.AddTopsellersParams{
		ProductIDs: req.ProductIDs,
		Position:   req.Position,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, itemsResponse[model.Topseller]{Items: nonNil(topsellers)})
}

type UpdateTopsellerPositionsRequest struct {
	Positions map[uuid.UUID]int `json:"positions" validate:"required,min=1"`
}

func (h *manageMarketingHandler) updateTopsellerPositions(w http.ResponseWriter, r *http.Request) error {
	var req UpdateTopsellerPositionsRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	if err := h.marketingSvc.UpdateTopsellerPositions(r.Context(), req.Positions); err != nil {
		return err
	}

	return noContent(w)
}

func (h *manageMarketingHandler) deleteTopseller(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.marketingSvc.DeleteTopseller(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

type CalculateSalesResponse struct {
	Products int `json:"products"`
}

func (h *manageMarketingHandler) calculateSales(w http.ResponseWriter, r *http.Request) error {
	n, err := h.marketingSvc.CalculateProductSales(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, CalculateSalesResponse{Products: n})
}

type SendRatingMailsRequest struct {
	Test bool     `json:"test"`
	Bcc  []string `json:"bcc" validate:"max=10,dive,email"`
}

type SendRatingMailsResponse struct {
	Sent int `json:"sent"`
}

func (h *manageMarketingHandler) sendRatingMails(w http.ResponseWriter, r *http.Request) error {
	var req SendRatingMailsRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	n, err := h.marketingSvc.SendRatingMails(r.Context(), service.SendRatingMailsParams{
		Test: req.Test,
		Bcc:  req.Bcc,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, SendRatingMailsResponse{Sent: n})
}

type ExportRequest struct {
	Name           string               `json:"name" validate:"required,max=100"`
	Slug           string               `json:"slug" validate:"required,slug,max=100"`
	Position       int                  `json:"position"`
	Script         model.ExportScript   `json:"script" validate:"enum"`
	VariantsOption model.VariantsOption `json:"variants_option" validate:"enum"`
	ProductIDs     []uuid.UUID          `json:"product_ids"`
}

func (req ExportRequest) params() service.ExportParams {
	return service.ExportParams{
		Name:           req.Name,
		Slug:           req.Slug,
		Position:       req.Position,
		Script:         req.Script,
		VariantsOption: req.VariantsOption,
		ProductIDs:     req.ProductIDs,
	}
}

func (h *manageMarketingHandler) listExports(w http.ResponseWriter, r *http.Request) error {
	exports, err := h.exportSvc.ListExports(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Export]{Items: nonNil(exports)})
}

func (h *manageMarketingHandler) getExport(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	e, err := h.exportSvc.GetExport(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, e)
}

func (h *manageMarketingHandler) createExport(w http.ResponseWriter, r *http.Request) error {
	var req ExportRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	e, err := h.exportSvc.CreateExport(r.Context(), req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, e)
}

func (h *manageMarketingHandler) updateExport(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req ExportRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	e, err := h.exportSvc.UpdateExport(r.Context(), id, req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, e)
}

func (h *manageMarketingHandler) deleteExport(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.exportSvc.DeleteExport(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

// runExport responds with the generated CSV. The feed is buffered so a
// failed run still gets a JSON error response.
func (h *manageMarketingHandler) runExport(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	e, err := h.exportSvc.GetExport(r.Context(), id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	result, err := h.exportSvc.RunExport(r.Context(), e.Slug, &buf)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", e.Slug+".csv"))
	w.Header().Set("X-Export-Location", result.Location)
	w.Header().Set("X-Export-Products", strconv.Itoa(result.Products))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
