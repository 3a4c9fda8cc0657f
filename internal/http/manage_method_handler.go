package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

type manageMethodHandler struct {
	methodSvc service.MethodService
	validator validator.Validator
	handle    func(handlerFunc) http.HandlerFunc
}

func newManageMethodHandler(s *Service) *manageMethodHandler {
	return &manageMethodHandler{
		methodSvc: s.svcs.Method,
		validator: s.validator,
		handle:    s.handle,
	}
}

func (h *manageMethodHandler) routes(r chi.Router) {
	r.Route("/shipping-methods", func(r chi.Router) {
		r.Get("/", h.handle(h.listShippingMethods))
		r.Post("/", h.handle(h.createShippingMethod))
		r.Get("/{id}", h.handle(h.getShippingMethod))
		r.Put("/{id}", h.handle(h.updateShippingMethod))
		r.Delete("/{id}", h.handle(h.deleteShippingMethod))
		h.priceRoutes(r, model.MethodKindShipping)
	})

	r.Route("/payment-methods", func(r chi.Router) {
		r.Get("/", h.handle(h.listPaymentMethods))
		r.Post("/", h.handle(h.createPaymentMethod))
		r.Get("/{id}", h.handle(h.getPaymentMethod))
		r.Put("/{id}", h.handle(h.updatePaymentMethod))
		r.Delete("/{id}", h.handle(h.deletePaymentMethod))
		h.priceRoutes(r, model.MethodKindPayment)
	})
}

func (h *manageMethodHandler) priceRoutes(r chi.Router, kind model.MethodKind) {
	r.Post("/{id}/prices", h.handle(h.createMethodPrice(kind)))
	r.Put("/{id}/prices/{priceId}", h.handle(h.updateMethodPrice(kind)))
	r.Delete("/{id}/prices/{priceId}", h.handle(h.deleteMethodPrice(kind)))
}

type ShippingMethodRequest struct {
	Name         string               `json:"name" validate:"required,max=100"`
	Description  string               `json:"description"`
	Note         string               `json:"note"`
	Priority     int                  `json:"priority"`
	Active       bool                 `json:"active"`
	TaxID        *uuid.UUID           `json:"tax_id"`
	Price        decimal.Decimal      `json:"price" validate:"decimal"`
	DeliveryTime *DeliveryTimeRequest `json:"delivery_time"`
	Criteria     []CriterionRequest   `json:"criteria" validate:"dive"`
}

func (req ShippingMethodRequest) params() service.ShippingMethodParams {
	return service.ShippingMethodParams{
		Name:         req.Name,
		Description:  req.Description,
		Note:         req.Note,
		Priority:     req.Priority,
		Active:       req.Active,
		TaxID:        req.TaxID,
		Price:        req.Price,
		DeliveryTime: req.DeliveryTime.toModel(),
		Criteria:     criteriaToModel(req.Criteria),
	}
}

func (h *manageMethodHandler) listShippingMethods(w http.ResponseWriter, r *http.Request) error {
	methods, err := h.methodSvc.ListShippingMethods(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.ShippingMethod]{Items: nonNil(methods)})
}

func (h *manageMethodHandler) getShippingMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	method, err := h.methodSvc.GetShippingMethod(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, method)
}

func (h *manageMethodHandler) createShippingMethod(w http.ResponseWriter, r *http.Request) error {
	var req ShippingMethodRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	method, err := h.methodSvc.CreateShippingMethod(r.Context(), req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, method)
}

func (h *manageMethodHandler) updateShippingMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req ShippingMethodRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	method, err := h.methodSvc.UpdateShippingMethod(r.Context(), id, req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, method)
}

func (h *manageMethodHandler) deleteShippingMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.methodSvc.DeleteShippingMethod(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

type PaymentMethodRequest struct {
	Name        string                  `json:"name" validate:"required,max=100"`
	Description string                  `json:"description"`
	Note        string                  `json:"note"`
	Priority    int                     `json:"priority"`
	Active      bool                    `json:"active"`
	TaxID       *uuid.UUID              `json:"tax_id"`
	Price       decimal.Decimal         `json:"price" validate:"decimal"`
	Kind        model.PaymentMethodKind `json:"kind" validate:"enum"`
	Criteria    []CriterionRequest      `json:"criteria" validate:"dive"`
}

func (req PaymentMethodRequest) params() service.PaymentMethodParams {
	return service.PaymentMethodParams{
		Name:        req.Name,
		Description: req.Description,
		Note:        req.Note,
		Priority:    req.Priority,
		Active:      req.Active,
		TaxID:       req.TaxID,
		Price:       req.Price,
		Kind:        req.Kind,
		Criteria:    criteriaToModel(req.Criteria),
	}
}

func (h *manageMethodHandler) listPaymentMethods(w http.ResponseWriter, r *http.Request) error {
	methods, err := h.methodSvc.ListPaymentMethods(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.PaymentMethod]{Items: nonNil(methods)})
}

func (h *manageMethodHandler) getPaymentMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	method, err := h.methodSvc.GetPaymentMethod(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, method)
}

func (h *manageMethodHandler) createPaymentMethod(w http.ResponseWriter, r *http.Request) error {
	var req PaymentMethodRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	method, err := h.methodSvc.CreatePaymentMethod(r.Context(), req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, method)
}

func (h *manageMethodHandler) updatePaymentMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req PaymentMethodRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	method, err := h.methodSvc.UpdatePaymentMethod(r.Context(), id, req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, method)
}

func (h *manageMethodHandler) deletePaymentMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.methodSvc.DeletePaymentMethod(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

type MethodPriceRequest struct {
	Price    decimal.Decimal    `json:"price" validate:"decimal"`
	Priority int                `json:"priority"`
	Active   bool               `json:"active"`
	Criteria []CriterionRequest `json:"criteria" validate:"dive"`
}

func (req MethodPriceRequest) params() service.MethodPriceParams {
	return service.MethodPriceParams{
		Price:    req.Price,
		Priority: req.Priority,
		Active:   req.Active,
		Criteria: criteriaToModel(req.Criteria),
	}
}

func (h *manageMethodHandler) createMethodPrice(kind model.MethodKind) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		var req MethodPriceRequest
		if err := decodeJSON(r, h.validator, &req); err != nil {
			return err
		}

		price, err := h.methodSvc.CreateMethodPrice(r.Context(), kind, id, req.params())
		if err != nil {
			return err
		}

		return writeJSON(w, http.StatusCreated, price)
	}
}

func (h *manageMethodHandler) updateMethodPrice(kind model.MethodKind) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		priceID, err := pathUUID(r, "priceId")
		if err != nil {
			return err
		}
		var req MethodPriceRequest
		if err := decodeJSON(r, h.validator, &req); err != nil {
			return err
		}

		price, err := h.methodSvc.UpdateMethodPrice(r.Context(), kind, priceID, req.params())
		if err != nil {
			return err
		}

		return writeJSON(w, http.StatusOK, price)
	}
}

func (h *manageMethodHandler) deleteMethodPrice(kind model.MethodKind) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		priceID, err := pathUUID(r, "priceId")
		if err != nil {
			return err
		}

		if err := h.methodSvc.DeleteMethodPrice(r.Context(), kind, priceID); err != nil {
			return err
		}

		return noContent(w)
	}
}
