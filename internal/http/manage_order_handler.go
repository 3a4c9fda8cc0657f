package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/lfs/internal/http/apierr"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

type manageOrderHandler struct {
	orderSvc    service.OrderService
	customerSvc service.CustomerService
	validator   validator.Validator
	handle      func(handlerFunc) http.HandlerFunc
}

func newManageOrderHandler(s *Service) *manageOrderHandler {
	return &manageOrderHandler{
		orderSvc:    s.svcs.Order,
		customerSvc: s.svcs.Customer,
		validator:   s.validator,
		handle:      s.handle,
	}
}

func (h *manageOrderHandler) routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handle(h.listOrders))
		r.Get("/{id}", h.handle(h.getOrder))
		r.Get("/{id}/summary", h.handle(h.orderSummary))
		r.Put("/{id}/state", h.handle(h.setOrderState))
		r.Delete("/{id}", h.handle(h.deleteOrder))
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.handle(h.listCustomers))
		r.Get("/{id}", h.handle(h.getCustomer))
	})
}

func (h *manageOrderHandler) listOrders(w http.ResponseWriter, r *http.Request) error {
	var (
		name, state *string
		start, end  *time.Time
	)
	if err := queryParam(r, "name", &name); err != nil {
		return err
	}
	if err := queryParam(r, "state", &state); err != nil {
		return err
	}
	if err := queryParam(r, "start", &start); err != nil {
		return err
	}
	if err := queryParam(r, "end", &end); err != nil {
		return err
	}
	limit, offset, err := page(r)
	if err != nil {
		return err
	}

	params := service.ListOrdersParams{Start: start, End: end, Limit: limit, Offset: offset}
	if name != nil {
		params.Name = *name
	}
	if state != nil {
		s, err := model.ParseOrderState(*state)
		if err != nil {
			return paramErr("state", err)
		}
		params.State = &s
	}

	orders, err := h.orderSvc.ListOrders(r.Context(), params)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, orders)
}

func (h *manageOrderHandler) getOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	order, err := h.orderSvc.GetOrder(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, order)
}

func (h *manageOrderHandler) orderSummary(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	summary, err := h.orderSvc.OrderSummary(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, summary)
}

type SetOrderStateRequest struct {
	State string `json:"state" validate:"required"`
}

func (h *manageOrderHandler) setOrderState(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req SetOrderStateRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	state, err := model.ParseOrderState(req.State)
	if err != nil {
		return &apierr.BodyError{Err: err}
	}

	order, err := h.orderSvc.SetOrderState(r.Context(), id, state)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, order)
}

func (h *manageOrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.orderSvc.DeleteOrder(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

func (h *manageOrderHandler) listCustomers(w http.ResponseWriter, r *http.Request) error {
	var q *string
	if err := queryParam(r, "q", &q); err != nil {
		return err
	}
	limit, offset, err := page(r)
	if err != nil {
		return err
	}

	params := service.ListCustomersParams{Limit: limit, Offset: offset}
	if q != nil {
		params.Query = *q
	}

	customers, err := h.customerSvc.ListCustomers(r.Context(), params)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, customers)
}

func (h *manageOrderHandler) getCustomer(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	customer, err := h.customerSvc.GetCustomer(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, customer)
}
