package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

type cartHandler struct {
	cartSvc     service.CartService
	checkoutSvc service.CheckoutService
	validator   validator.Validator
	handle      func(handlerFunc) http.HandlerFunc
}

func newCartHandler(s *Service) *cartHandler {
	return &cartHandler{
		cartSvc:     s.svcs.Cart,
		checkoutSvc: s.svcs.Checkout,
		validator:   s.validator,
		handle:      s.handle,
	}
}

func (h *cartHandler) routes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.handle(h.createCart))
		r.Get("/{id}", h.handle(h.getCart))
		r.Delete("/{id}", h.handle(h.deleteCart))
		r.Post("/{id}/items", h.handle(h.addItem))
		r.Put("/{id}/items/{productId}", h.handle(h.setItemAmount))
		r.Delete("/{id}/items/{productId}", h.handle(h.removeItem))
		r.Put("/{id}/shipping-method", h.handle(h.selectShippingMethod))
		r.Put("/{id}/payment-method", h.handle(h.selectPaymentMethod))
		r.Put("/{id}/country", h.handle(h.setCountry))
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Use(limit)
		r.Post("/voucher", h.handle(h.checkVoucher))
		r.Post("/", h.handle(h.addOrder))
	})
}

type CreateCartRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Session    string     `json:"session" validate:"max=100"`
	Country    string     `json:"country" validate:"omitempty,iso3166_1_alpha2"`
}

func (h *cartHandler) createCart(w http.ResponseWriter, r *http.Request) error {
	var req CreateCartRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	cart, err := h.cartSvc.CreateCart(r.Context(), service.CreateCartParams{
		CustomerID: req.CustomerID,
		Session:    req.Session,
		Country:    req.Country,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, cart)
}

func (h *cartHandler) getCart(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	cart, err := h.cartSvc.GetCart(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, cart)
}

func (h *cartHandler) deleteCart(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.cartSvc.DeleteCart(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Amount    int       `json:"amount" validate:"gte=1,lte=10000"`
}

func (h *cartHandler) addItem(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req AddCartItemRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	cart, err := h.cartSvc.AddItem(r.Context(), id, req.ProductID, req.Amount)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, cart)
}

type SetCartItemAmountRequest struct {
	Amount int `json:"amount" validate:"gte=0,lte=10000"`
}

func (h *cartHandler) setItemAmount(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	productID, err := pathUUID(r, "productId")
	if err != nil {
		return err
	}
	var req SetCartItemAmountRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	cart, err := h.cartSvc.SetItemAmount(r.Context(), id, productID, req.Amount)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, cart)
}

func (h *cartHandler) removeItem(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	productID, err := pathUUID(r, "productId")
	if err != nil {
		return err
	}

	cart, err := h.cartSvc.RemoveItem(r.Context(), id, productID)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, cart)
}

type SelectMethodRequest struct {
	MethodID uuid.UUID `json:"method_id" validate:"required"`
}

func (h *cartHandler) selectShippingMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req SelectMethodRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	cart, err := h.cartSvc.SelectShippingMethod(r.Context(), id, req.MethodID)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, cart)
}

func (h *cartHandler) selectPaymentMethod(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req SelectMethodRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	cart, err := h.cartSvc.SelectPaymentMethod(r.Context(), id, req.MethodID)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, cart)
}

type SetCountryRequest struct {
	Country string `json:"country" validate:"required,iso3166_1_alpha2"`
}

func (h *cartHandler) setCountry(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req SetCountryRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	cart, err := h.cartSvc.SetCountry(r.Context(), id, req.Country)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, cart)
}

type CheckVoucherRequest struct {
	CartID uuid.UUID `json:"cart_id" validate:"required"`
	Number string    `json:"number" validate:"required,max=100"`
}

func (h *cartHandler) checkVoucher(w http.ResponseWriter, r *http.Request) error {
	var req CheckVoucherRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	check, err := h.checkoutSvc.CheckVoucher(r.Context(), req.CartID, req.Number)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, check)
}

type AddOrderRequest struct {
	CartID                uuid.UUID          `json:"cart_id" validate:"required"`
	Email                 string             `json:"email" validate:"required,email,max=254"`
	InvoiceAddress        model.Address      `json:"invoice_address"`
	ShippingAddress       *model.Address     `json:"shipping_address" validate:"required_without=NoShipping"`
	NoShipping            bool               `json:"no_shipping"`
	BankAccount           *model.BankAccount `json:"bank_account"`
	VoucherNumber         string             `json:"voucher_number" validate:"max=100"`
	Message               string             `json:"message" validate:"max=2000"`
	RequestedDeliveryDate *time.Time         `json:"requested_delivery_date"`
}

func (h *cartHandler) addOrder(w http.ResponseWriter, r *http.Request) error {
	var req AddOrderRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	order, err := h.checkoutSvc.AddOrder(r.Context(), service.AddOrderParams{
		CartID:                req.CartID,
		Email:                 req.Email,
		InvoiceAddress:        req.InvoiceAddress,
		ShippingAddress:       req.ShippingAddress,
		NoShipping:            req.NoShipping,
		BankAccount:           req.BankAccount,
		VoucherNumber:         req.VoucherNumber,
		Message:               req.Message,
		RequestedDeliveryDate: req.RequestedDeliveryDate,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, order)
}
