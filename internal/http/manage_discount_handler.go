package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

type manageDiscountHandler struct {
	discountSvc service.DiscountService
	voucherSvc  service.VoucherService
	validator   validator.Validator
	handle      func(handlerFunc) http.HandlerFunc
}

func newManageDiscountHandler(s *Service) *manageDiscountHandler {
	return &manageDiscountHandler{
		discountSvc: s.svcs.Discount,
		voucherSvc:  s.svcs.Voucher,
		validator:   s.validator,
		handle:      s.handle,
	}
}

func (h *manageDiscountHandler) routes(r chi.Router) {
	r.Route("/discounts", func(r chi.Router) {
		r.Get("/", h.handle(h.listDiscounts))
		r.Post("/", h.handle(h.createDiscount))
		r.Get("/{id}", h.handle(h.getDiscount))
		r.Put("/{id}", h.handle(h.updateDiscount))
		r.Delete("/{id}", h.handle(h.deleteDiscount))
	})

	r.Route("/voucher-groups", func(r chi.Router) {
		r.Get("/", h.handle(h.listVoucherGroups))
		r.Post("/", h.handle(h.createVoucherGroup))
		r.Get("/{id}", h.handle(h.getVoucherGroup))
		r.Put("/{id}", h.handle(h.updateVoucherGroup))
		r.Delete("/{id}", h.handle(h.deleteVoucherGroup))
		r.Get("/{id}/vouchers", h.handle(h.listVouchers))
		r.Post("/{id}/vouchers", h.handle(h.generateVouchers))
	})

	r.Post("/vouchers/delete", h.handle(h.deleteVouchers))
}

type DiscountRequest struct {
	Name       string             `json:"name" validate:"required,max=100"`
	Active     bool               `json:"active"`
	Value      decimal.Decimal    `json:"value" validate:"decimal"`
	Type       model.ValueType    `json:"type" validate:"enum"`
	TaxID      *uuid.UUID         `json:"tax_id"`
	Sku        string             `json:"sku" validate:"max=100"`
	SumsUp     bool               `json:"sums_up"`
	ProductIDs []uuid.UUID        `json:"product_ids"`
	Criteria   []CriterionRequest `json:"criteria" validate:"dive"`
}

func (req DiscountRequest) params() service.DiscountParams {
	return service.DiscountParams{
		Name:       req.Name,
		Active:     req.Active,
		Value:      req.Value,
		Type:       req.Type,
		TaxID:      req.TaxID,
		Sku:        req.Sku,
		SumsUp:     req.SumsUp,
		ProductIDs: req.ProductIDs,
		Criteria:   criteriaToModel(req.Criteria),
	}
}

func (h *manageDiscountHandler) listDiscounts(w http.ResponseWriter, r *http.Request) error {
	discounts, err := h.discountSvc.ListDiscounts(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Discount]{Items: nonNil(discounts)})
}

func (h *manageDiscountHandler) getDiscount(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	discount, err := h.discountSvc.GetDiscount(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, discount)
}

func (h *manageDiscountHandler) createDiscount(w http.ResponseWriter, r *http.Request) error {
	var req DiscountRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	discount, err := h.discountSvc.CreateDiscount(r.Context(), req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, discount)
}

func (h *manageDiscountHandler) updateDiscount(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req DiscountRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	discount, err := h.discountSvc.UpdateDiscount(r.Context(), id, req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, discount)
}

func (h *manageDiscountHandler) deleteDiscount(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.discountSvc.DeleteDiscount(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

type VoucherGroupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Position int    `json:"position"`
}

func (h *manageDiscountHandler) listVoucherGroups(w http.ResponseWriter, r *http.Request) error {
	groups, err := h.voucherSvc.ListVoucherGroups(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.VoucherGroup]{Items: nonNil(groups)})
}

func (h *manageDiscountHandler) getVoucherGroup(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	group, err := h.voucherSvc.GetVoucherGroup(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, group)
}

func (h *manageDiscountHandler) createVoucherGroup(w http.ResponseWriter, r *http.Request) error {
	var req VoucherGroupRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	group, err := h.voucherSvc.CreateVoucherGroup(r.Context(), service.VoucherGroupParams{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, group)
}

func (h *manageDiscountHandler) updateVoucherGroup(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req VoucherGroupRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	group, err := h.voucherSvc.UpdateVoucherGroup(r.Context(), id, service.VoucherGroupParams{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, group)
}

func (h *manageDiscountHandler) deleteVoucherGroup(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.voucherSvc.DeleteVoucherGroup(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

func (h *manageDiscountHandler) listVouchers(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	vouchers, err := h.voucherSvc.ListVouchers(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Voucher]{Items: nonNil(vouchers)})
}

type VoucherOptionsRequest struct {
	Prefix  string `json:"prefix" validate:"max=20"`
	Suffix  string `json:"suffix" validate:"max=20"`
	Length  int    `json:"length" validate:"gte=1,lte=50"`
	Letters string `json:"letters" validate:"required,max=100"`
}

type GenerateVouchersRequest struct {
	Amount        int                    `json:"amount" validate:"gte=1,lte=10000"`
	Kind          model.ValueType        `json:"kind" validate:"enum"`
	Value         decimal.Decimal        `json:"value" validate:"decimal"`
	TaxID         *uuid.UUID             `json:"tax_id"`
	StartDate     *time.Time             `json:"start_date"`
	EndDate       *time.Time             `json:"end_date"`
	EffectiveFrom decimal.Decimal        `json:"effective_from" validate:"decimal"`
	Limit         int                    `json:"limit" validate:"gte=0"`
	Options       *VoucherOptionsRequest `json:"options"`
}

func (h *manageDiscountHandler) generateVouchers(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req GenerateVouchersRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	params := service.GenerateVouchersParams{
		GroupID:       id,
		Amount:        req.Amount,
		Kind:          req.Kind,
		Value:         req.Value,
		TaxID:         req.TaxID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		EffectiveFrom: req.EffectiveFrom,
		Limit:         req.Limit,
	}
	if o := req.Options; o != nil {
		params.Options = &model.VoucherOptions{Prefix: o.Prefix, Suffix: o.Suffix, Length: o.Length, Letters: o.Letters}
	}

	vouchers, err := h.voucherSvc.GenerateVouchers(r.Context(), params)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, itemsResponse[model.Voucher]{Items: nonNil(vouchers)})
}

type DeleteVouchersRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=1000"`
}

type DeleteVouchersResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *manageDiscountHandler) deleteVouchers(w http.ResponseWriter, r *http.Request) error {
	var req DeleteVouchersRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	n, err := h.voucherSvc.DeleteVouchers(r.Context(), req.IDs)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, DeleteVouchersResponse{Deleted: n})
}
