package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

type manageCatalogHandler struct {
	catalogSvc service.CatalogManageService
	validator  validator.Validator
	handle     func(handlerFunc) http.HandlerFunc
}

func newManageCatalogHandler(s *Service) *manageCatalogHandler {
	return &manageCatalogHandler{
		catalogSvc: s.svcs.CatalogManage,
		validator:  s.validator,
		handle:     s.handle,
	}
}

func (h *manageCatalogHandler) routes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.handle(h.listCategories))
		r.Post("/", h.handle(h.createCategory))
		r.Get("/{id}", h.handle(h.getCategory))
		r.Put("/{id}", h.handle(h.updateCategory))
		r.Delete("/{id}", h.handle(h.deleteCategory))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handle(h.listProducts))
		r.Post("/", h.handle(h.createProduct))
		r.Get("/{id}", h.handle(h.getProduct))
		r.Put("/{id}", h.handle(h.updateProduct))
		r.Delete("/{id}", h.handle(h.deleteProduct))
	})

	r.Route("/taxes", func(r chi.Router) {
		r.Get("/", h.handle(h.listTaxes))
		r.Post("/", h.handle(h.createTax))
		r.Get("/{id}", h.handle(h.getTax))
		r.Put("/{id}", h.handle(h.updateTax))
		r.Delete("/{id}", h.handle(h.deleteTax))
	})
}

type DeliveryTimeRequest struct {
	Min  int                    `json:"min" validate:"gte=0"`
	Max  int                    `json:"max" validate:"gtefield=Min"`
	Unit model.DeliveryTimeUnit `json:"unit" validate:"enum"`
}

func (d *DeliveryTimeRequest) toModel() *model.DeliveryTime {
	if d == nil {
		return nil
	}
	return &model.DeliveryTime{Min: d.Min, Max: d.Max, Unit: d.Unit}
}

type CriterionRequest struct {
	Kind     model.CriterionKind `json:"kind" validate:"enum"`
	Operator model.Operator      `json:"operator"`
	Value    decimal.Decimal     `json:"value"`
	Refs     []string            `json:"refs" validate:"dive,max=100"`
}

func criteriaToModel(reqs []CriterionRequest) []model.Criterion {
	criteria := make([]model.Criterion, len(reqs))
	for i, c := range reqs {
		criteria[i] = model.Criterion{
			Kind:     c.Kind,
			Operator: c.Operator,
			Position: i,
			Value:    c.Value,
			Refs:     c.Refs,
		}
	}
	return criteria
}

type CategoryRequest struct {
	ParentID              *uuid.UUID `json:"parent_id"`
	Name                  string     `json:"name" validate:"required,max=100"`
	Slug                  string     `json:"slug" validate:"required,slug,max=100"`
	Position              int        `json:"position"`
	ExcludeFromNavigation bool       `json:"exclude_from_navigation"`
	ShowAllProducts       bool       `json:"show_all_products"`
	ShortDescription      string     `json:"short_description"`
	Description           string     `json:"description"`
	MetaTitle             string     `json:"meta_title" validate:"max=200"`
	MetaKeywords          string     `json:"meta_keywords"`
	MetaDescription       string     `json:"meta_description"`
}

func (req CategoryRequest) params() service.CategoryParams {
	return service.CategoryParams{
		ParentID:              req.ParentID,
		Name:                  req.Name,
		Slug:                  req.Slug,
		Position:              req.Position,
		ExcludeFromNavigation: req.ExcludeFromNavigation,
		ShowAllProducts:       req.ShowAllProducts,
		ShortDescription:      req.ShortDescription,
		Description:           req.Description,
		MetaTitle:             req.MetaTitle,
		MetaKeywords:          req.MetaKeywords,
		MetaDescription:       req.MetaDescription,
	}
}

func (h *manageCatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) error {
	categories, err := h.catalogSvc.ListCategories(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Category]{Items: nonNil(categories)})
}

func (h *manageCatalogHandler) getCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	category, err := h.catalogSvc.GetCategory(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, category)
}

func (h *manageCatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) error {
	var req CategoryRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	category, err := h.catalogSvc.CreateCategory(r.Context(), req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, category)
}

func (h *manageCatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	category, err := h.catalogSvc.UpdateCategory(r.Context(), id, req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, category)
}

func (h *manageCatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.catalogSvc.DeleteCategory(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

type ProductRequest struct {
	ParentID          *uuid.UUID           `json:"parent_id"`
	SubType           model.ProductSubType `json:"sub_type" validate:"enum"`
	Name              string               `json:"name" validate:"required,max=200"`
	Slug              string               `json:"slug" validate:"required,slug,max=100"`
	Sku               string               `json:"sku" validate:"max=100"`
	ShortDescription  string               `json:"short_description"`
	Description       string               `json:"description"`
	Price             decimal.Decimal      `json:"price" validate:"decimal"`
	ForSale           bool                 `json:"for_sale"`
	ForSalePrice      decimal.Decimal      `json:"for_sale_price" validate:"decimal"`
	TaxID             *uuid.UUID           `json:"tax_id"`
	Active            bool                 `json:"active"`
	Deliverable       bool                 `json:"deliverable"`
	ManageStockAmount bool                 `json:"manage_stock_amount"`
	StockAmount       int                  `json:"stock_amount" validate:"gte=0"`
	Weight            decimal.Decimal      `json:"weight" validate:"decimal"`
	Height            decimal.Decimal      `json:"height" validate:"decimal"`
	Length            decimal.Decimal      `json:"length" validate:"decimal"`
	Width             decimal.Decimal      `json:"width" validate:"decimal"`
	VariantPosition   int                  `json:"variant_position"`
	DeliveryTime      *DeliveryTimeRequest `json:"delivery_time"`
	CategoryIDs       []uuid.UUID          `json:"category_ids" validate:"max=100"`
}

func (req ProductRequest) params() service.ProductParams {
	return service.ProductParams{
		ParentID:          req.ParentID,
		SubType:           req.SubType,
		Name:              req.Name,
		Slug:              req.Slug,
		Sku:               req.Sku,
		ShortDescription:  req.ShortDescription,
		Description:       req.Description,
		Price:             req.Price,
		ForSale:           req.ForSale,
		ForSalePrice:      req.ForSalePrice,
		TaxID:             req.TaxID,
		Active:            req.Active,
		Deliverable:       req.Deliverable,
		ManageStockAmount: req.ManageStockAmount,
		StockAmount:       req.StockAmount,
		Weight:            req.Weight,
		Height:            req.Height,
		Length:            req.Length,
		Width:             req.Width,
		VariantPosition:   req.VariantPosition,
		DeliveryTime:      req.DeliveryTime.toModel(),
		CategoryIDs:       req.CategoryIDs,
	}
}

func (h *manageCatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) error {
	var (
		q          *string
		categoryID *uuid.UUID
		sort       *repository.ProductSort
	)
	if err := queryParam(r, "q", &q); err != nil {
		return err
	}
	if err := queryParam(r, "category_id", &categoryID); err != nil {
		return err
	}
	if err := queryParam(r, "sort", &sort); err != nil {
		return err
	}
	limit, offset, err := page(r)
	if err != nil {
		return err
	}

	params := service.ManageListProductsParams{
		CategoryID: categoryID,
		Sort:       repository.ProductSortName,
		Limit:      limit,
		Offset:     offset,
	}
	if q != nil {
		params.Query = *q
	}
	if sort != nil {
		if err := sort.Validate(); err != nil {
			return paramErr("sort", err)
		}
		params.Sort = *sort
	}

	products, err := h.catalogSvc.ListProducts(r.Context(), params)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, products)
}

func (h *manageCatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.catalogSvc.GetProduct(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, product)
}

func (h *manageCatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) error {
	var req ProductRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	product, err := h.catalogSvc.CreateProduct(r.Context(), req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, product)
}

func (h *manageCatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	product, err := h.catalogSvc.UpdateProduct(r.Context(), id, req.params())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, product)
}

func (h *manageCatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.catalogSvc.DeleteProduct(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}

type TaxRequest struct {
	Name string          `json:"name" validate:"required,max=100"`
	Rate decimal.Decimal `json:"rate" validate:"decimal"`
}

func (h *manageCatalogHandler) listTaxes(w http.ResponseWriter, r *http.Request) error {
	taxes, err := h.catalogSvc.ListTaxes(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Tax]{Items: nonNil(taxes)})
}

func (h *manageCatalogHandler) getTax(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	tax, err := h.catalogSvc.GetTax(r.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, tax)
}

func (h *manageCatalogHandler) createTax(w http.ResponseWriter, r *http.Request) error {
	var req TaxRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	tax, err := h.catalogSvc.CreateTax(r.Context(), service.TaxParams{Name: req.Name, Rate: req.Rate})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, tax)
}

func (h *manageCatalogHandler) updateTax(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}
	var req TaxRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		return err
	}

	tax, err := h.catalogSvc.UpdateTax(r.Context(), id, service.TaxParams{Name: req.Name, Rate: req.Rate})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, tax)
}

func (h *manageCatalogHandler) deleteTax(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.catalogSvc.DeleteTax(r.Context(), id); err != nil {
		return err
	}

	return noContent(w)
}
