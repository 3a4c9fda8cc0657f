package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/catalog"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/service"
)

type catalogHandler struct {
	catalogSvc   service.CatalogService
	marketingSvc service.MarketingService
	portletSvc   service.PortletService
	handle       func(handlerFunc) http.HandlerFunc
}

func newCatalogHandler(s *Service) *catalogHandler {
	return &catalogHandler{
		catalogSvc:   s.svcs.Catalog,
		marketingSvc: s.svcs.Marketing,
		portletSvc:   s.svcs.Portlet,
		handle:       s.handle,
	}
}

func (h *catalogHandler) routes(r chi.Router) {
	r.Get("/categories/tree", h.handle(h.categoryTree))
	r.Get("/categories/{slug}", h.handle(h.getCategory))
	r.Get("/categories/{slug}/products", h.handle(h.listCategoryProducts))
	r.Get("/categories/{slug}/price-filters", h.handle(h.categoryPriceFilters))
	r.Get("/categories/{slug}/topseller", h.handle(h.categoryTopseller))
	r.Get("/products/{slug}", h.handle(h.getProduct))
	r.Get("/search", h.handle(h.search))
	r.Get("/topseller", h.handle(h.topseller))
	r.Get("/portlets/{name}", h.handle(h.portlet))
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

func (h *catalogHandler) categoryTree(w http.ResponseWriter, r *http.Request) error {
	var (
		current                 *string
		startLevel, expandLevel *int
	)
	if err := queryParam(r, "current", &current); err != nil {
		return err
	}
	if err := queryParam(r, "start_level", &startLevel); err != nil {
		return err
	}
	if err := queryParam(r, "expand_level", &expandLevel); err != nil {
		return err
	}

	params := service.CategoryTreeParams{StartLevel: 1}
	if current != nil {
		params.CurrentSlug = *current
	}
	if startLevel != nil {
		params.StartLevel = *startLevel
	}
	if expandLevel != nil {
		params.ExpandLevel = *expandLevel
	}

	nodes, err := h.catalogSvc.CategoryTree(r.Context(), params)
	if err != nil {
		return err
	}
	if nodes == nil {
		nodes = []catalog.Node{}
	}

	return writeJSON(w, http.StatusOK, itemsResponse[catalog.Node]{Items: nodes})
}

func (h *catalogHandler) getCategory(w http.ResponseWriter, r *http.Request) error {
	slug, err := pathString(r, "slug")
	if err != nil {
		return err
	}

	category, err := h.catalogSvc.GetCategory(r.Context(), slug)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, category)
}

func listProductsParams(r *http.Request) (service.ListProductsParams, error) {
	var sort *repository.ProductSort
	if err := queryParam(r, "sort", &sort); err != nil {
		return service.ListProductsParams{}, err
	}
	limit, offset, err := page(r)
	if err != nil {
		return service.ListProductsParams{}, err
	}

	params := service.ListProductsParams{Sort: repository.ProductSortName, Limit: limit, Offset: offset}
	if sort != nil {
		if err := sort.Validate(); err != nil {
			return service.ListProductsParams{}, paramErr("sort", err)
		}
		params.Sort = *sort
	}
	return params, nil
}

func (h *catalogHandler) listCategoryProducts(w http.ResponseWriter, r *http.Request) error {
	slug, err := pathString(r, "slug")
	if err != nil {
		return err
	}
	params, err := listProductsParams(r)
	if err != nil {
		return err
	}

	products, err := h.catalogSvc.ListCategoryProducts(r.Context(), slug, params)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, products)
}

func (h *catalogHandler) categoryPriceFilters(w http.ResponseWriter, r *http.Request) error {
	slug, err := pathString(r, "slug")
	if err != nil {
		return err
	}

	filters, err := h.catalogSvc.CategoryPriceFilters(r.Context(), slug)
	if err != nil {
		return err
	}
	if filters == nil {
		filters = []catalog.PriceFilter{}
	}

	return writeJSON(w, http.StatusOK, itemsResponse[catalog.PriceFilter]{Items: filters})
}

func queryLimit(r *http.Request) (int, error) {
	var limit *int
	if err := queryParam(r, "limit", &limit); err != nil {
		return 0, err
	}
	if limit == nil {
		return 0, nil
	}
	if *limit < 0 {
		return 0, paramErr("limit", errors.New("must not be negative"))
	}
	return min(*limit, maxPageLimit), nil
}

func (h *catalogHandler) categoryTopseller(w http.ResponseWriter, r *http.Request) error {
	slug, err := pathString(r, "slug")
	if err != nil {
		return err
	}
	limit, err := queryLimit(r)
	if err != nil {
		return err
	}

	products, err := h.marketingSvc.TopsellerForCategory(r.Context(), slug, limit)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Product]{Items: nonNil(products)})
}

func (h *catalogHandler) topseller(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryLimit(r)
	if err != nil {
		return err
	}

	products, err := h.marketingSvc.Topseller(r.Context(), limit)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, itemsResponse[model.Product]{Items: nonNil(products)})
}

func (h *catalogHandler) getProduct(w http.ResponseWriter, r *http.Request) error {
	slug, err := pathString(r, "slug")
	if err != nil {
		return err
	}

	product, err := h.catalogSvc.GetProduct(r.Context(), slug)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, product)
}

func (h *catalogHandler) search(w http.ResponseWriter, r *http.Request) error {
	var q *string
	if err := queryParam(r, "q", &q); err != nil {
		return err
	}
	params, err := listProductsParams(r)
	if err != nil {
		return err
	}

	query := ""
	if q != nil {
		query = *q
	}

	products, err := h.catalogSvc.SearchProducts(r.Context(), query, params)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, products)
}

func (h *catalogHandler) portlet(w http.ResponseWriter, r *http.Request) error {
	name, err := pathString(r, "name")
	if err != nil {
		return err
	}

	var (
		current *string
		cartID  *uuid.UUID
	)
	if err := queryParam(r, "current", &current); err != nil {
		return err
	}
	if err := queryParam(r, "cart_id", &cartID); err != nil {
		return err
	}
	limit, err := queryLimit(r)
	if err != nil {
		return err
	}

	params := service.PortletParams{CartID: cartID, Limit: limit}
	if current != nil {
		params.CurrentSlug = *current
	}

	content, err := h.portletSvc.Portlet(r.Context(), name, params)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, content)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
