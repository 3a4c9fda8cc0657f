package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/catalog"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/cache"
)

const cacheKeyCategories = cache.PrefixCatalog + "categories"

type CategoryTreeParams struct {
	// CurrentSlug marks the category and its parents as current.
	CurrentSlug string
	StartLevel  int
	ExpandLevel int
}

type ListProductsParams struct {
	Sort   repository.ProductSort
	Limit  int32
	Offset int32
}

type ProductPage struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
}

type ProductDetail struct {
	model.Product
	Variants   []model.Product  `json:"variants"`
	Categories []model.Category `json:"categories"`
}

type CatalogService interface {
	CategoryTree(ctx context.Context, params CategoryTreeParams) ([]catalog.Node, error)
	GetCategory(ctx context.Context, slug string) (model.Category, error)
	ListCategoryProducts(ctx context.Context, slug string, params ListProductsParams) (ProductPage, error)
	CategoryPriceFilters(ctx context.Context, slug string) ([]catalog.PriceFilter, error)
	GetProduct(ctx context.Context, slug string) (ProductDetail, error)
	SearchProducts(ctx context.Context, query string, params ListProductsParams) (ProductPage, error)
	LatestProducts(ctx context.Context, limit int32) ([]model.Product, error)
	ForSaleProducts(ctx context.Context, limit int32) ([]model.Product, error)
	// Tree returns the category tree of all stored categories.
	Tree(ctx context.Context) (*catalog.Tree, error)
}

type catalogService struct {
	logger       *slog.Logger
	cache        cache.Cache
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(
	logger *slog.Logger,
	cache cache.Cache,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) CatalogService {
	return &catalogService{
		logger:       logger.With(slog.String("service", "catalog")),
		cache:        cache,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *catalogService) Tree(ctx context.Context) (*catalog.Tree, error) {
	var categories []model.Category
	found, err := s.cache.Get(ctx, cacheKeyCategories, &categories)
	if err != nil {
		s.logger.WarnContext(ctx, "error reading cached categories", slog.Any("error", err))
	}

	if !found {
		categories, err = s.categoryRepo.ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("category repository list categories: %w", err)
		}
		if err := s.cache.Set(ctx, cacheKeyCategories, categories); err != nil {
			s.logger.WarnContext(ctx, "error caching categories", slog.Any("error", err))
		}
	}

	return catalog.NewTree(categories), nil
}

func (s *catalogService) CategoryTree(ctx context.Context, params CategoryTreeParams) ([]catalog.Node, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}

	var currents []uuid.UUID
	if params.CurrentSlug != "" {
		current, err := s.GetCategory(ctx, params.CurrentSlug)
		if err != nil {
			return nil, err
		}
		currents = tree.Currents(current.ID)
	}

	startLevel := params.StartLevel
	if startLevel < 1 {
		startLevel = 1
	}

	return tree.Navigation(currents, startLevel, params.ExpandLevel), nil
}

func (s *catalogService) GetCategory(ctx context.Context, slug string) (model.Category, error) {
	category, err := s.categoryRepo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return model.Category{}, notFound(fmt.Errorf("category repository get category by slug: %w", err), apperr.CategoryNotFoundErr)
	}

	return category, nil
}

// categoryScope returns the categories whose products belong to the category.
func (s *catalogService) categoryScope(ctx context.Context, category model.Category) ([]uuid.UUID, error) {
	if !category.ShowAllProducts {
		return []uuid.UUID{category.ID}, nil
	}

	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Scope(category.ID), nil
}

func (s *catalogService) ListCategoryProducts(ctx context.Context, slug string, params ListProductsParams) (ProductPage, error) {
	category, err := s.GetCategory(ctx, slug)
	if err != nil {
		return ProductPage{}, err
	}

	scope, err := s.categoryScope(ctx, category)
	if err != nil {
		return ProductPage{}, err
	}

	return s.listProducts(ctx, repository.ListProductsParams{
		CategoryIDs: scope,
	}, params)
}

func (s *catalogService) listProducts(ctx context.Context, filter repository.ListProductsParams, params ListProductsParams) (ProductPage, error) {
	filter.ActiveOnly = true
	filter.ExcludeVariants = true
	filter.Sort = params.Sort
	filter.Limit = params.Limit
	filter.Offset = params.Offset
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	products, total, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return ProductPage{}, fmt.Errorf("product repository list products: %w", err)
	}

	return ProductPage{Items: products, Total: total}, nil
}

func (s *catalogService) CategoryPriceFilters(ctx context.Context, slug string) ([]catalog.PriceFilter, error) {
	category, err := s.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}

	scope, err := s.categoryScope(ctx, category)
	if err != nil {
		return nil, err
	}

	prices, err := s.productRepo.ListCategoryPrices(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("product repository list category prices: %w", err)
	}

	return catalog.PriceFilters(prices), nil
}

func (s *catalogService) GetProduct(ctx context.Context, slug string) (ProductDetail, error) {
	product, err := s.productRepo.GetProductBySlug(ctx, slug)
	if err != nil {
		return ProductDetail{}, notFound(fmt.Errorf("product repository get product by slug: %w", err), apperr.ProductNotFoundErr)
	}
	if !product.Active {
		return ProductDetail{}, apperr.ProductNotFoundErr
	}

	detail := ProductDetail{
		Product:    product,
		Variants:   []model.Product{},
		Categories: []model.Category{},
	}

	if product.HasVariants() {
		variants, err := s.productRepo.ListVariants(ctx, []uuid.UUID{product.ID})
		if err != nil {
			return ProductDetail{}, fmt.Errorf("product repository list variants: %w", err)
		}
		if v := variants[product.ID]; v != nil {
			detail.Variants = v
		}
	}

	tree, err := s.Tree(ctx)
	if err != nil {
		return ProductDetail{}, err
	}
	for _, id := range product.CategoryIDs {
		if c, ok := tree.Get(id); ok {
			detail.Categories = append(detail.Categories, c)
		}
	}

	return detail, nil
}

func (s *catalogService) SearchProducts(ctx context.Context, query string, params ListProductsParams) (ProductPage, error) {
	if query == "" {
		return ProductPage{Items: []model.Product{}}, nil
	}

	return s.listProducts(ctx, repository.ListProductsParams{Query: query}, params)
}

func (s *catalogService) LatestProducts(ctx context.Context, limit int32) ([]model.Product, error) {
	page, err := s.listProducts(ctx, repository.ListProductsParams{}, ListProductsParams{
		Sort:  repository.ProductSortNewest,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *catalogService) ForSaleProducts(ctx context.Context, limit int32) ([]model.Product, error) {
	page, err := s.listProducts(ctx, repository.ListProductsParams{ForSaleOnly: true}, ListProductsParams{
		Sort:  repository.ProductSortNewest,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
