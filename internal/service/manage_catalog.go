package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/catalog"
	"github.com/tuanvumaihuynh/lfs/internal/event"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

const (
	actionCreated = "created"
	actionUpdated = "updated"
	actionDeleted = "deleted"
)

type CategoryParams struct {
	ParentID              *uuid.UUID
	Name                  string
	Slug                  string
	Position              int
	ExcludeFromNavigation bool
	ShowAllProducts       bool
	ShortDescription      string
	Description           string
	MetaTitle             string
	MetaKeywords          string
	MetaDescription       string
}

type ProductParams struct {
	ParentID          *uuid.UUID
	SubType           model.ProductSubType
	Name              string
	Slug              string
	Sku               string
	ShortDescription  string
	Description       string
	Price             decimal.Decimal
	ForSale           bool
	ForSalePrice      decimal.Decimal
	TaxID             *uuid.UUID
	Active            bool
	Deliverable       bool
	ManageStockAmount bool
	StockAmount       int
	Weight            decimal.Decimal
	Height            decimal.Decimal
	Length            decimal.Decimal
	Width             decimal.Decimal
	VariantPosition   int
	DeliveryTime      *model.DeliveryTime
	CategoryIDs       []uuid.UUID
}

type TaxParams struct {
	Name string
	Rate decimal.Decimal
}

type ManageListProductsParams struct {
	Query      string
	CategoryID *uuid.UUID
	Sort       repository.ProductSort
	Limit      int32
	Offset     int32
}

type CatalogManageService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error)
	CreateCategory(ctx context.Context, params CategoryParams) (model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, params ManageListProductsParams) (ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	CreateProduct(ctx context.Context, params ProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListTaxes(ctx context.Context) ([]model.Tax, error)
	GetTax(ctx context.Context, id uuid.UUID) (model.Tax, error)
	CreateTax(ctx context.Context, params TaxParams) (model.Tax, error)
	UpdateTax(ctx context.Context, id uuid.UUID, params TaxParams) (model.Tax, error)
	DeleteTax(ctx context.Context, id uuid.UUID) error
}

type catalogManageService struct {
	db            db.DB
	logger        *slog.Logger
	now           Clock
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	taxRepo       repository.TaxRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewCatalogManageService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	taxRepo repository.TaxRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) CatalogManageService {
	return &catalogManageService{
		db:            db,
		logger:        logger.With(slog.String("service", "catalog_manage")),
		now:           now,
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		taxRepo:       taxRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *catalogManageService) catalogChanged(ctx context.Context, conn db.DB, entity event.CatalogEntity, id uuid.UUID, action string) error {
	key := string(entity)
	return writeOutboxMsg(ctx, s.outboxMsgRepo.WithDB(conn), event.TopicCatalogChanged, &key, event.CatalogChangedEvent{
		Entity: entity,
		ID:     &id,
		Action: action,
	})
}

func (s *catalogManageService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository list categories: %w", err)
	}

	return categories, nil
}

func (s *catalogManageService) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	category, err := s.categoryRepo.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, notFound(fmt.Errorf("category repository get category: %w", err), apperr.CategoryNotFoundErr)
	}

	return category, nil
}

func applyCategoryParams(c *model.Category, params CategoryParams) {
	c.ParentID = params.ParentID
	c.Name = params.Name
	c.Slug = params.Slug
	c.Position = params.Position
	c.ExcludeFromNavigation = params.ExcludeFromNavigation
	c.ShowAllProducts = params.ShowAllProducts
	c.ShortDescription = params.ShortDescription
	c.Description = params.Description
	c.MetaTitle = params.MetaTitle
	c.MetaKeywords = params.MetaKeywords
	c.MetaDescription = params.MetaDescription
}

func (s *catalogManageService) CreateCategory(ctx context.Context, params CategoryParams) (model.Category, error) {
	id, err := newID()
	if err != nil {
		return model.Category{}, err
	}

	now := s.now()
	category := model.Category{ID: id, Level: 1, CreatedAt: now, UpdatedAt: now}
	applyCategoryParams(&category, params)

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		categoryRepo := s.categoryRepo.WithDB(db)

		if category.ParentID != nil {
			parent, err := categoryRepo.GetCategory(ctx, *category.ParentID)
			if err != nil {
				return notFound(fmt.Errorf("category repository get category: %w", err), apperr.CategoryNotFoundErr)
			}
			category.Level = parent.Level + 1
		}

		if err := categoryRepo.CreateCategory(ctx, category); err != nil {
			return conflict(fmt.Errorf("category repository create category: %w", err), apperr.CategorySlugTakenErr)
		}

		return s.catalogChanged(ctx, db, event.CatalogEntityCategory, category.ID, actionCreated)
	}); err != nil {
		return model.Category{}, fmt.Errorf("db with tx: %w", err)
	}

	return category, nil
}

// UpdateCategory moves the category and its subtree when the parent changes.
// A category can not be moved below itself.
func (s *catalogManageService) UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (model.Category, error) {
	var category model.Category

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		categoryRepo := s.categoryRepo.WithDB(db)

		categories, err := categoryRepo.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("category repository list categories: %w", err)
		}
		tree := catalog.NewTree(categories)

		current, ok := tree.Get(id)
		if !ok {
			return apperr.CategoryNotFoundErr
		}
		category = current
		applyCategoryParams(&category, params)
		category.UpdatedAt = s.now()
		category.Level = 1

		if category.ParentID != nil {
			if *category.ParentID == id {
				return apperr.CategoryParentErr
			}
			for _, child := range tree.AllChildren(id) {
				if child.ID == *category.ParentID {
					return apperr.CategoryParentErr
				}
			}
			parent, ok := tree.Get(*category.ParentID)
			if !ok {
				return apperr.CategoryNotFoundErr
			}
			category.Level = parent.Level + 1
		}

		if err := categoryRepo.UpdateCategory(ctx, category); err != nil {
			return conflict(notFound(fmt.Errorf("category repository update category: %w", err), apperr.CategoryNotFoundErr), apperr.CategorySlugTakenErr)
		}

		if shift := category.Level - current.Level; shift != 0 {
			for _, child := range tree.AllChildren(id) {
				child.Level += shift
				child.UpdatedAt = category.UpdatedAt
				if err := categoryRepo.UpdateCategory(ctx, child); err != nil {
					return fmt.Errorf("category repository update category: %w", err)
				}
			}
		}

		return s.catalogChanged(ctx, db, event.CatalogEntityCategory, category.ID, actionUpdated)
	}); err != nil {
		return model.Category{}, fmt.Errorf("db with tx: %w", err)
	}

	return category, nil
}

func (s *catalogManageService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.categoryRepo.WithDB(db).DeleteCategory(ctx, id); err != nil {
			return notFound(fmt.Errorf("category repository delete category: %w", err), apperr.CategoryNotFoundErr)
		}

		return s.catalogChanged(ctx, db, event.CatalogEntityCategory, id, actionDeleted)
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *catalogManageService) ListProducts(ctx context.Context, params ManageListProductsParams) (ProductPage, error) {
	filter := repository.ListProductsParams{
		Query:  params.Query,
		Sort:   params.Sort,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if params.CategoryID != nil {
		filter.CategoryIDs = []uuid.UUID{*params.CategoryID}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	products, total, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return ProductPage{}, fmt.Errorf("product repository list products: %w", err)
	}

	return ProductPage{Items: products, Total: total}, nil
}

func (s *catalogManageService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, notFound(fmt.Errorf("product repository get product: %w", err), apperr.ProductNotFoundErr)
	}

	return product, nil
}

func applyProductParams(p *model.Product, params ProductParams) {
	p.ParentID = params.ParentID
	p.SubType = params.SubType
	p.Name = params.Name
	p.Slug = params.Slug
	p.Sku = params.Sku
	p.ShortDescription = params.ShortDescription
	p.Description = params.Description
	p.Price = params.Price
	p.ForSale = params.ForSale
	p.ForSalePrice = params.ForSalePrice
	p.TaxID = params.TaxID
	p.Active = params.Active
	p.Deliverable = params.Deliverable
	p.ManageStockAmount = params.ManageStockAmount
	p.StockAmount = params.StockAmount
	p.Weight = params.Weight
	p.Height = params.Height
	p.Length = params.Length
	p.Width = params.Width
	p.VariantPosition = params.VariantPosition
	p.DeliveryTime = params.DeliveryTime
	p.CategoryIDs = slices.Clone(params.CategoryIDs)
	if p.SubType == "" {
		p.SubType = model.ProductSubTypeStandard
	}
}

// checkProductParent makes sure variants hang below a product with variants
// and nothing else has a parent.
func checkProductParent(ctx context.Context, repo repository.ProductRepository, p model.Product) error {
	if !p.IsVariant() {
		if p.ParentID != nil {
			return apperr.ProductParentErr
		}
		return nil
	}

	if p.ParentID == nil || *p.ParentID == p.ID {
		return apperr.ProductParentErr
	}

	parent, err := repo.GetProduct(ctx, *p.ParentID)
	if err != nil {
		if db.IsNotFound(err) {
			return apperr.ProductParentErr.WrapParent(err)
		}
		return fmt.Errorf("product repository get product: %w", err)
	}
	if !parent.HasVariants() {
		return apperr.ProductParentErr
	}

	return nil
}

func (s *catalogManageService) saveProduct(ctx context.Context, product model.Product, create bool) (model.Product, error) {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		if err := checkProductParent(ctx, productRepo, product); err != nil {
			return err
		}

		action := actionUpdated
		if create {
			action = actionCreated
			if err := productRepo.CreateProduct(ctx, product); err != nil {
				return conflict(fmt.Errorf("product repository create product: %w", err), apperr.ProductSlugTakenErr)
			}
		} else if err := productRepo.UpdateProduct(ctx, product); err != nil {
			return conflict(notFound(fmt.Errorf("product repository update product: %w", err), apperr.ProductNotFoundErr), apperr.ProductSlugTakenErr)
		}

		if err := productRepo.SetProductCategories(ctx, product.ID, product.CategoryIDs); err != nil {
			return foreignKey(fmt.Errorf("product repository set product categories: %w", err), apperr.CategoryNotFoundErr)
		}

		saved, err := productRepo.GetProduct(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("product repository get product: %w", err)
		}
		product = saved

		return s.catalogChanged(ctx, db, event.CatalogEntityProduct, product.ID, action)
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *catalogManageService) CreateProduct(ctx context.Context, params ProductParams) (model.Product, error) {
	id, err := newID()
	if err != nil {
		return model.Product{}, err
	}

	now := s.now()
	product := model.Product{ID: id, CreatedAt: now, UpdatedAt: now}
	applyProductParams(&product, params)

	return s.saveProduct(ctx, product, true)
}

func (s *catalogManageService) UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	applyProductParams(&product, params)
	product.UpdatedAt = s.now()

	return s.saveProduct(ctx, product, false)
}

func (s *catalogManageService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.WithDB(db).DeleteProduct(ctx, id); err != nil {
			return notFound(fmt.Errorf("product repository delete product: %w", err), apperr.ProductNotFoundErr)
		}

		return s.catalogChanged(ctx, db, event.CatalogEntityProduct, id, actionDeleted)
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *catalogManageService) ListTaxes(ctx context.Context) ([]model.Tax, error) {
	taxes, err := s.taxRepo.ListTaxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("tax repository list taxes: %w", err)
	}

	return taxes, nil
}

func (s *catalogManageService) GetTax(ctx context.Context, id uuid.UUID) (model.Tax, error) {
	tax, err := s.taxRepo.GetTax(ctx, id)
	if err != nil {
		return model.Tax{}, notFound(fmt.Errorf("tax repository get tax: %w", err), apperr.TaxNotFoundErr)
	}

	return tax, nil
}

func (s *catalogManageService) CreateTax(ctx context.Context, params TaxParams) (model.Tax, error) {
	id, err := newID()
	if err != nil {
		return model.Tax{}, err
	}

	now := s.now()
	tax := model.Tax{ID: id, Name: params.Name, Rate: params.Rate, CreatedAt: now, UpdatedAt: now}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.taxRepo.WithDB(db).CreateTax(ctx, tax); err != nil {
			return fmt.Errorf("tax repository create tax: %w", err)
		}

		return s.catalogChanged(ctx, db, event.CatalogEntityTax, tax.ID, actionCreated)
	}); err != nil {
		return model.Tax{}, fmt.Errorf("db with tx: %w", err)
	}

	return tax, nil
}

func (s *catalogManageService) UpdateTax(ctx context.Context, id uuid.UUID, params TaxParams) (model.Tax, error) {
	tax, err := s.GetTax(ctx, id)
	if err != nil {
		return model.Tax{}, err
	}

	tax.Name = params.Name
	tax.Rate = params.Rate
	tax.UpdatedAt = s.now()

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.taxRepo.WithDB(db).UpdateTax(ctx, tax); err != nil {
			return notFound(fmt.Errorf("tax repository update tax: %w", err), apperr.TaxNotFoundErr)
		}

		return s.catalogChanged(ctx, db, event.CatalogEntityTax, tax.ID, actionUpdated)
	}); err != nil {
		return model.Tax{}, fmt.Errorf("db with tx: %w", err)
	}

	return tax, nil
}

func (s *catalogManageService) DeleteTax(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.taxRepo.WithDB(db).DeleteTax(ctx, id); err != nil {
			return notFound(fmt.Errorf("tax repository delete tax: %w", err), apperr.TaxNotFoundErr)
		}

		return s.catalogChanged(ctx, db, event.CatalogEntityTax, id, actionDeleted)
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}
