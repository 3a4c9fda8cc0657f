package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/catalog"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/cache"
)

const (
	PortletCategories = "categories"
	PortletTopseller  = "topseller"
	PortletLatest     = "latest"
	PortletForSale    = "forsale"
	PortletCart       = "cart"
)

const defaultPortletLimit = 5

type PortletParams struct {
	// CurrentSlug is the category the visitor is looking at.
	CurrentSlug string
	CartID      *uuid.UUID
	Limit       int
}

type CategoriesPortlet struct {
	Categories []catalog.Node `json:"categories"`
}

type ProductsPortlet struct {
	Products []model.Product `json:"products"`
}

type CartPortlet struct {
	ItemAmount int             `json:"item_amount"`
	Price      decimal.Decimal `json:"price"`
}

type PortletService interface {
	Portlet(ctx context.Context, name string, params PortletParams) (any, error)
}

type portletService struct {
	logger       *slog.Logger
	cache        cache.Cache
	catalogSvc   CatalogService
	marketingSvc MarketingService
	cartSvc      CartService
}

func NewPortletService(
	logger *slog.Logger,
	cache cache.Cache,
	catalogSvc CatalogService,
	marketingSvc MarketingService,
	cartSvc CartService,
) PortletService {
	return &portletService{
		logger:       logger.With(slog.String("service", "portlet")),
		cache:        cache,
		catalogSvc:   catalogSvc,
		marketingSvc: marketingSvc,
		cartSvc:      cartSvc,
	}
}

func (s *portletService) Portlet(ctx context.Context, name string, params PortletParams) (any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPortletLimit
	}

	switch name {
	case PortletCategories:
		key := fmt.Sprintf("%scategories:%s", cache.PrefixPortlet, params.CurrentSlug)
		return cached(ctx, s.logger, s.cache, key, func() (CategoriesPortlet, error) {
			nodes, err := s.catalogSvc.CategoryTree(ctx, CategoryTreeParams{CurrentSlug: params.CurrentSlug, StartLevel: 1})
			if err != nil {
				return CategoriesPortlet{}, err
			}
			return CategoriesPortlet{Categories: nodes}, nil
		})

	case PortletTopseller:
		var (
			products []model.Product
			err      error
		)
		if params.CurrentSlug != "" {
			products, err = s.marketingSvc.TopsellerForCategory(ctx, params.CurrentSlug, limit)
		} else {
			products, err = s.marketingSvc.Topseller(ctx, limit)
		}
		if err != nil {
			return nil, err
		}
		return ProductsPortlet{Products: products}, nil

	case PortletLatest:
		key := fmt.Sprintf("%slatest:%d", cache.PrefixPortlet, limit)
		return cached(ctx, s.logger, s.cache, key, func() (ProductsPortlet, error) {
			products, err := s.catalogSvc.LatestProducts(ctx, int32(limit))
			return ProductsPortlet{Products: products}, err
		})

	case PortletForSale:
		key := fmt.Sprintf("%sforsale:%d", cache.PrefixPortlet, limit)
		return cached(ctx, s.logger, s.cache, key, func() (ProductsPortlet, error) {
			products, err := s.catalogSvc.ForSaleProducts(ctx, int32(limit))
			return ProductsPortlet{Products: products}, err
		})

	case PortletCart:
		if params.CartID == nil {
			return CartPortlet{Price: decimal.Zero}, nil
		}
		cart, err := s.cartSvc.GetCart(ctx, *params.CartID)
		if err != nil {
			return nil, err
		}
		return CartPortlet{ItemAmount: cart.ItemAmount, Price: cart.Evaluation.Price}, nil

	default:
		return nil, apperr.PortletNotFoundErr
	}
}
