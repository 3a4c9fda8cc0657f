// Package app wires repositories and services for the lfs binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/mail"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/internal/storage/blob"
	"github.com/tuanvumaihuynh/lfs/internal/storage/cache"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

const payPalTimeout = 30 * time.Second

// Config is the configuration shared by every process that runs services.
type Config struct {
	Shop      config.Shop
	PayPal    config.PayPal
	Auth      config.Auth
	Marketing config.Marketing
	Mail      config.Mail
	Redis     config.Redis
	S3        config.S3
}

type Repositories struct {
	Cart      repository.CartRepository
	Category  repository.CategoryRepository
	Criterion repository.CriterionRepository
	Customer  repository.CustomerRepository
	Discount  repository.DiscountRepository
	Export    repository.ExportRepository
	Marketing repository.MarketingRepository
	Method    repository.MethodRepository
	Order     repository.OrderRepository
	OutboxMsg repository.OutboxMsgRepository
	PayPal    repository.PayPalRepository
	Product   repository.ProductRepository
	Tax       repository.TaxRepository
	Voucher   repository.VoucherRepository
}

func NewRepositories(dbClient db.DB) Repositories {
	return Repositories{
		Cart:      repository.NewCartRepository(dbClient),
		Category:  repository.NewCategoryRepository(dbClient),
		Criterion: repository.NewCriterionRepository(dbClient),
		Customer:  repository.NewCustomerRepository(dbClient),
		Discount:  repository.NewDiscountRepository(dbClient),
		Export:    repository.NewExportRepository(dbClient),
		Marketing: repository.NewMarketingRepository(dbClient),
		Method:    repository.NewMethodRepository(dbClient),
		Order:     repository.NewOrderRepository(dbClient),
		OutboxMsg: repository.NewOutboxMsgRepository(dbClient),
		PayPal:    repository.NewPayPalRepository(dbClient),
		Product:   repository.NewProductRepository(dbClient),
		Tax:       repository.NewTaxRepository(dbClient),
		Voucher:   repository.NewVoucherRepository(dbClient),
	}
}

// Infra holds the shared clients behind the services.
type Infra struct {
	Cache    cache.Cache
	Store    blob.Store
	Sender   mail.Sender
	Renderer *mail.Renderer

	closers []func() error
}

// NewInfra connects to redis when configured and picks S3 or the local
// directory as blob store.
func NewInfra(ctx context.Context, cfg Config, logger *slog.Logger) (*Infra, error) {
	infra := &Infra{
		Sender: mail.NewSender(cfg.Mail, logger),
	}

	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("new redis cache: %w", err)
		}
		infra.Cache = redisCache
		infra.closers = append(infra.closers, redisCache.Close)
	} else {
		logger.WarnContext(ctx, "redis not configured, using in-memory cache")
		infra.Cache = cache.NewMemoryCache(cfg.Redis.TTL)
	}

	if cfg.S3.Bucket != "" {
		store, err := blob.NewS3Store(ctx, cfg.S3)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("new s3 store: %w", err)
		}
		infra.Store = store
	} else {
		infra.Store = blob.NewLocalStore(cfg.S3.LocalDir)
	}

	renderer, err := mail.NewRenderer(cfg.Shop)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("new mail renderer: %w", err)
	}
	infra.Renderer = renderer

	return infra, nil
}

func (i *Infra) Close() {
	for _, c := range i.closers {
		_ = c()
	}
}

type Services struct {
	Auth          service.AuthService
	Catalog       service.CatalogService
	CatalogManage service.CatalogManageService
	Cart          service.CartService
	Checkout      service.CheckoutService
	Order         service.OrderService
	Customer      service.CustomerService
	Method        service.MethodService
	Discount      service.DiscountService
	Voucher       service.VoucherService
	Marketing     service.MarketingService
	Export        service.ExportService
	Portlet       service.PortletService
	PayPal        service.PayPalService
}

func NewServices(
	cfg Config,
	logger *slog.Logger,
	dbClient db.DB,
	metrics *metric.Metrics,
	infra *Infra,
	repos Repositories,
) Services {
	now := time.Now

	catalogSvc := service.NewCatalogService(logger, infra.Cache, repos.Category, repos.Product)
	cartSvc := service.NewCartService(dbClient, logger, now, cfg.Shop, repos.Cart, repos.Product, repos.Method, repos.Discount)
	marketingSvc := service.NewMarketingService(dbClient, logger, now, cfg.Marketing, cfg.Shop, service.MarketingDeps{
		Cache:         infra.Cache,
		CatalogSvc:    catalogSvc,
		Renderer:      infra.Renderer,
		Sender:        infra.Sender,
		MarketingRepo: repos.Marketing,
		ProductRepo:   repos.Product,
		OrderRepo:     repos.Order,
		OutboxMsgRepo: repos.OutboxMsg,
	})

	return Services{
		Auth:          service.NewAuthService(logger, now, cfg.Auth, repos.Customer),
		Catalog:       catalogSvc,
		CatalogManage: service.NewCatalogManageService(dbClient, logger, now, repos.Category, repos.Product, repos.Tax, repos.OutboxMsg),
		Cart:          cartSvc,
		Checkout: service.NewCheckoutService(dbClient, logger, now, cfg.Shop, cfg.PayPal, metrics, service.CheckoutRepositories{
			Cart:      repos.Cart,
			Product:   repos.Product,
			Method:    repos.Method,
			Discount:  repos.Discount,
			Voucher:   repos.Voucher,
			Customer:  repos.Customer,
			Order:     repos.Order,
			OutboxMsg: repos.OutboxMsg,
		}),
		Order:     service.NewOrderService(dbClient, logger, now, metrics, repos.Order, repos.OutboxMsg),
		Customer:  service.NewCustomerService(logger, repos.Customer, repos.Order),
		Method:    service.NewMethodService(dbClient, logger, now, repos.Method, repos.Criterion),
		Discount:  service.NewDiscountService(dbClient, logger, now, repos.Discount, repos.Criterion),
		Voucher:   service.NewVoucherService(dbClient, logger, now, repos.Voucher),
		Marketing: marketingSvc,
		Export:    service.NewExportService(dbClient, logger, now, cfg.Shop, infra.Store, catalogSvc, repos.Export, repos.Product),
		Portlet:   service.NewPortletService(logger, infra.Cache, catalogSvc, marketingSvc, cartSvc),
		PayPal: service.NewPayPalService(dbClient, logger, now, cfg.PayPal, &http.Client{Timeout: payPalTimeout},
			metrics, repos.Order, repos.PayPal, repos.OutboxMsg),
	}
}
