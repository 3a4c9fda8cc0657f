package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/event"
	"github.com/tuanvumaihuynh/lfs/internal/mail"
	"github.com/tuanvumaihuynh/lfs/internal/marketing"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/cache"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type AddTopsellersParams struct {
	ProductIDs []uuid.UUID
	// Position of the first product; the others follow.
	Position int
}

type SendRatingMailsParams struct {
	// Test sends all mails to the shop notification addresses and records nothing.
	Test bool
	Bcc  []string
}

type MarketingService interface {
	CalculateProductSales(ctx context.Context) (int, error)
	Topseller(ctx context.Context, limit int) ([]model.Product, error)
	TopsellerForCategory(ctx context.Context, slug string, limit int) ([]model.Product, error)

	ListTopsellers(ctx context.Context) ([]model.Topseller, error)
	AddTopsellers(ctx context.Context, params AddTopsellersParams) ([]model.Topseller, error)
	UpdateTopsellerPositions(ctx context.Context, positions map[uuid.UUID]int) error
	DeleteTopseller(ctx context.Context, id uuid.UUID) error

	SendRatingMails(ctx context.Context, params SendRatingMailsParams) (int, error)
}

type marketingService struct {
	db            db.DB
	logger        *slog.Logger
	now           Clock
	cfg           config.Marketing
	shopCfg       config.Shop
	cache         cache.Cache
	catalogSvc    CatalogService
	renderer      *mail.Renderer
	sender        mail.Sender
	marketingRepo repository.MarketingRepository
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

type MarketingDeps struct {
	Cache         cache.Cache
	CatalogSvc    CatalogService
	Renderer      *mail.Renderer
	Sender        mail.Sender
	MarketingRepo repository.MarketingRepository
	ProductRepo   repository.ProductRepository
	OrderRepo     repository.OrderRepository
	OutboxMsgRepo repository.OutboxMsgRepository
}

func NewMarketingService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	cfg config.Marketing,
	shopCfg config.Shop,
	deps MarketingDeps,
) MarketingService {
	return &marketingService{
		db:            db,
		logger:        logger.With(slog.String("service", "marketing")),
		now:           now,
		cfg:           cfg,
		shopCfg:       shopCfg,
		cache:         deps.Cache,
		catalogSvc:    deps.CatalogSvc,
		renderer:      deps.Renderer,
		sender:        deps.Sender,
		marketingRepo: deps.MarketingRepo,
		productRepo:   deps.ProductRepo,
		orderRepo:     deps.OrderRepo,
		outboxMsgRepo: deps.OutboxMsgRepo,
	}
}

func (s *marketingService) marketingChanged(ctx context.Context, conn db.DB, entity event.CatalogEntity, action string) error {
	key := string(entity)
	return writeOutboxMsg(ctx, s.outboxMsgRepo.WithDB(conn), event.TopicCatalogChanged, &key, event.CatalogChangedEvent{
		Entity: entity,
		Action: action,
	})
}

// CalculateProductSales rebuilds the sales table from all order items.
func (s *marketingService) CalculateProductSales(ctx context.Context) (int, error) {
	var n int

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		items, err := s.orderRepo.WithDB(db).ListSoldItems(ctx)
		if err != nil {
			return fmt.Errorf("order repository list sold items: %w", err)
		}

		sales := marketing.CalculateSales(items)
		if err := s.marketingRepo.WithDB(db).ReplaceProductSales(ctx, sales); err != nil {
			return fmt.Errorf("marketing repository replace product sales: %w", err)
		}
		n = len(sales)

		return s.marketingChanged(ctx, db, event.CatalogEntitySales, actionUpdated)
	}); err != nil {
		return 0, fmt.Errorf("db with tx: %w", err)
	}

	s.logger.InfoContext(ctx, "product sales calculated", slog.Int("products", n))
	return n, nil
}

func (s *marketingService) limit(limit int) int {
	if limit <= 0 {
		return s.cfg.TopsellerLimit
	}
	return limit
}

// productsInOrder loads the products and returns them in the order of ids.
func productsInOrder(ctx context.Context, repo repository.ProductRepository, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	products, err := repo.ListProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("product repository list products by ids: %w", err)
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ordered := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// cached returns the cached value under key or computes and stores it.
// Cache failures only cost the lookup.
func cached[T any](ctx context.Context, logger *slog.Logger, c cache.Cache, key string, load func() (T, error)) (T, error) {
	var v T
	found, err := c.Get(ctx, key, &v)
	if err != nil {
		logger.WarnContext(ctx, "error reading cache", slog.String("key", key), slog.Any("error", err))
	}
	if found {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}

	if err := c.Set(ctx, key, v); err != nil {
		logger.WarnContext(ctx, "error writing cache", slog.String("key", key), slog.Any("error", err))
	}

	return v, nil
}

func (s *marketingService) Topseller(ctx context.Context, limit int) ([]model.Product, error) {
	limit = s.limit(limit)
	key := fmt.Sprintf("%sall:%d", cache.PrefixTopseller, limit)

	return cached(ctx, s.logger, s.cache, key, func() ([]model.Product, error) {
		pinned, err := s.marketingRepo.ListTopsellers(ctx, repository.ListTopsellersParams{
			ActiveOnly: true,
			Limit:      int32(limit),
		})
		if err != nil {
			return nil, fmt.Errorf("marketing repository list topsellers: %w", err)
		}

		ids := make([]uuid.UUID, 0, len(pinned))
		for _, ts := range pinned {
			ids = append(ids, ts.ProductID)
		}

		return productsInOrder(ctx, s.productRepo, ids)
	})
}

func (s *marketingService) TopsellerForCategory(ctx context.Context, slug string, limit int) ([]model.Product, error) {
	limit = s.limit(limit)

	category, err := s.catalogSvc.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%scategory:%s:%d", cache.PrefixTopseller, category.ID, limit)

	return cached(ctx, s.logger, s.cache, key, func() ([]model.Product, error) {
		tree, err := s.catalogSvc.Tree(ctx)
		if err != nil {
			return nil, err
		}
		scope := tree.Scope(category.ID)

		bySales, err := s.marketingRepo.ListTopProductIDsBySales(ctx, scope, int32(limit))
		if err != nil {
			return nil, fmt.Errorf("marketing repository list top product ids by sales: %w", err)
		}

		pinned, err := s.marketingRepo.ListTopsellers(ctx, repository.ListTopsellersParams{
			CategoryIDs: scope,
			ActiveOnly:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("marketing repository list topsellers: %w", err)
		}

		return productsInOrder(ctx, s.productRepo, marketing.MergeTopsellers(bySales, pinned, limit))
	})
}

func (s *marketingService) ListTopsellers(ctx context.Context) ([]model.Topseller, error) {
	topsellers, err := s.marketingRepo.ListTopsellers(ctx, repository.ListTopsellersParams{})
	if err != nil {
		return nil, fmt.Errorf("marketing repository list topsellers: %w", err)
	}

	return topsellers, nil
}

func (s *marketingService) AddTopsellers(ctx context.Context, params AddTopsellersParams) ([]model.Topseller, error) {
	topsellers := make([]model.Topseller, 0, len(params.ProductIDs))
	for i, productID := range params.ProductIDs {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		topsellers = append(topsellers, model.Topseller{
			ID:        id,
			ProductID: productID,
			Position:  params.Position + i,
		})
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.marketingRepo.WithDB(db).CreateTopsellers(ctx, topsellers); err != nil {
			return foreignKey(fmt.Errorf("marketing repository create topsellers: %w", err), apperr.ProductNotFoundErr)
		}

		return s.marketingChanged(ctx, db, event.CatalogEntityTopseller, actionCreated)
	}); err != nil {
		return nil, fmt.Errorf("db with tx: %w", err)
	}

	return s.ListTopsellers(ctx)
}

func (s *marketingService) UpdateTopsellerPositions(ctx context.Context, positions map[uuid.UUID]int) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.marketingRepo.WithDB(db)
		for id, position := range positions {
			if err := repo.UpdateTopsellerPosition(ctx, id, position); err != nil {
				return notFound(fmt.Errorf("marketing repository update topseller position: %w", err), apperr.TopsellerNotFoundErr)
			}
		}

		return s.marketingChanged(ctx, db, event.CatalogEntityTopseller, actionUpdated)
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *marketingService) DeleteTopseller(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.marketingRepo.WithDB(db).DeleteTopseller(ctx, id); err != nil {
			return notFound(fmt.Errorf("marketing repository delete topseller: %w", err), apperr.TopsellerNotFoundErr)
		}

		return s.marketingChanged(ctx, db, event.CatalogEntityTopseller, actionDeleted)
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

// SendRatingMails asks customers of orders closed long enough ago to rate
// the products they bought. It returns the number of mails sent.
func (s *marketingService) SendRatingMails(ctx context.Context, params SendRatingMailsParams) (int, error) {
	closedBefore := s.now().Add(-time.Duration(s.cfg.RatingMailDays) * 24 * time.Hour)

	orders, err := s.orderRepo.ListRatingMailCandidates(ctx, closedBefore)
	if err != nil {
		return 0, fmt.Errorf("order repository list rating mail candidates: %w", err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	if params.Test && len(s.shopCfg.NotificationEmails) == 0 {
		return 0, apperr.ValidationErr.WrapParent(fmt.Errorf("no shop notification emails configured"))
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	items, err := s.orderRepo.ListOrderItems(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("order repository list order items: %w", err)
	}

	sent := 0
	for _, order := range orders {
		order.Items = items[order.ID]

		products, err := ratedProducts(ctx, s.productRepo, order.Items)
		if err != nil {
			return sent, err
		}
		if len(products) == 0 {
			continue
		}

		to := []string{order.CustomerEmail}
		if params.Test {
			to = s.shopCfg.NotificationEmails
		}

		msg, err := s.renderer.Render(mail.KindRating, to, mail.Data{Order: order, Products: products})
		if err != nil {
			return sent, fmt.Errorf("render rating mail: %w", err)
		}
		msg.Bcc = params.Bcc

		if err := s.sender.Send(ctx, msg); err != nil {
			return sent, fmt.Errorf("send rating mail: %w", err)
		}
		sent++

		if params.Test {
			continue
		}

		id, err := newID()
		if err != nil {
			return sent, err
		}
		if err := s.marketingRepo.CreateRatingMail(ctx, model.OrderRatingMail{
			ID:       id,
			OrderID:  order.ID,
			SendDate: s.now(),
		}); err != nil {
			return sent, fmt.Errorf("marketing repository create rating mail: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "rating mails sent", slog.Int("sent", sent), slog.Bool("test", params.Test))
	return sent, nil
}

// ratedProducts returns the distinct products of the order items with
// variants replaced by their parent.
func ratedProducts(ctx context.Context, repo repository.ProductRepository, items []model.OrderItem) ([]model.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}

	products, err := productsInOrder(ctx, repo, ids)
	if err != nil {
		return nil, err
	}

	rated := make([]uuid.UUID, 0, len(products))
	seen := make(map[uuid.UUID]struct{}, len(products))
	for _, p := range products {
		id := p.ID
		if p.IsVariant() && p.ParentID != nil {
			id = *p.ParentID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rated = append(rated, id)
	}

	return productsInOrder(ctx, repo, rated)
}
