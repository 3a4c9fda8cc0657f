package http

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tuanvumaihuynh/lfs/internal/catalog"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/service"
)

// The mocks embed their service interface so tests only implement the
// methods they exercise.

func get[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type mockHealthChecker struct{ mock.Mock }

func (m *mockHealthChecker) IsHealthy(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type mockAuthService struct {
	service.AuthService
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (service.Token, error) {
	args := m.Called(ctx, email, password)
	return get[service.Token](args, 0), args.Error(1)
}

func (m *mockAuthService) ParseToken(token string) (service.Claims, error) {
	args := m.Called(token)
	return get[service.Claims](args, 0), args.Error(1)
}

type mockCatalogService struct {
	service.CatalogService
	mock.Mock
}

func (m *mockCatalogService) CategoryTree(ctx context.Context, params service.CategoryTreeParams) ([]catalog.Node, error) {
	args := m.Called(ctx, params)
	return get[[]catalog.Node](args, 0), args.Error(1)
}

func (m *mockCatalogService) ListCategoryProducts(ctx context.Context, slug string, params service.ListProductsParams) (service.ProductPage, error) {
	args := m.Called(ctx, slug, params)
	return get[service.ProductPage](args, 0), args.Error(1)
}

func (m *mockCatalogService) GetProduct(ctx context.Context, slug string) (service.ProductDetail, error) {
	args := m.Called(ctx, slug)
	return get[service.ProductDetail](args, 0), args.Error(1)
}

type mockCartService struct {
	service.CartService
	mock.Mock
}

func (m *mockCartService) GetCart(ctx context.Context, id uuid.UUID) (service.CartView, error) {
	args := m.Called(ctx, id)
	return get[service.CartView](args, 0), args.Error(1)
}

func (m *mockCartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, amount int) (service.CartView, error) {
	args := m.Called(ctx, cartID, productID, amount)
	return get[service.CartView](args, 0), args.Error(1)
}

type mockCheckoutService struct {
	service.CheckoutService
	mock.Mock
}

func (m *mockCheckoutService) AddOrder(ctx context.Context, params service.AddOrderParams) (model.Order, error) {
	args := m.Called(ctx, params)
	return get[model.Order](args, 0), args.Error(1)
}

type mockOrderService struct {
	service.OrderService
	mock.Mock
}

func (m *mockOrderService) ListOrders(ctx context.Context, params service.ListOrdersParams) (service.OrderPage, error) {
	args := m.Called(ctx, params)
	return get[service.OrderPage](args, 0), args.Error(1)
}

func (m *mockOrderService) SetOrderState(ctx context.Context, id uuid.UUID, state model.OrderState) (model.Order, error) {
	args := m.Called(ctx, id, state)
	return get[model.Order](args, 0), args.Error(1)
}

type mockMarketingService struct {
	service.MarketingService
	mock.Mock
}

func (m *mockMarketingService) Topseller(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	return get[[]model.Product](args, 0), args.Error(1)
}

func (m *mockMarketingService) UpdateTopsellerPositions(ctx context.Context, positions map[uuid.UUID]int) error {
	args := m.Called(ctx, positions)
	return args.Error(0)
}

type mockExportService struct {
	service.ExportService
	mock.Mock
}

func (m *mockExportService) GetExport(ctx context.Context, id uuid.UUID) (model.Export, error) {
	args := m.Called(ctx, id)
	return get[model.Export](args, 0), args.Error(1)
}

func (m *mockExportService) RunExport(ctx context.Context, slug string, w io.Writer) (service.ExportResult, error) {
	args := m.Called(ctx, slug, w)
	return get[service.ExportResult](args, 0), args.Error(1)
}

type mockPayPalService struct {
	service.PayPalService
	mock.Mock
}

func (m *mockPayPalService) HandleIPN(ctx context.Context, body []byte) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}
