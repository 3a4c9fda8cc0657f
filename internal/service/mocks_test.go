package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tuanvumaihuynh/lfs/internal/marketing"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

// fakeDB runs transactions inline so repository mocks see every call.
type fakeDB struct{}

var _ db.DB = fakeDB{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (f fakeDB) WithTx(_ context.Context, fn func(db.DB) error) error { return fn(f) }

func get[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type mockCartRepository struct{ mock.Mock }

var _ repository.CartRepository = (*mockCartRepository)(nil)

func (m *mockCartRepository) WithDB(db.DB) repository.CartRepository { return m }

func (m *mockCartRepository) GetCart(ctx context.Context, id uuid.UUID) (model.Cart, error) {
	args := m.Called(ctx, id)
	return get[model.Cart](args, 0), args.Error(1)
}

func (m *mockCartRepository) CreateCart(ctx context.Context, cart model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) UpdateCart(ctx context.Context, cart model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) DeleteCart(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCartRepository) AddCartItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	return get[model.CartItem](args, 0), args.Error(1)
}

func (m *mockCartRepository) SetCartItemAmount(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, amount int) error {
	args := m.Called(ctx, cartID, productID, amount)
	return args.Error(0)
}

func (m *mockCartRepository) DeleteCartItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

func (m *mockCartRepository) DeleteStaleCarts(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return get[int64](args, 0), args.Error(1)
}

type mockCategoryRepository struct{ mock.Mock }

var _ repository.CategoryRepository = (*mockCategoryRepository)(nil)

func (m *mockCategoryRepository) WithDB(db.DB) repository.CategoryRepository { return m }

func (m *mockCategoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return get[[]model.Category](args, 0), args.Error(1)
}

func (m *mockCategoryRepository) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	args := m.Called(ctx, id)
	return get[model.Category](args, 0), args.Error(1)
}

func (m *mockCategoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	args := m.Called(ctx, slug)
	return get[model.Category](args, 0), args.Error(1)
}

func (m *mockCategoryRepository) CreateCategory(ctx context.Context, category model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) UpdateCategory(ctx context.Context, category model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCriterionRepository struct{ mock.Mock }

var _ repository.CriterionRepository = (*mockCriterionRepository)(nil)

func (m *mockCriterionRepository) WithDB(db.DB) repository.CriterionRepository { return m }

func (m *mockCriterionRepository) ListCriteria(ctx context.Context, ownerType model.CriterionOwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID][]model.Criterion, error) {
	args := m.Called(ctx, ownerType, ownerIDs)
	return get[map[uuid.UUID][]model.Criterion](args, 0), args.Error(1)
}

func (m *mockCriterionRepository) ReplaceCriteria(ctx context.Context, ownerType model.CriterionOwnerType, ownerID uuid.UUID, criteria []model.Criterion) error {
	args := m.Called(ctx, ownerType, ownerID, criteria)
	return args.Error(0)
}

type mockCustomerRepository struct{ mock.Mock }

var _ repository.CustomerRepository = (*mockCustomerRepository)(nil)

func (m *mockCustomerRepository) WithDB(db.DB) repository.CustomerRepository { return m }

func (m *mockCustomerRepository) ListCustomers(ctx context.Context, params repository.ListCustomersParams) ([]model.Customer, int64, error) {
	args := m.Called(ctx, params)
	return get[[]model.Customer](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *mockCustomerRepository) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	args := m.Called(ctx, id)
	return get[model.Customer](args, 0), args.Error(1)
}

func (m *mockCustomerRepository) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	args := m.Called(ctx, email)
	return get[model.Customer](args, 0), args.Error(1)
}

func (m *mockCustomerRepository) CreateCustomer(ctx context.Context, customer model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepository) UpdateCustomer(ctx context.Context, customer model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepository) GetAdminUserByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	args := m.Called(ctx, email)
	return get[model.AdminUser](args, 0), args.Error(1)
}

func (m *mockCustomerRepository) CreateAdminUser(ctx context.Context, user model.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockDiscountRepository struct{ mock.Mock }

var _ repository.DiscountRepository = (*mockDiscountRepository)(nil)

func (m *mockDiscountRepository) WithDB(db.DB) repository.DiscountRepository { return m }

func (m *mockDiscountRepository) ListDiscounts(ctx context.Context, activeOnly bool) ([]model.Discount, error) {
	args := m.Called(ctx, activeOnly)
	return get[[]model.Discount](args, 0), args.Error(1)
}

func (m *mockDiscountRepository) GetDiscount(ctx context.Context, id uuid.UUID) (model.Discount, error) {
	args := m.Called(ctx, id)
	return get[model.Discount](args, 0), args.Error(1)
}

func (m *mockDiscountRepository) CreateDiscount(ctx context.Context, discount model.Discount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

func (m *mockDiscountRepository) UpdateDiscount(ctx context.Context, discount model.Discount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

func (m *mockDiscountRepository) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDiscountRepository) SetDiscountProducts(ctx context.Context, discountID uuid.UUID, productIDs []uuid.UUID) error {
	args := m.Called(ctx, discountID, productIDs)
	return args.Error(0)
}

type mockExportRepository struct{ mock.Mock }

var _ repository.ExportRepository = (*mockExportRepository)(nil)

func (m *mockExportRepository) WithDB(db.DB) repository.ExportRepository { return m }

func (m *mockExportRepository) ListExports(ctx context.Context) ([]model.Export, error) {
	args := m.Called(ctx)
	return get[[]model.Export](args, 0), args.Error(1)
}

func (m *mockExportRepository) GetExport(ctx context.Context, id uuid.UUID) (model.Export, error) {
	args := m.Called(ctx, id)
	return get[model.Export](args, 0), args.Error(1)
}

func (m *mockExportRepository) GetExportBySlug(ctx context.Context, slug string) (model.Export, error) {
	args := m.Called(ctx, slug)
	return get[model.Export](args, 0), args.Error(1)
}

func (m *mockExportRepository) CreateExport(ctx context.Context, export model.Export) error {
	args := m.Called(ctx, export)
	return args.Error(0)
}

func (m *mockExportRepository) UpdateExport(ctx context.Context, export model.Export) error {
	args := m.Called(ctx, export)
	return args.Error(0)
}

func (m *mockExportRepository) DeleteExport(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockExportRepository) SetExportProducts(ctx context.Context, exportID uuid.UUID, productIDs []uuid.UUID) error {
	args := m.Called(ctx, exportID, productIDs)
	return args.Error(0)
}

type mockMarketingRepository struct{ mock.Mock }

var _ repository.MarketingRepository = (*mockMarketingRepository)(nil)

func (m *mockMarketingRepository) WithDB(db.DB) repository.MarketingRepository { return m }

func (m *mockMarketingRepository) ListTopsellers(ctx context.Context, params repository.ListTopsellersParams) ([]model.Topseller, error) {
	args := m.Called(ctx, params)
	return get[[]model.Topseller](args, 0), args.Error(1)
}

func (m *mockMarketingRepository) CreateTopsellers(ctx context.Context, topsellers []model.Topseller) error {
	args := m.Called(ctx, topsellers)
	return args.Error(0)
}

func (m *mockMarketingRepository) UpdateTopsellerPosition(ctx context.Context, id uuid.UUID, position int) error {
	args := m.Called(ctx, id, position)
	return args.Error(0)
}

func (m *mockMarketingRepository) DeleteTopseller(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMarketingRepository) ReplaceProductSales(ctx context.Context, sales []model.ProductSales) error {
	args := m.Called(ctx, sales)
	return args.Error(0)
}

func (m *mockMarketingRepository) ListTopProductIDsBySales(ctx context.Context, categoryIDs []uuid.UUID, limit int32) ([]uuid.UUID, error) {
	args := m.Called(ctx, categoryIDs, limit)
	return get[[]uuid.UUID](args, 0), args.Error(1)
}

func (m *mockMarketingRepository) CreateRatingMail(ctx context.Context, mail model.OrderRatingMail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

type mockMethodRepository struct{ mock.Mock }

var _ repository.MethodRepository = (*mockMethodRepository)(nil)

func (m *mockMethodRepository) WithDB(db.DB) repository.MethodRepository { return m }

func (m *mockMethodRepository) ListShippingMethods(ctx context.Context) ([]model.ShippingMethod, error) {
	args := m.Called(ctx)
	return get[[]model.ShippingMethod](args, 0), args.Error(1)
}

func (m *mockMethodRepository) GetShippingMethod(ctx context.Context, id uuid.UUID) (model.ShippingMethod, error) {
	args := m.Called(ctx, id)
	return get[model.ShippingMethod](args, 0), args.Error(1)
}

func (m *mockMethodRepository) CreateShippingMethod(ctx context.Context, method model.ShippingMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *mockMethodRepository) UpdateShippingMethod(ctx context.Context, method model.ShippingMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *mockMethodRepository) DeleteShippingMethod(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMethodRepository) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	args := m.Called(ctx)
	return get[[]model.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockMethodRepository) GetPaymentMethod(ctx context.Context, id uuid.UUID) (model.PaymentMethod, error) {
	args := m.Called(ctx, id)
	return get[model.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockMethodRepository) CreatePaymentMethod(ctx context.Context, method model.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *mockMethodRepository) UpdatePaymentMethod(ctx context.Context, method model.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *mockMethodRepository) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMethodRepository) GetMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) (model.MethodPrice, error) {
	args := m.Called(ctx, kind, id)
	return get[model.MethodPrice](args, 0), args.Error(1)
}

func (m *mockMethodRepository) CreateMethodPrice(ctx context.Context, kind model.MethodKind, price model.MethodPrice) error {
	args := m.Called(ctx, kind, price)
	return args.Error(0)
}

func (m *mockMethodRepository) UpdateMethodPrice(ctx context.Context, kind model.MethodKind, price model.MethodPrice) error {
	args := m.Called(ctx, kind, price)
	return args.Error(0)
}

func (m *mockMethodRepository) DeleteMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

type mockOrderRepository struct{ mock.Mock }

var _ repository.OrderRepository = (*mockOrderRepository)(nil)

func (m *mockOrderRepository) WithDB(db.DB) repository.OrderRepository { return m }

func (m *mockOrderRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return get[int64](args, 0), args.Error(1)
}

func (m *mockOrderRepository) CreateOrder(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	args := m.Called(ctx, id)
	return get[model.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) ListOrders(ctx context.Context, params repository.ListOrdersParams) ([]model.Order, int64, error) {
	args := m.Called(ctx, params)
	return get[[]model.Order](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *mockOrderRepository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, customerID)
	return get[[]model.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) ListOrderItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	return get[map[uuid.UUID][]model.OrderItem](args, 0), args.Error(1)
}

func (m *mockOrderRepository) UpdateOrderState(ctx context.Context, id uuid.UUID, state model.OrderState, modified time.Time) error {
	args := m.Called(ctx, id, state, modified)
	return args.Error(0)
}

func (m *mockOrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOrderRepository) ListSoldItems(ctx context.Context) ([]marketing.SoldItem, error) {
	args := m.Called(ctx)
	return get[[]marketing.SoldItem](args, 0), args.Error(1)
}

func (m *mockOrderRepository) ListRatingMailCandidates(ctx context.Context, closedBefore time.Time) ([]model.Order, error) {
	args := m.Called(ctx, closedBefore)
	return get[[]model.Order](args, 0), args.Error(1)
}

type mockOutboxMsgRepository struct{ mock.Mock }

var _ repository.OutboxMsgRepository = (*mockOutboxMsgRepository)(nil)

func (m *mockOutboxMsgRepository) WithDB(db.DB) repository.OutboxMsgRepository { return m }

func (m *mockOutboxMsgRepository) CreateOutboxMsg(ctx context.Context, params repository.CreateOutboxMsgParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockOutboxMsgRepository) ListUnprocessedOutboxMsgs(ctx context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	args := m.Called(ctx, params)
	return get[[]repository.ListUnprocessedOutboxMsgsResult](args, 0), args.Error(1)
}

func (m *mockOutboxMsgRepository) BulkUpdateOutboxMsgs(ctx context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type mockPayPalRepository struct{ mock.Mock }

var _ repository.PayPalRepository = (*mockPayPalRepository)(nil)

func (m *mockPayPalRepository) WithDB(db.DB) repository.PayPalRepository { return m }

func (m *mockPayPalRepository) CreatePayPalTransaction(ctx context.Context, txn model.PayPalTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

type mockProductRepository struct{ mock.Mock }

var _ repository.ProductRepository = (*mockProductRepository)(nil)

func (m *mockProductRepository) WithDB(db.DB) repository.ProductRepository { return m }

func (m *mockProductRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	args := m.Called(ctx, id)
	return get[model.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) GetProductBySlug(ctx context.Context, slug string) (model.Product, error) {
	args := m.Called(ctx, slug)
	return get[model.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]model.Product, int64, error) {
	args := m.Called(ctx, params)
	return get[[]model.Product](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *mockProductRepository) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	return get[[]model.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) ListVariants(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID][]model.Product, error) {
	args := m.Called(ctx, parentIDs)
	return get[map[uuid.UUID][]model.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) ListCategoryPrices(ctx context.Context, categoryIDs []uuid.UUID) ([]decimal.Decimal, error) {
	args := m.Called(ctx, categoryIDs)
	return get[[]decimal.Decimal](args, 0), args.Error(1)
}

func (m *mockProductRepository) CreateProduct(ctx context.Context, product model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) SetProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	args := m.Called(ctx, productID, categoryIDs)
	return args.Error(0)
}

func (m *mockProductRepository) DecreaseStock(ctx context.Context, id uuid.UUID, amount int) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

type mockTaxRepository struct{ mock.Mock }

var _ repository.TaxRepository = (*mockTaxRepository)(nil)

func (m *mockTaxRepository) WithDB(db.DB) repository.TaxRepository { return m }

func (m *mockTaxRepository) ListTaxes(ctx context.Context) ([]model.Tax, error) {
	args := m.Called(ctx)
	return get[[]model.Tax](args, 0), args.Error(1)
}

func (m *mockTaxRepository) GetTax(ctx context.Context, id uuid.UUID) (model.Tax, error) {
	args := m.Called(ctx, id)
	return get[model.Tax](args, 0), args.Error(1)
}

func (m *mockTaxRepository) CreateTax(ctx context.Context, tax model.Tax) error {
	args := m.Called(ctx, tax)
	return args.Error(0)
}

func (m *mockTaxRepository) UpdateTax(ctx context.Context, tax model.Tax) error {
	args := m.Called(ctx, tax)
	return args.Error(0)
}

func (m *mockTaxRepository) DeleteTax(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockVoucherRepository struct{ mock.Mock }

var _ repository.VoucherRepository = (*mockVoucherRepository)(nil)

func (m *mockVoucherRepository) WithDB(db.DB) repository.VoucherRepository { return m }

func (m *mockVoucherRepository) ListVoucherGroups(ctx context.Context) ([]model.VoucherGroup, error) {
	args := m.Called(ctx)
	return get[[]model.VoucherGroup](args, 0), args.Error(1)
}

func (m *mockVoucherRepository) GetVoucherGroup(ctx context.Context, id uuid.UUID) (model.VoucherGroup, error) {
	args := m.Called(ctx, id)
	return get[model.VoucherGroup](args, 0), args.Error(1)
}

func (m *mockVoucherRepository) CreateVoucherGroup(ctx context.Context, group model.VoucherGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *mockVoucherRepository) UpdateVoucherGroup(ctx context.Context, group model.VoucherGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *mockVoucherRepository) DeleteVoucherGroup(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockVoucherRepository) ListVouchers(ctx context.Context, groupID uuid.UUID) ([]model.Voucher, error) {
	args := m.Called(ctx, groupID)
	return get[[]model.Voucher](args, 0), args.Error(1)
}

func (m *mockVoucherRepository) ListVoucherNumbers(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	return get[map[string]struct{}](args, 0), args.Error(1)
}

func (m *mockVoucherRepository) GetVoucherByNumber(ctx context.Context, number string, forUpdate bool) (model.Voucher, error) {
	args := m.Called(ctx, number, forUpdate)
	return get[model.Voucher](args, 0), args.Error(1)
}

func (m *mockVoucherRepository) CreateVouchers(ctx context.Context, vouchers []model.Voucher) (int64, error) {
	args := m.Called(ctx, vouchers)
	return get[int64](args, 0), args.Error(1)
}

func (m *mockVoucherRepository) DeleteVouchers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return get[int64](args, 0), args.Error(1)
}

func (m *mockVoucherRepository) MarkVoucherUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}
