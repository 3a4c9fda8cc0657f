package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/event"
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

type checkoutFixture struct {
	svc      CheckoutService
	cart     *mockCartRepository
	product  *mockProductRepository
	method   *mockMethodRepository
	discount *mockDiscountRepository
	voucher  *mockVoucherRepository
	customer *mockCustomerRepository
	order    *mockOrderRepository
	outbox   *mockOutboxMsgRepository
}

func newCheckoutFixture() checkoutFixture {
	f := checkoutFixture{
		cart:     &mockCartRepository{},
		product:  &mockProductRepository{},
		method:   &mockMethodRepository{},
		discount: &mockDiscountRepository{},
		voucher:  &mockVoucherRepository{},
		customer: &mockCustomerRepository{},
		order:    &mockOrderRepository{},
		outbox:   &mockOutboxMsgRepository{},
	}
	f.svc = NewCheckoutService(
		fakeDB{},
		testLogger(),
		testClock,
		config.Shop{Name: "LFS", BaseURL: "https://shop.test", Currency: "EUR", OrderNumberPrefix: "LFS-", DeliveryTimeMin: 1, DeliveryTimeMax: 3},
		config.PayPal{ReceiverEmail: "shop@example.com", PayURL: "https://paypal.test/webscr"},
		testMetrics(),
		CheckoutRepositories{
			Cart:      f.cart,
			Product:   f.product,
			Method:    f.method,
			Discount:  f.discount,
			Voucher:   f.voucher,
			Customer:  f.customer,
			Order:     f.order,
			OutboxMsg: f.outbox,
		},
	)
	return f
}

func (f checkoutFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.cart.AssertExpectations(t)
	f.product.AssertExpectations(t)
	f.method.AssertExpectations(t)
	f.discount.AssertExpectations(t)
	f.voucher.AssertExpectations(t)
	f.customer.AssertExpectations(t)
	f.order.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
}

func checkoutCart() (model.Cart, model.Product, model.Product) {
	managed := model.Product{
		ID: uuid.New(), Name: "Chair", Sku: "CH-1", SubType: model.ProductSubTypeStandard, Active: true,
		Price: d("10"), ManageStockAmount: true, StockAmount: 5,
	}
	unmanaged := model.Product{
		ID: uuid.New(), Name: "Table", Sku: "TB-1", SubType: model.ProductSubTypeStandard, Active: true,
		Price: d("8"), ForSale: true, ForSalePrice: d("5"),
	}
	cart := model.Cart{
		ID:      uuid.New(),
		Country: "DE",
		Items: []model.CartItem{
			{ID: uuid.New(), ProductID: managed.ID, Amount: 2, Product: managed},
			{ID: uuid.New(), ProductID: unmanaged.ID, Amount: 1, Product: unmanaged},
		},
	}
	cart.Items[0].CartID = cart.ID
	cart.Items[1].CartID = cart.ID
	return cart, managed, unmanaged
}

func TestCheckoutService_AddOrder(t *testing.T) {
	ctx := context.Background()

	standard := model.ShippingMethod{ID: uuid.New(), Name: "standard", Active: true, Price: d("4.95")}
	prepayment := model.PaymentMethod{ID: uuid.New(), Name: "prepayment", Active: true, Kind: model.PaymentMethodKindPrepayment}
	paypal := model.PaymentMethod{ID: uuid.New(), Name: "paypal", Active: true, Kind: model.PaymentMethodKindPayPal}
	discount := model.Discount{ID: uuid.New(), Name: "three off", Sku: "D-3", Active: true, Type: model.ValueTypeAbsolute, Value: d("3"), SumsUp: true}

	expectPricing := func(f checkoutFixture, payment model.PaymentMethod) {
		f.method.On("ListShippingMethods", mock.Anything).Return([]model.ShippingMethod{standard}, nil)
		f.method.On("ListPaymentMethods", mock.Anything).Return([]model.PaymentMethod{payment}, nil)
		f.discount.On("ListDiscounts", mock.Anything, true).Return([]model.Discount{discount}, nil)
	}

	params := func(cartID uuid.UUID) AddOrderParams {
		return AddOrderParams{
			CartID: cartID,
			Email:  "jane@example.com",
			InvoiceAddress: model.Address{
				FirstName: "Jane", LastName: "Doe", Line1: "Main St 1", City: "Berlin", ZipCode: "10115", Country: "DE",
			},
		}
	}

	t.Run("Should apply the voucher when it beats the discounts", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, managed, _ := checkoutCart()
		voucher := model.Voucher{ID: uuid.New(), Number: "SAVE5", Active: true, Kind: model.ValueTypeAbsolute, Value: d("5")}

		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)
		expectPricing(f, prepayment)
		f.voucher.On("GetVoucherByNumber", mock.Anything, "SAVE5", true).Return(voucher, nil)
		f.customer.On("GetCustomerByEmail", mock.Anything, "jane@example.com").Return(model.Customer{}, pgx.ErrNoRows)
		f.customer.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(c model.Customer) bool {
			return c.Email == "jane@example.com" && c.FirstName == "Jane" &&
				c.SelectedShippingMethodID != nil && *c.SelectedShippingMethodID == standard.ID
		})).Return(nil)
		f.order.On("NextOrderNumber", mock.Anything).Return(int64(42), nil)
		f.order.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
		f.product.On("DecreaseStock", mock.Anything, managed.ID, 2).Return(nil)
		f.voucher.On("MarkVoucherUsed", mock.Anything, voucher.ID, testNow).Return(nil)
		f.outbox.On("CreateOutboxMsg", mock.Anything, outboxTopic(event.TopicOrderCreated)).Return(nil)
		f.cart.On("DeleteCart", mock.Anything, cart.ID).Return(nil)

		p := params(cart.ID)
		p.VoucherNumber = "SAVE5"
		order, err := f.svc.AddOrder(ctx, p)
		require.NoError(t, err)

		assert.Equal(t, "LFS-000042", order.Number)
		assert.Equal(t, model.OrderStateSubmitted, order.State)
		assert.Equal(t, "SAVE5", order.VoucherNumber)
		assertDecimal(t, "5", order.VoucherPrice)
		assertDecimal(t, "24.95", order.Price)
		assertDecimal(t, "4.95", order.ShippingPrice)
		require.Len(t, order.Items, 2)
		assert.Equal(t, "CH-1", order.Items[0].ProductSku)
		assertDecimal(t, "20", order.Items[0].PriceGross)
		assertDecimal(t, "5", order.Items[1].ProductPriceGross)
		assert.Equal(t, "Jane", order.ShippingAddress.FirstName)
		assert.Equal(t, "jane@example.com", order.InvoiceAddress.Email)
		assert.Empty(t, order.PayLink)
		require.NotNil(t, order.DeliveryTime)
		assert.Equal(t, 3, order.DeliveryTime.Max)

		f.product.AssertNotCalled(t, "DecreaseStock", mock.Anything, cart.Items[1].ProductID, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Should roll back when the voucher limit was reached meanwhile", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, managed, _ := checkoutCart()
		voucher := model.Voucher{ID: uuid.New(), Number: "SAVE5", Active: true, Kind: model.ValueTypeAbsolute, Value: d("5")}

		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)
		expectPricing(f, prepayment)
		f.voucher.On("GetVoucherByNumber", mock.Anything, "SAVE5", true).Return(voucher, nil)
		f.customer.On("GetCustomerByEmail", mock.Anything, "jane@example.com").Return(model.Customer{}, pgx.ErrNoRows)
		f.customer.On("CreateCustomer", mock.Anything, mock.Anything).Return(nil)
		f.order.On("NextOrderNumber", mock.Anything).Return(int64(43), nil)
		f.order.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
		f.product.On("DecreaseStock", mock.Anything, managed.ID, 2).Return(nil)
		f.voucher.On("MarkVoucherUsed", mock.Anything, voucher.ID, testNow).
			Return(fmt.Errorf("mark voucher used: %w", pgx.ErrNoRows))

		p := params(cart.ID)
		p.VoucherNumber = "SAVE5"
		_, err := f.svc.AddOrder(ctx, p)
		require.ErrorIs(t, err, apperr.VoucherNotEffectiveErr)

		f.outbox.AssertNotCalled(t, "CreateOutboxMsg", mock.Anything, mock.Anything)
		f.cart.AssertNotCalled(t, "DeleteCart", mock.Anything, mock.Anything)
	})

	t.Run("Should add discount items when the discounts beat the voucher", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, managed, _ := checkoutCart()
		voucher := model.Voucher{ID: uuid.New(), Number: "SAVE2", Active: true, Kind: model.ValueTypeAbsolute, Value: d("2")}
		existing := model.Customer{ID: uuid.New(), Email: "jane@example.com"}

		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)
		expectPricing(f, prepayment)
		f.voucher.On("GetVoucherByNumber", mock.Anything, "SAVE2", true).Return(voucher, nil)
		f.customer.On("GetCustomerByEmail", mock.Anything, "jane@example.com").Return(existing, nil)
		f.customer.On("UpdateCustomer", mock.Anything, mock.MatchedBy(func(c model.Customer) bool { return c.ID == existing.ID })).Return(nil)
		f.order.On("NextOrderNumber", mock.Anything).Return(int64(7), nil)
		f.order.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
		f.product.On("DecreaseStock", mock.Anything, managed.ID, 2).Return(nil)
		f.outbox.On("CreateOutboxMsg", mock.Anything, outboxTopic(event.TopicOrderCreated)).Return(nil)
		f.cart.On("DeleteCart", mock.Anything, cart.ID).Return(nil)

		p := params(cart.ID)
		p.VoucherNumber = "SAVE2"
		order, err := f.svc.AddOrder(ctx, p)
		require.NoError(t, err)

		assert.Empty(t, order.VoucherNumber)
		assertDecimal(t, "26.95", order.Price)
		assert.Equal(t, existing.ID, *order.CustomerID)
		require.Len(t, order.Items, 3)
		discountItem := order.Items[2]
		assert.Nil(t, discountItem.ProductID)
		assert.Equal(t, "D-3", discountItem.ProductSku)
		assertDecimal(t, "-3", discountItem.PriceGross)
		assert.Equal(t, 2, discountItem.Position)

		f.voucher.AssertNotCalled(t, "MarkVoucherUsed", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Should build a pay link for paypal orders", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, managed, _ := checkoutCart()

		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)
		expectPricing(f, paypal)
		f.customer.On("GetCustomerByEmail", mock.Anything, "jane@example.com").Return(model.Customer{}, pgx.ErrNoRows)
		f.customer.On("CreateCustomer", mock.Anything, mock.Anything).Return(nil)
		f.order.On("NextOrderNumber", mock.Anything).Return(int64(1), nil)
		f.order.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o model.Order) bool { return o.PayLink != "" })).Return(nil)
		f.product.On("DecreaseStock", mock.Anything, managed.ID, 2).Return(nil)
		f.outbox.On("CreateOutboxMsg", mock.Anything, outboxTopic(event.TopicOrderCreated)).Return(nil)
		f.cart.On("DeleteCart", mock.Anything, cart.ID).Return(nil)

		order, err := f.svc.AddOrder(ctx, params(cart.ID))
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(order.PayLink, "https://paypal.test/webscr?"))
		assert.Contains(t, order.PayLink, "invoice=LFS-000001")
		assert.Contains(t, order.PayLink, "custom="+order.ID.String())
		assert.Contains(t, order.PayLink, "business=shop%40example.com")
		f.assertExpectations(t)
	})

	t.Run("Should reject an empty cart", func(t *testing.T) {
		f := newCheckoutFixture()
		cart := model.Cart{ID: uuid.New()}
		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)

		_, err := f.svc.AddOrder(ctx, params(cart.ID))
		require.ErrorIs(t, err, apperr.CartEmptyErr)
		f.order.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Should reject items that are out of stock", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, _, _ := checkoutCart()
		cart.Items[0].Amount = 6
		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)

		_, err := f.svc.AddOrder(ctx, params(cart.ID))
		require.ErrorIs(t, err, apperr.OutOfStockErr)
	})

	t.Run("Should fail when the stock ran out since the cart was loaded", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, managed, _ := checkoutCart()

		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)
		expectPricing(f, prepayment)
		f.customer.On("GetCustomerByEmail", mock.Anything, "jane@example.com").Return(model.Customer{}, pgx.ErrNoRows)
		f.customer.On("CreateCustomer", mock.Anything, mock.Anything).Return(nil)
		f.order.On("NextOrderNumber", mock.Anything).Return(int64(3), nil)
		f.order.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
		f.product.On("DecreaseStock", mock.Anything, managed.ID, 2).Return(fmt.Errorf("decrease stock: %w", pgx.ErrNoRows))

		_, err := f.svc.AddOrder(ctx, params(cart.ID))
		require.ErrorIs(t, err, apperr.OutOfStockErr)
		f.cart.AssertNotCalled(t, "DeleteCart", mock.Anything, mock.Anything)
		f.outbox.AssertNotCalled(t, "CreateOutboxMsg", mock.Anything, mock.Anything)
	})

	t.Run("Should map a missing cart", func(t *testing.T) {
		f := newCheckoutFixture()
		id := uuid.New()
		f.cart.On("GetCart", mock.Anything, id).Return(model.Cart{}, pgx.ErrNoRows)

		_, err := f.svc.AddOrder(ctx, params(id))
		require.ErrorIs(t, err, apperr.CartNotFoundErr)
	})
}

func TestCheckoutService_CheckVoucher(t *testing.T) {
	ctx := context.Background()
	standard := model.ShippingMethod{ID: uuid.New(), Name: "standard", Active: true, Price: d("4.95")}

	setup := func(f checkoutFixture, cart model.Cart) {
		f.cart.On("GetCart", mock.Anything, cart.ID).Return(cart, nil)
		f.method.On("ListShippingMethods", mock.Anything).Return([]model.ShippingMethod{standard}, nil)
		f.method.On("ListPaymentMethods", mock.Anything).Return([]model.PaymentMethod{}, nil)
		f.discount.On("ListDiscounts", mock.Anything, true).Return([]model.Discount{}, nil)
	}

	t.Run("Should report an unknown number", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, _, _ := checkoutCart()
		setup(f, cart)
		f.voucher.On("GetVoucherByNumber", mock.Anything, "NOPE", false).Return(model.Voucher{}, pgx.ErrNoRows)

		check, err := f.svc.CheckVoucher(ctx, cart.ID, "NOPE")
		require.NoError(t, err)
		assert.False(t, check.Effective)
		assert.Equal(t, model.VoucherMessageNotFound, check.Message)
		assertDecimal(t, "29.95", check.Evaluation.Price)
	})

	t.Run("Should report a voucher below its minimum", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, _, _ := checkoutCart()
		setup(f, cart)
		voucher := model.Voucher{ID: uuid.New(), Number: "BIG", Active: true, Kind: model.ValueTypePercentage, Value: d("10"), EffectiveFrom: d("100")}
		f.voucher.On("GetVoucherByNumber", mock.Anything, "BIG", false).Return(voucher, nil)

		check, err := f.svc.CheckVoucher(ctx, cart.ID, "BIG")
		require.NoError(t, err)
		assert.False(t, check.Effective)
		assert.Equal(t, model.VoucherMessageBelowMinimum, check.Message)
	})

	t.Run("Should take a percentage voucher off the cart", func(t *testing.T) {
		f := newCheckoutFixture()
		cart, _, _ := checkoutCart()
		setup(f, cart)
		voucher := model.Voucher{ID: uuid.New(), Number: "TEN", Active: true, Kind: model.ValueTypePercentage, Value: d("10")}
		f.voucher.On("GetVoucherByNumber", mock.Anything, "TEN", false).Return(voucher, nil)

		check, err := f.svc.CheckVoucher(ctx, cart.ID, "TEN")
		require.NoError(t, err)
		assert.True(t, check.Effective)
		assertDecimal(t, "2.5", check.Evaluation.Reduction.VoucherPrice.Gross)
		assertDecimal(t, "27.45", check.Evaluation.Price)
	})
}
