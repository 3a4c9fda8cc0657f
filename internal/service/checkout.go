package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/event"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/pricing"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type AddOrderParams struct {
	CartID         uuid.UUID
	Email          string
	InvoiceAddress model.Address
	// ShippingAddress is ignored when NoShipping is set.
	ShippingAddress       *model.Address
	NoShipping            bool
	BankAccount           *model.BankAccount
	VoucherNumber         string
	Message               string
	RequestedDeliveryDate *time.Time
}

type VoucherCheck struct {
	Number     string               `json:"number"`
	Effective  bool                 `json:"effective"`
	Message    model.VoucherMessage `json:"message"`
	Evaluation pricing.Evaluation   `json:"evaluation"`
}

type CheckoutService interface {
	// CheckVoucher evaluates the cart as if the voucher was entered.
	CheckVoucher(ctx context.Context, cartID uuid.UUID, number string) (VoucherCheck, error)
	AddOrder(ctx context.Context, params AddOrderParams) (model.Order, error)
}

type checkoutService struct {
	db            db.DB
	logger        *slog.Logger
	now           Clock
	shopCfg       config.Shop
	payPalCfg     config.PayPal
	metrics       *metric.Metrics
	loader        pricingLoader
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	voucherRepo   repository.VoucherRepository
	customerRepo  repository.CustomerRepository
	orderRepo     repository.OrderRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

type CheckoutRepositories struct {
	Cart      repository.CartRepository
	Product   repository.ProductRepository
	Method    repository.MethodRepository
	Discount  repository.DiscountRepository
	Voucher   repository.VoucherRepository
	Customer  repository.CustomerRepository
	Order     repository.OrderRepository
	OutboxMsg repository.OutboxMsgRepository
}

func NewCheckoutService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	shopCfg config.Shop,
	payPalCfg config.PayPal,
	metrics *metric.Metrics,
	repos CheckoutRepositories,
) CheckoutService {
	return &checkoutService{
		db:            db,
		logger:        logger.With(slog.String("service", "checkout")),
		now:           now,
		shopCfg:       shopCfg,
		payPalCfg:     payPalCfg,
		metrics:       metrics,
		loader:        pricingLoader{methodRepo: repos.Method, discountRepo: repos.Discount},
		cartRepo:      repos.Cart,
		productRepo:   repos.Product,
		voucherRepo:   repos.Voucher,
		customerRepo:  repos.Customer,
		orderRepo:     repos.Order,
		outboxMsgRepo: repos.OutboxMsg,
	}
}

// evaluate prices the cart with the voucher of the given number, if any.
// An unknown number is reported through the voucher message.
func (s *checkoutService) evaluate(
	ctx context.Context,
	loader pricingLoader,
	voucherRepo repository.VoucherRepository,
	cart model.Cart,
	number string,
	lock bool,
) (pricing.Evaluation, error) {
	methods, discounts, err := loader.load(ctx)
	if err != nil {
		return pricing.Evaluation{}, err
	}

	in := pricing.CartInput{
		Cart:      cart,
		Methods:   methods,
		Discounts: discounts,
		Now:       s.now(),
	}

	unknown := false
	if number != "" {
		voucher, err := voucherRepo.GetVoucherByNumber(ctx, number, lock)
		switch {
		case err == nil:
			in.Voucher = &voucher
		case db.IsNotFound(err):
			unknown = true
		default:
			return pricing.Evaluation{}, fmt.Errorf("voucher repository get voucher by number: %w", err)
		}
	}

	ev := pricing.EvaluateCart(in)
	if unknown {
		ev.VoucherMessage = model.VoucherMessageNotFound
	}

	return ev, nil
}

func (s *checkoutService) CheckVoucher(ctx context.Context, cartID uuid.UUID, number string) (VoucherCheck, error) {
	cart, err := s.cartRepo.GetCart(ctx, cartID)
	if err != nil {
		return VoucherCheck{}, notFound(fmt.Errorf("cart repository get cart: %w", err), apperr.CartNotFoundErr)
	}

	ev, err := s.evaluate(ctx, s.loader, s.voucherRepo, cart, number, false)
	if err != nil {
		return VoucherCheck{}, err
	}

	return VoucherCheck{
		Number:     number,
		Effective:  ev.VoucherMessage == model.VoucherMessageOK,
		Message:    ev.VoucherMessage,
		Evaluation: ev,
	}, nil
}

// AddOrder turns the cart into an order. Everything happens in one
// transaction; the voucher row stays locked until it is marked used.
func (s *checkoutService) AddOrder(ctx context.Context, params AddOrderParams) (model.Order, error) {
	var order model.Order

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		cartRepo := s.cartRepo.WithDB(db)
		voucherRepo := s.voucherRepo.WithDB(db)
		loader := pricingLoader{
			methodRepo:   s.loader.methodRepo.WithDB(db),
			discountRepo: s.loader.discountRepo.WithDB(db),
		}

		cart, err := cartRepo.GetCart(ctx, params.CartID)
		if err != nil {
			return notFound(fmt.Errorf("cart repository get cart: %w", err), apperr.CartNotFoundErr)
		}
		if cart.ItemAmount() == 0 {
			return apperr.CartEmptyErr
		}

		for _, item := range cart.Items {
			if item.Amount == 0 {
				continue
			}
			if err := checkAvailable(item.Product, item.Amount); err != nil {
				return err
			}
		}

		ev, err := s.evaluate(ctx, loader, voucherRepo, cart, params.VoucherNumber, true)
		if err != nil {
			return err
		}

		customer, err := s.saveCustomer(ctx, db, params, ev)
		if err != nil {
			return err
		}

		order, err = s.buildOrder(ctx, db, cart, customer, params, ev)
		if err != nil {
			return err
		}

		if err := s.orderRepo.WithDB(db).CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("order repository create order: %w", err)
		}

		productRepo := s.productRepo.WithDB(db)
		for _, item := range cart.Items {
			if item.Amount == 0 || !item.Product.ManageStockAmount {
				continue
			}
			if err := productRepo.DecreaseStock(ctx, item.ProductID, item.Amount); err != nil {
				return notFound(fmt.Errorf("product repository decrease stock: %w", err),
					apperr.OutOfStockErr.WithMsgf("not enough %q in stock", item.Product.Name))
			}
		}

		if v := ev.Reduction.Voucher; v != nil {
			if err := voucherRepo.MarkVoucherUsed(ctx, v.ID, order.CreatedAt); err != nil {
				return notFound(fmt.Errorf("voucher repository mark voucher used: %w", err),
					apperr.VoucherNotEffectiveErr.WithMsgf("voucher %q is already used", v.Number))
			}
		}

		key := order.ID.String()
		if err := writeOutboxMsg(ctx, s.outboxMsgRepo.WithDB(db), event.TopicOrderCreated, &key, event.OrderCreatedEvent{
			OrderID: order.ID,
			Number:  order.Number,
		}); err != nil {
			return err
		}

		if err := cartRepo.DeleteCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("cart repository delete cart: %w", err)
		}

		return nil
	}); err != nil {
		return model.Order{}, fmt.Errorf("db with tx: %w", err)
	}

	s.metrics.ObserveOrder(order.Price, order.VoucherNumber != "")
	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID.String()),
		slog.String("number", order.Number))

	return order, nil
}

// saveCustomer creates or updates the customer with the checkout email.
func (s *checkoutService) saveCustomer(ctx context.Context, conn db.DB, params AddOrderParams, ev pricing.Evaluation) (model.Customer, error) {
	repo := s.customerRepo.WithDB(conn)
	now := s.now()

	customer, err := repo.GetCustomerByEmail(ctx, params.Email)
	create := false
	if err != nil {
		if !db.IsNotFound(err) {
			return model.Customer{}, fmt.Errorf("customer repository get customer by email: %w", err)
		}
		id, err := newID()
		if err != nil {
			return model.Customer{}, err
		}
		customer = model.Customer{ID: id, Email: params.Email, CreatedAt: now}
		create = true
	}

	invoice, shipping := orderAddresses(params)
	customer.FirstName = invoice.FirstName
	customer.LastName = invoice.LastName
	customer.InvoiceAddress = &invoice
	customer.ShippingAddress = &shipping
	if params.BankAccount != nil {
		customer.BankAccount = params.BankAccount
	}
	customer.SelectedShippingMethodID = nil
	if ev.ShippingMethod != nil {
		customer.SelectedShippingMethodID = &ev.ShippingMethod.ID
	}
	customer.SelectedPaymentMethodID = nil
	if ev.PaymentMethod != nil {
		customer.SelectedPaymentMethodID = &ev.PaymentMethod.ID
	}
	customer.UpdatedAt = now

	if create {
		if err := repo.CreateCustomer(ctx, customer); err != nil {
			return model.Customer{}, fmt.Errorf("customer repository create customer: %w", err)
		}
	} else if err := repo.UpdateCustomer(ctx, customer); err != nil {
		return model.Customer{}, fmt.Errorf("customer repository update customer: %w", err)
	}

	return customer, nil
}

func orderAddresses(params AddOrderParams) (invoice, shipping model.Address) {
	invoice = params.InvoiceAddress
	if invoice.Email == "" {
		invoice.Email = params.Email
	}

	shipping = invoice
	if !params.NoShipping && params.ShippingAddress != nil {
		shipping = *params.ShippingAddress
	}

	return invoice, shipping
}

func (s *checkoutService) buildOrder(
	ctx context.Context,
	conn db.DB,
	cart model.Cart,
	customer model.Customer,
	params AddOrderParams,
	ev pricing.Evaluation,
) (model.Order, error) {
	id, err := newID()
	if err != nil {
		return model.Order{}, err
	}

	seq, err := s.orderRepo.WithDB(conn).NextOrderNumber(ctx)
	if err != nil {
		return model.Order{}, fmt.Errorf("order repository next order number: %w", err)
	}

	now := s.now()
	invoice, shipping := orderAddresses(params)

	order := model.Order{
		ID:                    id,
		Number:                fmt.Sprintf("%s%06d", s.shopCfg.OrderNumberPrefix, seq),
		CustomerID:            &customer.ID,
		CustomerEmail:         customer.Email,
		CustomerFirstName:     invoice.FirstName,
		CustomerLastName:      invoice.LastName,
		State:                 model.OrderStateSubmitted,
		StateModified:         now,
		Price:                 ev.Price,
		Tax:                   ev.Tax,
		ShippingPrice:         ev.Shipping.Gross,
		ShippingTax:           ev.Shipping.Tax,
		PaymentPrice:          ev.Payment.Gross,
		PaymentTax:            ev.Payment.Tax,
		InvoiceAddress:        invoice,
		ShippingAddress:       shipping,
		BankAccount:           params.BankAccount,
		Message:               params.Message,
		RequestedDeliveryDate: params.RequestedDeliveryDate,
		CreatedAt:             now,
	}

	if m := ev.ShippingMethod; m != nil {
		order.ShippingMethodID = &m.ID
		order.DeliveryTime = m.DeliveryTime
	}
	if order.DeliveryTime == nil {
		order.DeliveryTime = &model.DeliveryTime{
			Min:  s.shopCfg.DeliveryTimeMin,
			Max:  s.shopCfg.DeliveryTimeMax,
			Unit: model.DeliveryTimeUnitDays,
		}
	}
	if m := ev.PaymentMethod; m != nil {
		order.PaymentMethodID = &m.ID
	}
	if v := ev.Reduction.Voucher; v != nil {
		order.VoucherNumber = v.Number
		order.VoucherPrice = ev.Reduction.VoucherPrice.Gross
		order.VoucherTax = ev.Reduction.VoucherPrice.Tax
	}

	order.Items = orderItems(order.ID, cart, ev.Reduction)

	if m := ev.PaymentMethod; m != nil && m.Kind == model.PaymentMethodKindPayPal {
		order.PayLink = s.payLink(order)
	}

	return order, nil
}

// orderItems snapshots the cart items and adds one negative item per
// applied discount.
func orderItems(orderID uuid.UUID, cart model.Cart, reduction pricing.Reduction) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(cart.Items)+len(reduction.Discounts))

	for _, ci := range cart.Items {
		if ci.Amount == 0 {
			continue
		}

		unit := pricing.ProductPrice(ci.Product)
		total := pricing.ItemPrice(ci)
		productID := ci.ProductID

		items = append(items, model.OrderItem{
			ID:                uuid.Must(uuid.NewV7()),
			OrderID:           orderID,
			Position:          len(items),
			ProductID:         &productID,
			ProductSku:        ci.Product.Sku,
			ProductName:       ci.Product.Name,
			ProductAmount:     ci.Amount,
			ProductPriceNet:   unit.Net,
			ProductPriceGross: unit.Gross,
			ProductTax:        unit.Tax,
			PriceNet:          total.Net,
			PriceGross:        total.Gross,
			Tax:               total.Tax,
		})
	}

	for _, d := range reduction.Discounts {
		price := d.Price.Neg()
		items = append(items, model.OrderItem{
			ID:                uuid.Must(uuid.NewV7()),
			OrderID:           orderID,
			Position:          len(items),
			ProductSku:        d.Discount.Sku,
			ProductName:       d.Discount.Name,
			ProductAmount:     1,
			ProductPriceNet:   price.Net,
			ProductPriceGross: price.Gross,
			ProductTax:        price.Tax,
			PriceNet:          price.Net,
			PriceGross:        price.Gross,
			Tax:               price.Tax,
		})
	}

	return items
}

// payLink builds the PayPal website payments URL the customer is sent to.
func (s *checkoutService) payLink(order model.Order) string {
	q := url.Values{}
	q.Set("cmd", "_xclick")
	q.Set("upload", "1")
	q.Set("business", s.payPalCfg.ReceiverEmail)
	q.Set("item_name", s.shopCfg.Name)
	q.Set("invoice", order.Number)
	q.Set("custom", order.ID.String())
	q.Set("amount", order.Price.StringFixed(2))
	q.Set("currency_code", s.shopCfg.Currency)
	q.Set("first_name", order.InvoiceAddress.FirstName)
	q.Set("last_name", order.InvoiceAddress.LastName)
	q.Set("address1", order.InvoiceAddress.Line1)
	q.Set("address2", order.InvoiceAddress.Line2)
	q.Set("city", order.InvoiceAddress.City)
	q.Set("zip", order.InvoiceAddress.ZipCode)
	q.Set("country", order.InvoiceAddress.Country)
	q.Set("notify_url", s.shopCfg.BaseURL+"/paypal/ipn")
	q.Set("return", s.shopCfg.BaseURL+"/checkout/thank-you")
	q.Set("cancel_return", s.shopCfg.BaseURL+"/checkout/canceled")
	q.Set("no_shipping", "1")
	q.Set("charset", "utf-8")

	return s.payPalCfg.PayURL + "?" + q.Encode()
}
