package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/app"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/service"
)

type seeder struct {
	cfg    Seed
	shop   config.Shop
	logger *slog.Logger
	faker  *gofakeit.Faker
	svcs   app.Services

	taxID      uuid.UUID
	categories []model.Category
	products   []model.Product
	orders     int
}

func (s *seeder) run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"taxes", s.seedTaxes},
		{"categories", s.seedCategories},
		{"products", s.seedProducts},
		{"methods", s.seedMethods},
		{"orders", s.seedOrders},
	}

	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
		s.logger.InfoContext(ctx, "seeded", slog.String("step", step.name))
	}
	return nil
}

func (s *seeder) seedTaxes(ctx context.Context) error {
	standard, err := s.svcs.CatalogManage.CreateTax(ctx, service.TaxParams{Name: "Standard", Rate: decimal.NewFromInt(19)})
	if err != nil {
		return err
	}
	if _, err := s.svcs.CatalogManage.CreateTax(ctx, service.TaxParams{Name: "Reduced", Rate: decimal.NewFromInt(7)}); err != nil {
		return err
	}

	s.taxID = standard.ID
	return nil
}

func (s *seeder) seedCategories(ctx context.Context) error {
	for i := range s.cfg.Categories {
		name := s.faker.ProductCategory()
		category, err := s.svcs.CatalogManage.CreateCategory(ctx, service.CategoryParams{
			Name:             name,
			Slug:             s.slug(name),
			Position:         (i + 1) * 10,
			ShortDescription: s.faker.Sentence(8),
			Description:      s.faker.Paragraph(2, 4, 12, "\n"),
		})
		if err != nil {
			return err
		}
		s.categories = append(s.categories, category)

		// one level of subcategories below every other top category
		if i%2 == 1 {
			continue
		}
		sub := s.faker.ProductFeature()
		child, err := s.svcs.CatalogManage.CreateCategory(ctx, service.CategoryParams{
			ParentID: &category.ID,
			Name:     sub,
			Slug:     s.slug(sub),
			Position: 10,
		})
		if err != nil {
			return err
		}
		s.categories = append(s.categories, child)
	}
	return nil
}

func (s *seeder) seedProducts(ctx context.Context) error {
	if len(s.categories) == 0 {
		return nil
	}

	for range s.cfg.Products {
		name := s.faker.ProductName()
		category := s.categories[s.faker.IntN(len(s.categories))]
		price := decimal.NewFromFloat(s.faker.Price(1, 500)).Round(2)

		params := service.ProductParams{
			SubType:           model.ProductSubTypeStandard,
			Name:              name,
			Slug:              s.slug(name),
			Sku:               strings.ToUpper(s.faker.LetterN(3)) + s.faker.DigitN(6),
			ShortDescription:  s.faker.ProductFeature(),
			Description:       s.faker.Paragraph(2, 3, 15, "\n"),
			Price:             price,
			TaxID:             &s.taxID,
			Active:            true,
			Deliverable:       true,
			ManageStockAmount: s.faker.Bool(),
			StockAmount:       s.faker.Number(0, 200),
			Weight:            decimal.NewFromFloat(s.faker.Float64Range(0.1, 20)).Round(2),
			DeliveryTime:      &model.DeliveryTime{Min: 1, Max: s.faker.Number(2, 5), Unit: model.DeliveryTimeUnitDays},
			CategoryIDs:       []uuid.UUID{category.ID},
		}
		if s.faker.Number(1, 5) == 1 {
			params.ForSale = true
			params.ForSalePrice = price.Mul(decimal.RequireFromString("0.8")).Round(2)
		}

		product, err := s.svcs.CatalogManage.CreateProduct(ctx, params)
		if err != nil {
			return err
		}
		s.products = append(s.products, product)
	}
	return nil
}

func (s *seeder) seedMethods(ctx context.Context) error {
	shipping := []service.ShippingMethodParams{
		{
			Name:         "Standard",
			Priority:     10,
			Active:       true,
			TaxID:        &s.taxID,
			Price:        decimal.RequireFromString("4.90"),
			DeliveryTime: &model.DeliveryTime{Min: 2, Max: 4, Unit: model.DeliveryTimeUnitDays},
		},
		{
			Name:         "Express",
			Priority:     20,
			Active:       true,
			TaxID:        &s.taxID,
			Price:        decimal.RequireFromString("12.90"),
			DeliveryTime: &model.DeliveryTime{Min: 1, Max: 1, Unit: model.DeliveryTimeUnitDays},
		},
	}
	for _, params := range shipping {
		if _, err := s.svcs.Method.CreateShippingMethod(ctx, params); err != nil {
			return err
		}
	}

	payment := []service.PaymentMethodParams{
		{Name: "Prepayment", Priority: 10, Active: true, Kind: model.PaymentMethodKindPrepayment},
		{Name: "Cash on delivery", Priority: 20, Active: true, TaxID: &s.taxID, Price: decimal.RequireFromString("2.00"), Kind: model.PaymentMethodKindCashOnDelivery},
		{Name: "PayPal", Priority: 30, Active: true, Kind: model.PaymentMethodKindPayPal},
	}
	for _, params := range payment {
		if _, err := s.svcs.Method.CreatePaymentMethod(ctx, params); err != nil {
			return err
		}
	}
	return nil
}

// seedOrders checks out carts of random products and moves the orders
// into random states.
func (s *seeder) seedOrders(ctx context.Context) error {
	if len(s.products) == 0 {
		return nil
	}

	states := []model.OrderState{
		model.OrderStateSubmitted,
		model.OrderStatePaid,
		model.OrderStateSent,
		model.OrderStateClosed,
		model.OrderStateClosed,
		model.OrderStateCanceled,
	}

	for range s.cfg.Orders {
		cart, err := s.svcs.Cart.CreateCart(ctx, service.CreateCartParams{
			Session: s.faker.UUID(),
			Country: s.shop.DefaultCountry,
		})
		if err != nil {
			return err
		}

		for range s.faker.Number(1, 4) {
			product := s.products[s.faker.IntN(len(s.products))]
			if product.ManageStockAmount && product.StockAmount < 3 {
				continue
			}
			if _, err := s.svcs.Cart.AddItem(ctx, cart.ID, product.ID, s.faker.Number(1, 2)); err != nil {
				return err
			}
		}

		address := s.address()
		order, err := s.svcs.Checkout.AddOrder(ctx, service.AddOrderParams{
			CartID:         cart.ID,
			Email:          address.Email,
			InvoiceAddress: address,
			NoShipping:     true,
		})
		if err != nil {
			// carts may end up empty when all picked products are sold out
			s.logger.WarnContext(ctx, "skip order", slog.Any("error", err))
			continue
		}

		if state := states[s.faker.IntN(len(states))]; state != model.OrderStateSubmitted {
			if _, err := s.svcs.Order.SetOrderState(ctx, order.ID, state); err != nil {
				return err
			}
		}
		s.orders++
	}
	return nil
}

func (s *seeder) address() model.Address {
	first, last := s.faker.FirstName(), s.faker.LastName()
	return model.Address{
		FirstName: first,
		LastName:  last,
		Line1:     s.faker.Street(),
		ZipCode:   s.faker.Zip(),
		City:      s.faker.City(),
		Country:   s.shop.DefaultCountry,
		Phone:     s.faker.Phone(),
		Email:     strings.ToLower(first+"."+last) + "." + s.faker.DigitN(4) + "@example.com",
	}
}

// slug turns name into a url path segment with a random suffix.
func (s *seeder) slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-") + "-" + strings.ToLower(s.faker.LetterN(4))
}
