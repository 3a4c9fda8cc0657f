package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/pricing"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type CreateCartParams struct {
	CustomerID *uuid.UUID
	Session    string
	Country    string
}

// CartView is a cart together with its current evaluation.
type CartView struct {
	model.Cart
	ItemAmount int                `json:"item_amount"`
	Evaluation pricing.Evaluation `json:"evaluation"`
}

type CartService interface {
	CreateCart(ctx context.Context, params CreateCartParams) (CartView, error)
	GetCart(ctx context.Context, id uuid.UUID) (CartView, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, cartID, productID uuid.UUID, amount int) (CartView, error)
	// SetItemAmount replaces the amount of an item. Zero removes it.
	SetItemAmount(ctx context.Context, cartID, productID uuid.UUID, amount int) (CartView, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (CartView, error)
	SelectShippingMethod(ctx context.Context, cartID, methodID uuid.UUID) (CartView, error)
	SelectPaymentMethod(ctx context.Context, cartID, methodID uuid.UUID) (CartView, error)
	SetCountry(ctx context.Context, cartID uuid.UUID, country string) (CartView, error)
}

type cartService struct {
	db          db.DB
	logger      *slog.Logger
	now         Clock
	shopCfg     config.Shop
	loader      pricingLoader
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	shopCfg config.Shop,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	methodRepo repository.MethodRepository,
	discountRepo repository.DiscountRepository,
) CartService {
	return &cartService{
		db:          db,
		logger:      logger.With(slog.String("service", "cart")),
		now:         now,
		shopCfg:     shopCfg,
		loader:      pricingLoader{methodRepo: methodRepo, discountRepo: discountRepo},
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) view(ctx context.Context, cart model.Cart) (CartView, error) {
	methods, discounts, err := s.loader.load(ctx)
	if err != nil {
		return CartView{}, err
	}

	ev := pricing.EvaluateCart(pricing.CartInput{
		Cart:      cart,
		Methods:   methods,
		Discounts: discounts,
		Now:       s.now(),
	})

	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}

	return CartView{Cart: cart, ItemAmount: cart.ItemAmount(), Evaluation: ev}, nil
}

func (s *cartService) getCart(ctx context.Context, id uuid.UUID) (model.Cart, error) {
	cart, err := s.cartRepo.GetCart(ctx, id)
	if err != nil {
		return model.Cart{}, notFound(fmt.Errorf("cart repository get cart: %w", err), apperr.CartNotFoundErr)
	}

	return cart, nil
}

func (s *cartService) reload(ctx context.Context, id uuid.UUID) (CartView, error) {
	cart, err := s.getCart(ctx, id)
	if err != nil {
		return CartView{}, err
	}

	return s.view(ctx, cart)
}

func (s *cartService) CreateCart(ctx context.Context, params CreateCartParams) (CartView, error) {
	id, err := newID()
	if err != nil {
		return CartView{}, err
	}

	country := params.Country
	if country == "" {
		country = s.shopCfg.DefaultCountry
	}

	now := s.now()
	cart := model.Cart{
		ID:         id,
		CustomerID: params.CustomerID,
		Session:    params.Session,
		Country:    country,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return CartView{}, fmt.Errorf("cart repository create cart: %w", err)
	}

	return s.view(ctx, cart)
}

func (s *cartService) GetCart(ctx context.Context, id uuid.UUID) (CartView, error) {
	return s.reload(ctx, id)
}

func (s *cartService) DeleteCart(ctx context.Context, id uuid.UUID) error {
	if err := s.cartRepo.DeleteCart(ctx, id); err != nil {
		return notFound(fmt.Errorf("cart repository delete cart: %w", err), apperr.CartNotFoundErr)
	}

	return nil
}

// checkAvailable makes sure amount units of the product can be put into a cart.
func checkAvailable(product model.Product, amount int) error {
	if !product.Active || product.HasVariants() {
		return apperr.ProductNotAvailableErr
	}
	if !product.InStock(amount) {
		return apperr.OutOfStockErr.WithMsgf("not enough %q in stock", product.Name)
	}

	return nil
}

func (s *cartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, amount int) (CartView, error) {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		cart, err := s.cartRepo.WithDB(db).GetCart(ctx, cartID)
		if err != nil {
			return notFound(fmt.Errorf("cart repository get cart: %w", err), apperr.CartNotFoundErr)
		}

		product, err := s.productRepo.WithDB(db).GetProduct(ctx, productID)
		if err != nil {
			return notFound(fmt.Errorf("product repository get product: %w", err), apperr.ProductNotFoundErr)
		}

		total := amount
		for _, item := range cart.Items {
			if item.ProductID == productID {
				total += item.Amount
			}
		}
		if err := checkAvailable(product, total); err != nil {
			return err
		}

		id, err := newID()
		if err != nil {
			return err
		}

		if _, err := s.cartRepo.WithDB(db).AddCartItem(ctx, model.CartItem{
			ID:        id,
			CartID:    cartID,
			ProductID: productID,
			Amount:    amount,
			CreatedAt: s.now(),
		}); err != nil {
			return fmt.Errorf("cart repository add cart item: %w", err)
		}

		cart.UpdatedAt = s.now()
		if err := s.cartRepo.WithDB(db).UpdateCart(ctx, cart); err != nil {
			return fmt.Errorf("cart repository update cart: %w", err)
		}

		return nil
	}); err != nil {
		return CartView{}, fmt.Errorf("db with tx: %w", err)
	}

	return s.reload(ctx, cartID)
}

func (s *cartService) SetItemAmount(ctx context.Context, cartID, productID uuid.UUID, amount int) (CartView, error) {
	if amount <= 0 {
		return s.RemoveItem(ctx, cartID, productID)
	}

	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}

	var item *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			item = &cart.Items[i]
		}
	}
	if item == nil {
		return CartView{}, apperr.CartItemNotFoundErr
	}

	if err := checkAvailable(item.Product, amount); err != nil {
		return CartView{}, err
	}

	if err := s.cartRepo.SetCartItemAmount(ctx, cartID, productID, amount); err != nil {
		return CartView{}, notFound(fmt.Errorf("cart repository set cart item amount: %w", err), apperr.CartItemNotFoundErr)
	}

	return s.reload(ctx, cartID)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (CartView, error) {
	if err := s.cartRepo.DeleteCartItem(ctx, cartID, productID); err != nil {
		return CartView{}, notFound(fmt.Errorf("cart repository delete cart item: %w", err), apperr.CartItemNotFoundErr)
	}

	return s.reload(ctx, cartID)
}

func (s *cartService) SelectShippingMethod(ctx context.Context, cartID, methodID uuid.UUID) (CartView, error) {
	return s.selectMethod(ctx, cartID, func(cart *model.Cart, ev pricing.Evaluation) error {
		for _, m := range ev.ShippingMethods {
			if m.ID == methodID {
				cart.SelectedShippingMethodID = &methodID
				return nil
			}
		}
		return apperr.MethodNotValidErr
	})
}

func (s *cartService) SelectPaymentMethod(ctx context.Context, cartID, methodID uuid.UUID) (CartView, error) {
	return s.selectMethod(ctx, cartID, func(cart *model.Cart, ev pricing.Evaluation) error {
		for _, m := range ev.PaymentMethods {
			if m.ID == methodID {
				cart.SelectedPaymentMethodID = &methodID
				return nil
			}
		}
		return apperr.MethodNotValidErr
	})
}

// selectMethod checks a selection against the methods valid for the cart
// right now and stores it.
func (s *cartService) selectMethod(ctx context.Context, cartID uuid.UUID, apply func(*model.Cart, pricing.Evaluation) error) (CartView, error) {
	v, err := s.reload(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}

	cart := v.Cart
	if err := apply(&cart, v.Evaluation); err != nil {
		return CartView{}, err
	}

	return s.update(ctx, cart)
}

func (s *cartService) SetCountry(ctx context.Context, cartID uuid.UUID, country string) (CartView, error) {
	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}

	cart.Country = country
	return s.update(ctx, cart)
}

func (s *cartService) update(ctx context.Context, cart model.Cart) (CartView, error) {
	cart.UpdatedAt = s.now()
	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return CartView{}, notFound(fmt.Errorf("cart repository update cart: %w", err), apperr.CartNotFoundErr)
	}

	return s.view(ctx, cart)
}
