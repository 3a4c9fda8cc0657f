package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
	"github.com/tuanvumaihuynh/lfs/pkg/zerror"
)

type ShippingMethodParams struct {
	Name         string
	Description  string
	Note         string
	Priority     int
	Active       bool
	TaxID        *uuid.UUID
	Price        decimal.Decimal
	DeliveryTime *model.DeliveryTime
	Criteria     []model.Criterion
}

type PaymentMethodParams struct {
	Name        string
	Description string
	Note        string
	Priority    int
	Active      bool
	TaxID       *uuid.UUID
	Price       decimal.Decimal
	Kind        model.PaymentMethodKind
	Criteria    []model.Criterion
}

type MethodPriceParams struct {
	Price    decimal.Decimal
	Priority int
	Active   bool
	Criteria []model.Criterion
}

type MethodService interface {
	ListShippingMethods(ctx context.Context) ([]model.ShippingMethod, error)
	GetShippingMethod(ctx context.Context, id uuid.UUID) (model.ShippingMethod, error)
	CreateShippingMethod(ctx context.Context, params ShippingMethodParams) (model.ShippingMethod, error)
	UpdateShippingMethod(ctx context.Context, id uuid.UUID, params ShippingMethodParams) (model.ShippingMethod, error)
	DeleteShippingMethod(ctx context.Context, id uuid.UUID) error

	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id uuid.UUID) (model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, params PaymentMethodParams) (model.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id uuid.UUID, params PaymentMethodParams) (model.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id uuid.UUID) error

	CreateMethodPrice(ctx context.Context, kind model.MethodKind, methodID uuid.UUID, params MethodPriceParams) (model.MethodPrice, error)
	UpdateMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID, params MethodPriceParams) (model.MethodPrice, error)
	DeleteMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) error
}

type methodService struct {
	db            db.DB
	logger        *slog.Logger
	now           Clock
	methodRepo    repository.MethodRepository
	criterionRepo repository.CriterionRepository
}

func NewMethodService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	methodRepo repository.MethodRepository,
	criterionRepo repository.CriterionRepository,
) MethodService {
	return &methodService{
		db:            db,
		logger:        logger.With(slog.String("service", "method")),
		now:           now,
		methodRepo:    methodRepo,
		criterionRepo: criterionRepo,
	}
}

// prepareCriteria validates operator and kind of each criterion and assigns
// fresh ids, since criteria are always replaced as a whole.
func prepareCriteria(criteria []model.Criterion) ([]model.Criterion, error) {
	prepared := make([]model.Criterion, 0, len(criteria))
	for _, c := range criteria {
		if err := c.Validate(); err != nil {
			return nil, apperr.CriterionInvalidErr.WrapParent(err)
		}
		id, err := newID()
		if err != nil {
			return nil, err
		}
		c.ID = id
		prepared = append(prepared, c)
	}

	return prepared, nil
}

func (s *methodService) ListShippingMethods(ctx context.Context) ([]model.ShippingMethod, error) {
	methods, err := s.methodRepo.ListShippingMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("method repository list shipping methods: %w", err)
	}

	return methods, nil
}

func (s *methodService) GetShippingMethod(ctx context.Context, id uuid.UUID) (model.ShippingMethod, error) {
	method, err := s.methodRepo.GetShippingMethod(ctx, id)
	if err != nil {
		return model.ShippingMethod{}, notFound(fmt.Errorf("method repository get shipping method: %w", err), apperr.ShippingMethodNotFoundErr)
	}

	return method, nil
}

func (s *methodService) CreateShippingMethod(ctx context.Context, params ShippingMethodParams) (model.ShippingMethod, error) {
	id, err := newID()
	if err != nil {
		return model.ShippingMethod{}, err
	}

	now := s.now()
	method := model.ShippingMethod{ID: id, CreatedAt: now}

	return s.saveShippingMethod(ctx, method, params, true)
}

func (s *methodService) UpdateShippingMethod(ctx context.Context, id uuid.UUID, params ShippingMethodParams) (model.ShippingMethod, error) {
	method, err := s.GetShippingMethod(ctx, id)
	if err != nil {
		return model.ShippingMethod{}, err
	}

	return s.saveShippingMethod(ctx, method, params, false)
}

func (s *methodService) saveShippingMethod(ctx context.Context, method model.ShippingMethod, params ShippingMethodParams, create bool) (model.ShippingMethod, error) {
	criteria, err := prepareCriteria(params.Criteria)
	if err != nil {
		return model.ShippingMethod{}, err
	}

	method.Name = params.Name
	method.Description = params.Description
	method.Note = params.Note
	method.Priority = params.Priority
	method.Active = params.Active
	method.TaxID = params.TaxID
	method.Price = params.Price
	method.DeliveryTime = params.DeliveryTime
	method.UpdatedAt = s.now()

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		methodRepo := s.methodRepo.WithDB(db)

		if create {
			if err := methodRepo.CreateShippingMethod(ctx, method); err != nil {
				return foreignKey(fmt.Errorf("method repository create shipping method: %w", err), apperr.TaxNotFoundErr)
			}
		} else if err := methodRepo.UpdateShippingMethod(ctx, method); err != nil {
			return foreignKey(notFound(fmt.Errorf("method repository update shipping method: %w", err), apperr.ShippingMethodNotFoundErr), apperr.TaxNotFoundErr)
		}

		if err := s.criterionRepo.WithDB(db).ReplaceCriteria(ctx, model.CriterionOwnerShippingMethod, method.ID, criteria); err != nil {
			return fmt.Errorf("criterion repository replace criteria: %w", err)
		}

		saved, err := methodRepo.GetShippingMethod(ctx, method.ID)
		if err != nil {
			return fmt.Errorf("method repository get shipping method: %w", err)
		}
		method = saved

		return nil
	}); err != nil {
		return model.ShippingMethod{}, fmt.Errorf("db with tx: %w", err)
	}

	return method, nil
}

func (s *methodService) DeleteShippingMethod(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.methodRepo.WithDB(db).DeleteShippingMethod(ctx, id); err != nil {
			return notFound(fmt.Errorf("method repository delete shipping method: %w", err), apperr.ShippingMethodNotFoundErr)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *methodService) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	methods, err := s.methodRepo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("method repository list payment methods: %w", err)
	}

	return methods, nil
}

func (s *methodService) GetPaymentMethod(ctx context.Context, id uuid.UUID) (model.PaymentMethod, error) {
	method, err := s.methodRepo.GetPaymentMethod(ctx, id)
	if err != nil {
		return model.PaymentMethod{}, notFound(fmt.Errorf("method repository get payment method: %w", err), apperr.PaymentMethodNotFoundErr)
	}

	return method, nil
}

func (s *methodService) CreatePaymentMethod(ctx context.Context, params PaymentMethodParams) (model.PaymentMethod, error) {
	id, err := newID()
	if err != nil {
		return model.PaymentMethod{}, err
	}

	method := model.PaymentMethod{ID: id, CreatedAt: s.now()}

	return s.savePaymentMethod(ctx, method, params, true)
}

func (s *methodService) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, params PaymentMethodParams) (model.PaymentMethod, error) {
	method, err := s.GetPaymentMethod(ctx, id)
	if err != nil {
		return model.PaymentMethod{}, err
	}

	return s.savePaymentMethod(ctx, method, params, false)
}

func (s *methodService) savePaymentMethod(ctx context.Context, method model.PaymentMethod, params PaymentMethodParams, create bool) (model.PaymentMethod, error) {
	criteria, err := prepareCriteria(params.Criteria)
	if err != nil {
		return model.PaymentMethod{}, err
	}

	method.Name = params.Name
	method.Description = params.Description
	method.Note = params.Note
	method.Priority = params.Priority
	method.Active = params.Active
	method.TaxID = params.TaxID
	method.Price = params.Price
	method.Kind = params.Kind
	method.UpdatedAt = s.now()

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		methodRepo := s.methodRepo.WithDB(db)

		if create {
			if err := methodRepo.CreatePaymentMethod(ctx, method); err != nil {
				return foreignKey(fmt.Errorf("method repository create payment method: %w", err), apperr.TaxNotFoundErr)
			}
		} else if err := methodRepo.UpdatePaymentMethod(ctx, method); err != nil {
			return foreignKey(notFound(fmt.Errorf("method repository update payment method: %w", err), apperr.PaymentMethodNotFoundErr), apperr.TaxNotFoundErr)
		}

		if err := s.criterionRepo.WithDB(db).ReplaceCriteria(ctx, model.CriterionOwnerPaymentMethod, method.ID, criteria); err != nil {
			return fmt.Errorf("criterion repository replace criteria: %w", err)
		}

		saved, err := methodRepo.GetPaymentMethod(ctx, method.ID)
		if err != nil {
			return fmt.Errorf("method repository get payment method: %w", err)
		}
		method = saved

		return nil
	}); err != nil {
		return model.PaymentMethod{}, fmt.Errorf("db with tx: %w", err)
	}

	return method, nil
}

func (s *methodService) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.methodRepo.WithDB(db).DeletePaymentMethod(ctx, id); err != nil {
			return notFound(fmt.Errorf("method repository delete payment method: %w", err), apperr.PaymentMethodNotFoundErr)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func priceOwnerType(kind model.MethodKind) model.CriterionOwnerType {
	if kind == model.MethodKindPayment {
		return model.CriterionOwnerPaymentMethodPrice
	}
	return model.CriterionOwnerShippingMethodPrice
}

func methodNotFound(kind model.MethodKind) zerror.ZError {
	if kind == model.MethodKindPayment {
		return apperr.PaymentMethodNotFoundErr
	}
	return apperr.ShippingMethodNotFoundErr
}

func (s *methodService) CreateMethodPrice(ctx context.Context, kind model.MethodKind, methodID uuid.UUID, params MethodPriceParams) (model.MethodPrice, error) {
	id, err := newID()
	if err != nil {
		return model.MethodPrice{}, err
	}

	price := model.MethodPrice{ID: id, MethodID: methodID}

	return s.saveMethodPrice(ctx, kind, price, params, true)
}

func (s *methodService) UpdateMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID, params MethodPriceParams) (model.MethodPrice, error) {
	price, err := s.methodRepo.GetMethodPrice(ctx, kind, id)
	if err != nil {
		return model.MethodPrice{}, notFound(fmt.Errorf("method repository get method price: %w", err), apperr.MethodPriceNotFoundErr)
	}

	return s.saveMethodPrice(ctx, kind, price, params, false)
}

func (s *methodService) saveMethodPrice(ctx context.Context, kind model.MethodKind, price model.MethodPrice, params MethodPriceParams, create bool) (model.MethodPrice, error) {
	if err := kind.Validate(); err != nil {
		return model.MethodPrice{}, apperr.ValidationErr.WrapParent(err)
	}

	criteria, err := prepareCriteria(params.Criteria)
	if err != nil {
		return model.MethodPrice{}, err
	}

	price.Price = params.Price
	price.Priority = params.Priority
	price.Active = params.Active

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		methodRepo := s.methodRepo.WithDB(db)

		if create {
			if err := methodRepo.CreateMethodPrice(ctx, kind, price); err != nil {
				return foreignKey(fmt.Errorf("method repository create method price: %w", err), methodNotFound(kind))
			}
		} else if err := methodRepo.UpdateMethodPrice(ctx, kind, price); err != nil {
			return notFound(fmt.Errorf("method repository update method price: %w", err), apperr.MethodPriceNotFoundErr)
		}

		if err := s.criterionRepo.WithDB(db).ReplaceCriteria(ctx, priceOwnerType(kind), price.ID, criteria); err != nil {
			return fmt.Errorf("criterion repository replace criteria: %w", err)
		}

		saved, err := methodRepo.GetMethodPrice(ctx, kind, price.ID)
		if err != nil {
			return fmt.Errorf("method repository get method price: %w", err)
		}
		price = saved

		return nil
	}); err != nil {
		return model.MethodPrice{}, fmt.Errorf("db with tx: %w", err)
	}

	return price, nil
}

func (s *methodService) DeleteMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) error {
	if err := kind.Validate(); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.methodRepo.WithDB(db).DeleteMethodPrice(ctx, kind, id); err != nil {
			return notFound(fmt.Errorf("method repository delete method price: %w", err), apperr.MethodPriceNotFoundErr)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}
