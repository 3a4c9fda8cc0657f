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
)

type DiscountParams struct {
	Name       string
	Active     bool
	Value      decimal.Decimal
	Type       model.ValueType
	TaxID      *uuid.UUID
	Sku        string
	SumsUp     bool
	ProductIDs []uuid.UUID
	Criteria   []model.Criterion
}

type DiscountService interface {
	ListDiscounts(ctx context.Context) ([]model.Discount, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (model.Discount, error)
	CreateDiscount(ctx context.Context, params DiscountParams) (model.Discount, error)
	UpdateDiscount(ctx context.Context, id uuid.UUID, params DiscountParams) (model.Discount, error)
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
}

type discountService struct {
	db            db.DB
	logger        *slog.Logger
	now           Clock
	discountRepo  repository.DiscountRepository
	criterionRepo repository.CriterionRepository
}

func NewDiscountService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	discountRepo repository.DiscountRepository,
	criterionRepo repository.CriterionRepository,
) DiscountService {
	return &discountService{
		db:            db,
		logger:        logger.With(slog.String("service", "discount")),
		now:           now,
		discountRepo:  discountRepo,
		criterionRepo: criterionRepo,
	}
}

func (s *discountService) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	discounts, err := s.discountRepo.ListDiscounts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("discount repository list discounts: %w", err)
	}

	return discounts, nil
}

func (s *discountService) GetDiscount(ctx context.Context, id uuid.UUID) (model.Discount, error) {
	discount, err := s.discountRepo.GetDiscount(ctx, id)
	if err != nil {
		return model.Discount{}, notFound(fmt.Errorf("discount repository get discount: %w", err), apperr.DiscountNotFoundErr)
	}

	return discount, nil
}

func (s *discountService) CreateDiscount(ctx context.Context, params DiscountParams) (model.Discount, error) {
	id, err := newID()
	if err != nil {
		return model.Discount{}, err
	}

	return s.save(ctx, model.Discount{ID: id, CreatedAt: s.now()}, params, true)
}

func (s *discountService) UpdateDiscount(ctx context.Context, id uuid.UUID, params DiscountParams) (model.Discount, error) {
	discount, err := s.GetDiscount(ctx, id)
	if err != nil {
		return model.Discount{}, err
	}

	return s.save(ctx, discount, params, false)
}

func (s *discountService) save(ctx context.Context, discount model.Discount, params DiscountParams, create bool) (model.Discount, error) {
	criteria, err := prepareCriteria(params.Criteria)
	if err != nil {
		return model.Discount{}, err
	}

	discount.Name = params.Name
	discount.Active = params.Active
	discount.Value = params.Value
	discount.Type = params.Type
	discount.TaxID = params.TaxID
	discount.Sku = params.Sku
	discount.SumsUp = params.SumsUp
	discount.UpdatedAt = s.now()

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		discountRepo := s.discountRepo.WithDB(db)

		if create {
			if err := discountRepo.CreateDiscount(ctx, discount); err != nil {
				return foreignKey(fmt.Errorf("discount repository create discount: %w", err), apperr.TaxNotFoundErr)
			}
		} else if err := discountRepo.UpdateDiscount(ctx, discount); err != nil {
			return foreignKey(notFound(fmt.Errorf("discount repository update discount: %w", err), apperr.DiscountNotFoundErr), apperr.TaxNotFoundErr)
		}

		if err := discountRepo.SetDiscountProducts(ctx, discount.ID, params.ProductIDs); err != nil {
			return foreignKey(fmt.Errorf("discount repository set discount products: %w", err), apperr.ProductNotFoundErr)
		}

		if err := s.criterionRepo.WithDB(db).ReplaceCriteria(ctx, model.CriterionOwnerDiscount, discount.ID, criteria); err != nil {
			return fmt.Errorf("criterion repository replace criteria: %w", err)
		}

		saved, err := discountRepo.GetDiscount(ctx, discount.ID)
		if err != nil {
			return fmt.Errorf("discount repository get discount: %w", err)
		}
		discount = saved

		return nil
	}); err != nil {
		return model.Discount{}, fmt.Errorf("db with tx: %w", err)
	}

	return discount, nil
}

func (s *discountService) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.discountRepo.WithDB(db).DeleteDiscount(ctx, id); err != nil {
			return notFound(fmt.Errorf("discount repository delete discount: %w", err), apperr.DiscountNotFoundErr)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}
