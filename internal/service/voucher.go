package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

// maxNumberAttempts bounds the random draws per requested voucher number.
const maxNumberAttempts = 100

type VoucherGroupParams struct {
	Name     string
	Position int
}

type GenerateVouchersParams struct {
	GroupID       uuid.UUID
	Amount        int
	Kind          model.ValueType
	Value         decimal.Decimal
	TaxID         *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	EffectiveFrom decimal.Decimal
	Limit         int
	// Options override the default number format when set.
	Options *model.VoucherOptions
}

type VoucherService interface {
	ListVoucherGroups(ctx context.Context) ([]model.VoucherGroup, error)
	GetVoucherGroup(ctx context.Context, id uuid.UUID) (model.VoucherGroup, error)
	CreateVoucherGroup(ctx context.Context, params VoucherGroupParams) (model.VoucherGroup, error)
	UpdateVoucherGroup(ctx context.Context, id uuid.UUID, params VoucherGroupParams) (model.VoucherGroup, error)
	DeleteVoucherGroup(ctx context.Context, id uuid.UUID) error

	ListVouchers(ctx context.Context, groupID uuid.UUID) ([]model.Voucher, error)
	GenerateVouchers(ctx context.Context, params GenerateVouchersParams) ([]model.Voucher, error)
	DeleteVouchers(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type voucherService struct {
	db          db.DB
	logger      *slog.Logger
	now         Clock
	voucherRepo repository.VoucherRepository
}

func NewVoucherService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	voucherRepo repository.VoucherRepository,
) VoucherService {
	return &voucherService{
		db:          db,
		logger:      logger.With(slog.String("service", "voucher")),
		now:         now,
		voucherRepo: voucherRepo,
	}
}

func (s *voucherService) ListVoucherGroups(ctx context.Context) ([]model.VoucherGroup, error) {
	groups, err := s.voucherRepo.ListVoucherGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("voucher repository list voucher groups: %w", err)
	}

	return groups, nil
}

func (s *voucherService) GetVoucherGroup(ctx context.Context, id uuid.UUID) (model.VoucherGroup, error) {
	group, err := s.voucherRepo.GetVoucherGroup(ctx, id)
	if err != nil {
		return model.VoucherGroup{}, notFound(fmt.Errorf("voucher repository get voucher group: %w", err), apperr.VoucherGroupNotFoundErr)
	}

	return group, nil
}

func (s *voucherService) CreateVoucherGroup(ctx context.Context, params VoucherGroupParams) (model.VoucherGroup, error) {
	id, err := newID()
	if err != nil {
		return model.VoucherGroup{}, err
	}

	group := model.VoucherGroup{
		ID:        id,
		Name:      params.Name,
		Position:  params.Position,
		CreatedAt: s.now(),
	}

	if err := s.voucherRepo.CreateVoucherGroup(ctx, group); err != nil {
		return model.VoucherGroup{}, fmt.Errorf("voucher repository create voucher group: %w", err)
	}

	return group, nil
}

func (s *voucherService) UpdateVoucherGroup(ctx context.Context, id uuid.UUID, params VoucherGroupParams) (model.VoucherGroup, error) {
	group, err := s.GetVoucherGroup(ctx, id)
	if err != nil {
		return model.VoucherGroup{}, err
	}

	group.Name = params.Name
	group.Position = params.Position

	if err := s.voucherRepo.UpdateVoucherGroup(ctx, group); err != nil {
		return model.VoucherGroup{}, notFound(fmt.Errorf("voucher repository update voucher group: %w", err), apperr.VoucherGroupNotFoundErr)
	}

	return group, nil
}

func (s *voucherService) DeleteVoucherGroup(ctx context.Context, id uuid.UUID) error {
	if err := s.voucherRepo.DeleteVoucherGroup(ctx, id); err != nil {
		return notFound(fmt.Errorf("voucher repository delete voucher group: %w", err), apperr.VoucherGroupNotFoundErr)
	}

	return nil
}

func (s *voucherService) ListVouchers(ctx context.Context, groupID uuid.UUID) ([]model.Voucher, error) {
	vouchers, err := s.voucherRepo.ListVouchers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("voucher repository list vouchers: %w", err)
	}

	return vouchers, nil
}

// GenerateVouchers creates params.Amount vouchers with numbers unique across
// all existing vouchers.
func (s *voucherService) GenerateVouchers(ctx context.Context, params GenerateVouchersParams) ([]model.Voucher, error) {
	opts := model.DefaultVoucherOptions
	if params.Options != nil {
		opts = *params.Options
	}

	var vouchers []model.Voucher

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		voucherRepo := s.voucherRepo.WithDB(db)

		if _, err := voucherRepo.GetVoucherGroup(ctx, params.GroupID); err != nil {
			return notFound(fmt.Errorf("voucher repository get voucher group: %w", err), apperr.VoucherGroupNotFoundErr)
		}

		taken, err := voucherRepo.ListVoucherNumbers(ctx)
		if err != nil {
			return fmt.Errorf("voucher repository list voucher numbers: %w", err)
		}

		numbers, err := voucherNumbers(opts, params.Amount, taken)
		if err != nil {
			return err
		}

		now := s.now()
		vouchers = make([]model.Voucher, 0, len(numbers))
		for _, number := range numbers {
			id, err := newID()
			if err != nil {
				return err
			}
			vouchers = append(vouchers, model.Voucher{
				ID:            id,
				Number:        number,
				GroupID:       params.GroupID,
				Kind:          params.Kind,
				Value:         params.Value,
				TaxID:         params.TaxID,
				StartDate:     params.StartDate,
				EndDate:       params.EndDate,
				EffectiveFrom: params.EffectiveFrom,
				Active:        true,
				Limit:         params.Limit,
				CreatedAt:     now,
			})
		}

		if _, err := voucherRepo.CreateVouchers(ctx, vouchers); err != nil {
			return foreignKey(fmt.Errorf("voucher repository create vouchers: %w", err), apperr.TaxNotFoundErr)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("db with tx: %w", err)
	}

	s.logger.InfoContext(ctx, "vouchers generated",
		slog.String("group_id", params.GroupID.String()),
		slog.Int("amount", len(vouchers)))

	return vouchers, nil
}

// voucherNumbers draws amount distinct numbers that are not in taken.
func voucherNumbers(opts model.VoucherOptions, amount int, taken map[string]struct{}) ([]string, error) {
	if opts.Length <= 0 || opts.Letters == "" {
		return nil, apperr.VoucherNumbersErr
	}

	letters := []rune(opts.Letters)
	size := big.NewInt(int64(len(letters)))

	numbers := make([]string, 0, amount)
	seen := make(map[string]struct{}, amount)
	for attempts := 0; len(numbers) < amount; attempts++ {
		if attempts >= amount*maxNumberAttempts {
			return nil, apperr.VoucherNumbersErr
		}

		body := make([]rune, opts.Length)
		for i := range body {
			n, err := rand.Int(rand.Reader, size)
			if err != nil {
				return nil, fmt.Errorf("draw voucher letter: %w", err)
			}
			body[i] = letters[n.Int64()]
		}

		number := opts.Prefix + string(body) + opts.Suffix
		if _, ok := taken[number]; ok {
			continue
		}
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}
		numbers = append(numbers, number)
	}

	return numbers, nil
}

func (s *voucherService) DeleteVouchers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	n, err := s.voucherRepo.DeleteVouchers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("voucher repository delete vouchers: %w", err)
	}

	return n, nil
}
