package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type VoucherRepository interface {
	WithDB(db db.DB) VoucherRepository

	ListVoucherGroups(ctx context.Context) ([]model.VoucherGroup, error)
	GetVoucherGroup(ctx context.Context, id uuid.UUID) (model.VoucherGroup, error)
	CreateVoucherGroup(ctx context.Context, group model.VoucherGroup) error
	UpdateVoucherGroup(ctx context.Context, group model.VoucherGroup) error
	DeleteVoucherGroup(ctx context.Context, id uuid.UUID) error

	ListVouchers(ctx context.Context, groupID uuid.UUID) ([]model.Voucher, error)
	ListVoucherNumbers(ctx context.Context) (map[string]struct{}, error)
	// GetVoucherByNumber locks the row for update when forUpdate is set.
	GetVoucherByNumber(ctx context.Context, number string, forUpdate bool) (model.Voucher, error)
	CreateVouchers(ctx context.Context, vouchers []model.Voucher) (int64, error)
	DeleteVouchers(ctx context.Context, ids []uuid.UUID) (int64, error)
	MarkVoucherUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

type voucherRepository struct {
	db db.DB
}

func NewVoucherRepository(db db.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r voucherRepository) WithDB(db db.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r voucherRepository) ListVoucherGroups(ctx context.Context) ([]model.VoucherGroup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, position, created_at FROM voucher_groups ORDER BY position, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list voucher groups: %w", err)
	}

	groups, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.VoucherGroup])
	if err != nil {
		return nil, fmt.Errorf("collect voucher groups: %w", err)
	}
	return groups, nil
}

func (r voucherRepository) GetVoucherGroup(ctx context.Context, id uuid.UUID) (model.VoucherGroup, error) {
	var g model.VoucherGroup
	if err := r.db.QueryRow(ctx, `
		SELECT id, name, position, created_at FROM voucher_groups WHERE id = @id
	`, pgx.NamedArgs{"id": id}).Scan(&g.ID, &g.Name, &g.Position, &g.CreatedAt); err != nil {
		return model.VoucherGroup{}, fmt.Errorf("get voucher group: %w", err)
	}
	return g, nil
}

func (r voucherRepository) CreateVoucherGroup(ctx context.Context, group model.VoucherGroup) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO voucher_groups (id, name, position, created_at)
		VALUES (@id, @name, @position, @created_at)
	`, pgx.NamedArgs{
		"id":         group.ID,
		"name":       group.Name,
		"position":   group.Position,
		"created_at": group.CreatedAt,
	}); err != nil {
		return fmt.Errorf("create voucher group: %w", err)
	}
	return nil
}

func (r voucherRepository) UpdateVoucherGroup(ctx context.Context, group model.VoucherGroup) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE voucher_groups SET name = @name, position = @position WHERE id = @id
	`, pgx.NamedArgs{
		"id":       group.ID,
		"name":     group.Name,
		"position": group.Position,
	})
	if err != nil {
		return fmt.Errorf("update voucher group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update voucher group: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r voucherRepository) DeleteVoucherGroup(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM voucher_groups WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete voucher group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete voucher group: %w", pgx.ErrNoRows)
	}
	return nil
}

const voucherSelect = `
	SELECT
		v.id, v.number, v.group_id, v.kind, v.value, v.tax_id, COALESCE(t.rate, 0),
		v.start_date, v.end_date, v.effective_from, v.active, v.used_amount, v.last_used_date,
		v.limit_amount, v.created_at
	FROM vouchers v
	LEFT JOIN taxes t ON t.id = v.tax_id
`

func scanVoucher(row pgx.Row) (model.Voucher, error) {
	var v model.Voucher
	err := row.Scan(
		&v.ID, &v.Number, &v.GroupID, &v.Kind, &v.Value, &v.TaxID, &v.TaxRate,
		&v.StartDate, &v.EndDate, &v.EffectiveFrom, &v.Active, &v.UsedAmount, &v.LastUsedDate,
		&v.Limit, &v.CreatedAt,
	)
	return v, err
}

func (r voucherRepository) ListVouchers(ctx context.Context, groupID uuid.UUID) ([]model.Voucher, error) {
	rows, err := r.db.Query(ctx, voucherSelect+`
		WHERE v.group_id = @group_id
		ORDER BY v.created_at, v.number
	`, pgx.NamedArgs{"group_id": groupID})
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}

	vouchers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Voucher, error) {
		return scanVoucher(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect vouchers: %w", err)
	}
	return vouchers, nil
}

func (r voucherRepository) ListVoucherNumbers(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT number FROM vouchers`)
	if err != nil {
		return nil, fmt.Errorf("list voucher numbers: %w", err)
	}

	numbers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect voucher numbers: %w", err)
	}

	set := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return set, nil
}

func (r voucherRepository) GetVoucherByNumber(ctx context.Context, number string, forUpdate bool) (model.Voucher, error) {
	query := voucherSelect + ` WHERE v.number = @number`
	if forUpdate {
		query += ` FOR UPDATE OF v`
	}

	v, err := scanVoucher(r.db.QueryRow(ctx, query, pgx.NamedArgs{"number": number}))
	if err != nil {
		return model.Voucher{}, fmt.Errorf("get voucher by number: %w", err)
	}
	return v, nil
}

func (r voucherRepository) CreateVouchers(ctx context.Context, vouchers []model.Voucher) (int64, error) {
	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"vouchers"},
		[]string{
			"id", "number", "group_id", "kind", "value", "tax_id", "start_date", "end_date",
			"effective_from", "active", "used_amount", "limit_amount", "created_at",
		},
		pgx.CopyFromSlice(len(vouchers), func(i int) ([]any, error) {
			v := vouchers[i]
			return []any{
				v.ID, v.Number, v.GroupID, string(v.Kind), v.Value, v.TaxID, v.StartDate, v.EndDate,
				v.EffectiveFrom, v.Active, v.UsedAmount, v.Limit, v.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy vouchers: %w", err)
	}
	return n, nil
}

func (r voucherRepository) DeleteVouchers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM vouchers WHERE id = ANY(@ids::uuid[])`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return 0, fmt.Errorf("delete vouchers: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkVoucherUsed counts one more use. It reports pgx.ErrNoRows when the
// voucher is missing or its limit is already reached.
func (r voucherRepository) MarkVoucherUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vouchers SET used_amount = used_amount + 1, last_used_date = @used_at
		WHERE id = @id AND (limit_amount = 0 OR used_amount < limit_amount)
	`, pgx.NamedArgs{
		"id":      id,
		"used_at": usedAt,
	})
	if err != nil {
		return fmt.Errorf("mark voucher used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark voucher used: %w", pgx.ErrNoRows)
	}
	return nil
}
