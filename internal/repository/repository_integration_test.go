//go:build integration

package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

var testDB *db.Client

func TestMain(m *testing.M) {
	code, err := run(m)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run(m *testing.M) (int, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("lfs_test"),
		tcpostgres.WithUsername("lfs"),
		tcpostgres.WithPassword("lfs"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return 0, fmt.Errorf("start postgres container: %w", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return 0, fmt.Errorf("connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return 0, fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(pool); err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}

	testDB = db.NewClient(pool)
	return m.Run(), nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func createTax(t *testing.T, rate int64) model.Tax {
	t.Helper()

	tax := model.Tax{
		ID:        uuid.New(),
		Name:      fmt.Sprintf("tax %d", rate),
		Rate:      decimal.NewFromInt(rate),
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	require.NoError(t, repository.NewTaxRepository(testDB).CreateTax(context.Background(), tax))
	return tax
}

func TestTaxRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaxRepository(testDB)

	tax := createTax(t, 19)

	got, err := repo.GetTax(ctx, tax.ID)
	require.NoError(t, err)
	assert.Equal(t, tax.Name, got.Name)
	assert.True(t, tax.Rate.Equal(got.Rate))

	tax.Rate = decimal.RequireFromString("7.5")
	require.NoError(t, repo.UpdateTax(ctx, tax))
	got, err = repo.GetTax(ctx, tax.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.5", got.Rate.String())

	require.NoError(t, repo.DeleteTax(ctx, tax.ID))
	_, err = repo.GetTax(ctx, tax.ID)
	assert.True(t, db.IsNotFound(err))
	assert.True(t, db.IsNotFound(repo.DeleteTax(ctx, tax.ID)))
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCategoryRepository(testDB)

	parent := model.Category{
		ID:        uuid.New(),
		Name:      "Shoes",
		Slug:      "shoes-" + uuid.NewString()[:8],
		Position:  10,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	require.NoError(t, repo.CreateCategory(ctx, parent))

	child := parent
	child.ID = uuid.New()
	child.ParentID = &parent.ID
	child.Name = "Boots"
	child.Slug = "boots-" + uuid.NewString()[:8]
	child.Level = 2
	require.NoError(t, repo.CreateCategory(ctx, child))

	got, err := repo.GetCategoryBySlug(ctx, child.Slug)
	require.NoError(t, err)
	assert.Equal(t, child.ID, got.ID)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)

	dup := parent
	dup.ID = uuid.New()
	err = repo.CreateCategory(ctx, dup)
	assert.True(t, db.IsUniqueViolation(err))

	_, err = repo.GetCategoryBySlug(ctx, "missing")
	assert.True(t, db.IsNotFound(err))
}

func TestVoucherRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewVoucherRepository(testDB)
	tax := createTax(t, 19)

	group := model.VoucherGroup{ID: uuid.New(), Name: "Spring", Position: 1, CreatedAt: now()}
	require.NoError(t, repo.CreateVoucherGroup(ctx, group))

	vouchers := make([]model.Voucher, 3)
	for i := range vouchers {
		vouchers[i] = model.Voucher{
			ID:            uuid.New(),
			Number:        fmt.Sprintf("SPRING-%s-%d", uuid.NewString()[:6], i),
			GroupID:       group.ID,
			Kind:          model.ValueTypeAbsolute,
			Value:         decimal.NewFromInt(5),
			TaxID:         &tax.ID,
			EffectiveFrom: decimal.Zero,
			Active:        true,
			Limit:         1,
			CreatedAt:     now(),
		}
	}
	n, err := repo.CreateVouchers(ctx, vouchers)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	numbers, err := repo.ListVoucherNumbers(ctx)
	require.NoError(t, err)
	assert.Contains(t, numbers, vouchers[0].Number)

	usedAt := now()
	require.NoError(t, repo.MarkVoucherUsed(ctx, vouchers[0].ID, usedAt))

	got, err := repo.GetVoucherByNumber(ctx, vouchers[0].Number, false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedAmount)
	require.NotNil(t, got.LastUsedDate)
	assert.True(t, usedAt.Equal(*got.LastUsedDate))
	assert.True(t, got.TaxRate.Equal(decimal.NewFromInt(19)))

	err = repo.MarkVoucherUsed(ctx, vouchers[0].ID, now())
	assert.True(t, db.IsNotFound(err), "limit of one is reached")
	got, err = repo.GetVoucherByNumber(ctx, vouchers[0].Number, false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedAmount)

	deleted, err := repo.DeleteVouchers(ctx, []uuid.UUID{vouchers[1].ID, vouchers[2].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	listed, err := repo.ListVouchers(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestOutboxMsgRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOutboxMsgRepository(testDB)

	topic := "test." + uuid.NewString()
	key := "order-1"
	payload, err := json.Marshal(map[string]string{"number": "1001"})
	require.NoError(t, err)

	require.NoError(t, repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      map[string]string{"correlation_id": "abc"},
		Payload:      payload,
		PartitionKey: &key,
	}))

	var msg repository.ListUnprocessedOutboxMsgsResult
	require.NoError(t, testDB.WithTx(ctx, func(tx db.DB) error {
		msgs, err := repo.WithDB(tx).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 100})
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if m.Topic == topic {
				msg = m
			}
		}
		if msg.ID == uuid.Nil {
			return errors.New("message not listed")
		}
		return repo.WithDB(tx).BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
			Items: []repository.BulkUpdateOutboxMsgsItem{{ID: msg.ID}},
		})
	}))

	assert.Equal(t, "abc", msg.Headers["correlation_id"])
	assert.JSONEq(t, string(payload), string(msg.Payload))
	require.NotNil(t, msg.PartitionKey)
	assert.Equal(t, key, *msg.PartitionKey)

	msgs, err := repo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 100})
	require.NoError(t, err)
	for _, m := range msgs {
		assert.NotEqual(t, msg.ID, m.ID)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaxRepository(testDB)
	id := uuid.New()
	errBoom := errors.New("boom")

	err := testDB.WithTx(ctx, func(tx db.DB) error {
		if err := repo.WithDB(tx).CreateTax(ctx, model.Tax{
			ID: id, Name: "rolled back", Rate: decimal.NewFromInt(1), CreatedAt: now(), UpdatedAt: now(),
		}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = repo.GetTax(ctx, id)
	assert.True(t, db.IsNotFound(err))
}

func TestOutboxMsgRepositoryRetriesFailedMessages(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOutboxMsgRepository(testDB)
	topic := "retry." + uuid.NewString()

	require.NoError(t, repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:   topic,
		Payload: json.RawMessage(`{}`),
	}))

	find := func() (repository.ListUnprocessedOutboxMsgsResult, bool) {
		msgs, err := repo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 1000})
		require.NoError(t, err)
		for _, m := range msgs {
			if m.Topic == topic {
				return m, true
			}
		}
		return repository.ListUnprocessedOutboxMsgsResult{}, false
	}

	msg, ok := find()
	require.True(t, ok)
	failure := "broker unavailable"

	require.NoError(t, repo.BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
		Items:       []repository.BulkUpdateOutboxMsgsItem{{ID: msg.ID, Error: &failure}},
		MaxAttempts: 2,
	}))
	msg, ok = find()
	require.True(t, ok, "message must stay pending below max attempts")
	assert.EqualValues(t, 1, msg.Attempts)

	require.NoError(t, repo.BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
		Items:       []repository.BulkUpdateOutboxMsgsItem{{ID: msg.ID, Error: &failure}},
		MaxAttempts: 2,
	}))
	_, ok = find()
	assert.False(t, ok, "message must be given up at max attempts")
}

func TestProductRepositoryDecreaseStock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepository(testDB)

	product := model.Product{
		ID:                uuid.New(),
		SubType:           model.ProductSubTypeStandard,
		Name:              "Desk lamp",
		Slug:              "desk-lamp-" + uuid.NewString()[:8],
		Price:             decimal.RequireFromString("24.90"),
		Active:            true,
		ManageStockAmount: true,
		StockAmount:       3,
		CreatedAt:         now(),
		UpdatedAt:         now(),
	}
	require.NoError(t, repo.CreateProduct(ctx, product))

	require.NoError(t, repo.DecreaseStock(ctx, product.ID, 2))
	got, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StockAmount)

	err = repo.DecreaseStock(ctx, product.ID, 2)
	assert.True(t, db.IsNotFound(err))
	got, err = repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StockAmount)
}

func TestCriterionRepositoryReplacesCriteria(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCriterionRepository(testDB)
	owner := uuid.New()

	criterion := func(kind model.CriterionKind, op model.Operator, position int, value string) model.Criterion {
		return model.Criterion{
			ID:       uuid.New(),
			Kind:     kind,
			Operator: op,
			Position: position,
			Value:    decimal.RequireFromString(value),
		}
	}

	require.NoError(t, repo.ReplaceCriteria(ctx, model.CriterionOwnerShippingMethod, owner, []model.Criterion{
		criterion(model.CriterionKindWeight, model.OperatorLessThan, 20, "30"),
		criterion(model.CriterionKindCartPrice, model.OperatorGreaterThan, 10, "50"),
	}))

	byOwner, err := repo.ListCriteria(ctx, model.CriterionOwnerShippingMethod, []uuid.UUID{owner})
	require.NoError(t, err)
	require.Len(t, byOwner[owner], 2)
	assert.Equal(t, model.CriterionKindCartPrice, byOwner[owner][0].Kind)

	require.NoError(t, repo.ReplaceCriteria(ctx, model.CriterionOwnerShippingMethod, owner, []model.Criterion{
		criterion(model.CriterionKindHeight, model.OperatorLessThanEqual, 0, "1.5"),
	}))

	byOwner, err = repo.ListCriteria(ctx, model.CriterionOwnerShippingMethod, []uuid.UUID{owner})
	require.NoError(t, err)
	require.Len(t, byOwner[owner], 1)
	assert.Equal(t, model.CriterionKindHeight, byOwner[owner][0].Kind)
	assert.Equal(t, "1.5", byOwner[owner][0].Value.String())

	require.NoError(t, repo.ReplaceCriteria(ctx, model.CriterionOwnerShippingMethod, owner, nil))
	byOwner, err = repo.ListCriteria(ctx, model.CriterionOwnerShippingMethod, []uuid.UUID{owner})
	require.NoError(t, err)
	assert.Empty(t, byOwner[owner])
}

func TestProductRepositoryListCategoryPricesUsesVariants(t *testing.T) {
	ctx := context.Background()
	products := repository.NewProductRepository(testDB)
	categories := repository.NewCategoryRepository(testDB)

	category := model.Category{
		ID:        uuid.New(),
		Name:      "Lights",
		Slug:      "lights-" + uuid.NewString()[:8],
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	require.NoError(t, categories.CreateCategory(ctx, category))

	product := func(subType model.ProductSubType, price string, parentID *uuid.UUID, active bool) model.Product {
		p := model.Product{
			ID:        uuid.New(),
			ParentID:  parentID,
			SubType:   subType,
			Name:      "Lamp",
			Slug:      "lamp-" + uuid.NewString()[:8],
			Price:     decimal.RequireFromString(price),
			Active:    active,
			CreatedAt: now(),
			UpdatedAt: now(),
		}
		require.NoError(t, products.CreateProduct(ctx, p))
		return p
	}

	standard := product(model.ProductSubTypeStandard, "15", nil, true)
	parent := product(model.ProductSubTypeWithVariants, "0", nil, true)
	product(model.ProductSubTypeVariant, "30", &parent.ID, true)
	product(model.ProductSubTypeVariant, "45", &parent.ID, true)
	product(model.ProductSubTypeVariant, "99", &parent.ID, false)

	require.NoError(t, products.SetProductCategories(ctx, standard.ID, []uuid.UUID{category.ID}))
	require.NoError(t, products.SetProductCategories(ctx, parent.ID, []uuid.UUID{category.ID}))

	prices, err := products.ListCategoryPrices(ctx, []uuid.UUID{category.ID})
	require.NoError(t, err)

	got := make([]string, len(prices))
	for i, p := range prices {
		got[i] = p.String()
	}
	assert.ElementsMatch(t, []string{"15", "30", "45"}, got)
}
