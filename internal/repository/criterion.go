package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type CriterionRepository interface {
	WithDB(db db.DB) CriterionRepository
	ListCriteria(ctx context.Context, ownerType model.CriterionOwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID][]model.Criterion, error)
	// ReplaceCriteria drops all criteria of the owner and stores the given ones.
	ReplaceCriteria(ctx context.Context, ownerType model.CriterionOwnerType, ownerID uuid.UUID, criteria []model.Criterion) error
}

type criterionRepository struct {
	db db.DB
}

func NewCriterionRepository(db db.DB) CriterionRepository {
	return &criterionRepository{db: db}
}

func (r criterionRepository) WithDB(db db.DB) CriterionRepository {
	return &criterionRepository{db: db}
}

func (r criterionRepository) ListCriteria(ctx context.Context, ownerType model.CriterionOwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID][]model.Criterion, error) {
	return listCriteria(ctx, r.db, ownerType, ownerIDs)
}

func listCriteria(ctx context.Context, conn db.DB, ownerType model.CriterionOwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID][]model.Criterion, error) {
	byOwner := make(map[uuid.UUID][]model.Criterion)
	if len(ownerIDs) == 0 {
		return byOwner, nil
	}

	rows, err := conn.Query(ctx, `
		SELECT id, owner_type, owner_id, kind, operator, position, value, refs
		FROM criteria
		WHERE owner_type = @owner_type AND owner_id = ANY(@owner_ids::uuid[])
		ORDER BY owner_id, position
	`, pgx.NamedArgs{
		"owner_type": ownerType,
		"owner_ids":  ownerIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}

	criteria, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Criterion, error) {
		var c model.Criterion
		err := row.Scan(&c.ID, &c.OwnerType, &c.OwnerID, &c.Kind, &c.Operator, &c.Position, &c.Value, &c.Refs)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect criteria: %w", err)
	}

	for _, c := range criteria {
		byOwner[c.OwnerID] = append(byOwner[c.OwnerID], c)
	}
	return byOwner, nil
}

func (r criterionRepository) ReplaceCriteria(ctx context.Context, ownerType model.CriterionOwnerType, ownerID uuid.UUID, criteria []model.Criterion) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM criteria WHERE owner_type = @owner_type AND owner_id = @owner_id
	`, pgx.NamedArgs{
		"owner_type": ownerType,
		"owner_id":   ownerID,
	}); err != nil {
		return fmt.Errorf("delete criteria: %w", err)
	}

	if len(criteria) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range criteria {
		refs := c.Refs
		if refs == nil {
			refs = []string{}
		}
		batch.Queue(`
			INSERT INTO criteria (id, owner_type, owner_id, kind, operator, position, value, refs)
			VALUES (@id, @owner_type, @owner_id, @kind, @operator, @position, @value, @refs)
		`, pgx.NamedArgs{
			"id":         c.ID,
			"owner_type": ownerType,
			"owner_id":   ownerID,
			"kind":       c.Kind,
			"operator":   c.Operator,
			"position":   c.Position,
			"value":      c.Value,
			"refs":       refs,
		})
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert criteria: %w", err)
	}

	return nil
}

// deleteOwnerCriteria removes criteria of owners that are deleted. The
// criteria table references owners loosely so there is no cascade.
func deleteOwnerCriteria(ctx context.Context, conn db.DB, ownerType model.CriterionOwnerType, ownerIDs []uuid.UUID) error {
	if _, err := conn.Exec(ctx, `
		DELETE FROM criteria WHERE owner_type = @owner_type AND owner_id = ANY(@owner_ids::uuid[])
	`, pgx.NamedArgs{
		"owner_type": ownerType,
		"owner_ids":  ownerIDs,
	}); err != nil {
		return fmt.Errorf("delete owner criteria: %w", err)
	}
	return nil
}
