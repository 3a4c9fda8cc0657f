package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
	"github.com/tuanvumaihuynh/lfs/pkg/outbox"
	"github.com/tuanvumaihuynh/lfs/pkg/zerror"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate uuid v7: %w", err)
	}
	return id, nil
}

func isNotFound(err error) bool {
	return db.IsNotFound(err)
}

// notFound converts a missing row into the given domain error.
func notFound(err error, zErr zerror.ZError) error {
	if db.IsNotFound(err) {
		return zErr.WrapParent(err)
	}
	return err
}

// conflict converts a unique violation into the given domain error.
func conflict(err error, zErr zerror.ZError) error {
	if db.IsUniqueViolation(err) {
		return zErr.WrapParent(err)
	}
	return err
}

// foreignKey converts a reference to a missing row into the given domain error.
func foreignKey(err error, zErr zerror.ZError) error {
	if db.IsForeignKeyViolation(err) {
		return zErr.WrapParent(err)
	}
	return err
}

func writeOutboxMsg(
	ctx context.Context,
	repo repository.OutboxMsgRepository,
	topic string,
	partitionKey *string,
	ev any,
) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: partitionKey,
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
