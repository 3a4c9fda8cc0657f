package db_test

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	noRows := fmt.Errorf("select: %w", pgx.ErrNoRows)

	assert.True(t, db.IsUniqueViolation(unique))
	assert.False(t, db.IsUniqueViolation(fk))
	assert.True(t, db.IsForeignKeyViolation(fk))
	assert.False(t, db.IsForeignKeyViolation(noRows))
	assert.True(t, db.IsNotFound(noRows))
	assert.False(t, db.IsNotFound(unique))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"no rows", pgx.ErrNoRows, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, db.IsRetryable(tt.err))
		})
	}
}
