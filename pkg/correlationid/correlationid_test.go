package correlationid_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/lfs/pkg/correlationid"
)

func TestCorrelationIDContext(t *testing.T) {
	t.Run("Should return id stored in context", func(t *testing.T) {
		ctx := correlationid.NewContext(context.Background(), "abc")

		id, ok := correlationid.FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "abc", id)
	})

	t.Run("Should report missing id", func(t *testing.T) {
		_, ok := correlationid.FromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("Should treat empty id as missing", func(t *testing.T) {
		ctx := correlationid.NewContext(context.Background(), "")

		_, ok := correlationid.FromContext(ctx)
		assert.False(t, ok)
	})
}
