package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/pkg/zerror"
)

func TestZError(t *testing.T) {
	outOfStock := zerror.NewUnprocessableEntity("OUT_OF_STOCK", "not enough products in stock")

	t.Run("Should format without parent", func(t *testing.T) {
		assert.Equal(t, "UNPROCESSABLE_ENTITY OUT_OF_STOCK: not enough products in stock", outOfStock.Error())
	})

	t.Run("Should keep predefined error untouched when wrapping", func(t *testing.T) {
		parent := errors.New("no rows")
		wrapped := outOfStock.WrapParent(parent)

		assert.Nil(t, outOfStock.Parent())
		assert.Equal(t, parent, wrapped.Parent())
		assert.ErrorIs(t, wrapped, parent)
		assert.True(t, len(wrapped.Error()) > len(outOfStock.Error()))
		assert.Contains(t, wrapped.Error(), ": no rows")
	})

	t.Run("Should ignore nil parent", func(t *testing.T) {
		assert.Equal(t, outOfStock, outOfStock.WrapParent(nil))
	})

	t.Run("Should keep code when message is formatted", func(t *testing.T) {
		err := outOfStock.WithMsgf("not enough %q in stock", "Lamp")

		assert.Equal(t, `not enough "Lamp" in stock`, err.Msg())
		assert.ErrorIs(t, err, outOfStock)
		assert.Equal(t, "not enough products in stock", outOfStock.Msg())
	})

	t.Run("Should match by code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("add item: %w", outOfStock.WrapParent(errors.New("stock 0")))

		assert.ErrorIs(t, err, outOfStock)
		assert.NotErrorIs(t, err, zerror.NewNotFound("CART_NOT_FOUND", "cart not found"))

		zErr, ok := zerror.As(err)
		require.True(t, ok)
		assert.Equal(t, zerror.StatusUnprocessableEntity, zErr.Status())
		assert.Equal(t, "OUT_OF_STOCK", zErr.Code())
	})
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, zerror.StatusNotFound, zerror.StatusOf(fmt.Errorf("x: %w", zerror.NewNotFound("A", "a"))))
	assert.Equal(t, zerror.StatusUnknown, zerror.StatusOf(errors.New("boom")))
	assert.Equal(t, zerror.StatusUnknown, zerror.StatusOf(nil))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", zerror.StatusNotFound.String())
	assert.Equal(t, "SERVICE_UNAVAILABLE", zerror.StatusServiceUnavailable.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
}
