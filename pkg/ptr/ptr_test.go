package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/lfs/pkg/ptr"
)

func TestDeref(t *testing.T) {
	assert.Equal(t, int32(20), ptr.Deref(ptr.New(int32(20)), 0))
	assert.Equal(t, int32(0), ptr.Deref[int32](nil, 0))
	assert.Equal(t, "fallback", ptr.Deref[string](nil, "fallback"))
}
