// Package apicontract embeds the OpenAPI contract of the shop and management
// API.
package apicontract

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"sync"
)

//go:embed openapi.yml
var spec []byte

// Spec returns the raw YAML contract. Callers must not modify it.
func Spec() []byte {
	return spec
}

// ETag is a strong entity tag for the embedded contract.
var ETag = sync.OnceValue(func() string {
	sum := sha256.Sum256(spec)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
})
