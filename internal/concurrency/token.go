// Package concurrency implements the token-based optimistic concurrency
// control used by the event command processor.
//
// Every accepted write stores a fresh opaque token on the event. A caller that
// read the event may hand the token back on update; a mismatch means someone
// else wrote in between and the update is rejected.
package concurrency

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
)

// ErrConflict is returned when a supplied token does not match the stored one.
var ErrConflict = errors.New("concurrent modification detected, please refresh and try again")

// tokenBytes is the amount of entropy per token (128 bits).
const tokenBytes = 16

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// TokenGenerator produces concurrency tokens.
type TokenGenerator interface {
	Generate() string
}

// Generator draws tokens from crypto/rand. The zero value is ready to use and
// safe for concurrent use.
type Generator struct{}

// NewGenerator returns the default token generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns 26 lower-case base32 characters encoding 128 random bits.
func (Generator) Generate() string {
	b := make([]byte, tokenBytes)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return strings.ToLower(tokenEncoding.EncodeToString(b))
}

// Validate fails with ErrConflict when supplied differs from current.
func Validate(current, supplied string) error {
	if current != supplied {
		return ErrConflict
	}
	return nil
}

// Rotate returns the token that replaces previous after a successful write.
//
// previous is not consulted: the replacement is always a freshly generated
// token, so rotating is the same as calling gen.Generate.
func Rotate(gen TokenGenerator, previous string) string {
	_ = previous
	return gen.Generate()
}
