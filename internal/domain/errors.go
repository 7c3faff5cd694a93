package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidInput signals text that cannot be embedded (empty after trimming).
	ErrInvalidInput = fmt.Errorf("invalid embedding input: %w", ErrValidation)
	// ErrProfileNotFound signals a missing profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector that does not match the collection dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// Kind is the coarse error class callers branch on.
type Kind int

const (
	// KindInternal covers store and embedding failures.
	KindInternal Kind = iota
	// KindValidation covers rejected input.
	KindValidation
	// KindNotFound covers unknown profile IDs.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrProfileNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
