package profilematch

import "github.com/kailas-cloud/profilematch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation             = domain.ErrValidation
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrProfileNotFound        = domain.ErrProfileNotFound
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
)
