package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// SchemaValidator checks XML documents against an externally supplied schema.
type SchemaValidator interface {
	// Validate returns one diagnostic per violation. The error is reserved for
	// failures of the validator itself, not for invalid documents.
	Validate(ctx context.Context, doc []byte) ([]domain.Diagnostic, error)
}
