package catalog

import (
	"context"

	"github.com/georgemunganga/medibridge/internal/modules/inventory"
)

// Source supplies every inventory record across sellers. inventory.Service
// satisfies it.
type Source interface {
	All(ctx context.Context) ([]inventory.Medicine, error)
}
