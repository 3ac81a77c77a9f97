package inventory

import "context"

// Repository stores the inventory as one list, the way the seller dashboard
// always has. Mutate is atomic with respect to other Mutate calls.
type Repository interface {
	All(ctx context.Context) ([]Medicine, error)
	Mutate(ctx context.Context, fn func([]Medicine) ([]Medicine, error)) error
}
