package cart

import (
	"context"
	"errors"

	"github.com/georgemunganga/medibridge/internal/kvstore"
)

const schemaName = "cart"

// Repository persists one item list per session.
type Repository interface {
	Get(ctx context.Context, session string) ([]Item, error)
	// Mutate atomically replaces the session's items with fn's result.
	Mutate(ctx context.Context, session string, fn func([]Item) ([]Item, error)) error
	Delete(ctx context.Context, session string) error
}

type kvRepository struct{ store kvstore.Store }

// NewKVRepository stores each cart under cart:<session>.
func NewKVRepository(store kvstore.Store) Repository { return &kvRepository{store: store} }

func key(session string) string { return "cart:" + session }

func decodeItems(raw []byte) ([]Item, error) {
	var items []Item
	if raw == nil {
		return items, nil
	}
	if _, err := kvstore.Decode(raw, schemaName, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *kvRepository) Get(ctx context.Context, session string) ([]Item, error) {
	raw, err := r.store.Get(ctx, key(session))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

func (r *kvRepository) Mutate(ctx context.Context, session string, fn func([]Item) ([]Item, error)) error {
	return r.store.Update(ctx, key(session), func(cur []byte) ([]byte, error) {
		items, err := decodeItems(cur)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return kvstore.Encode(schemaName, next)
	})
}

func (r *kvRepository) Delete(ctx context.Context, session string) error {
	return r.store.Delete(ctx, key(session))
}
