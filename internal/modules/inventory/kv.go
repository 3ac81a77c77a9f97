package inventory

import (
	"context"
	"errors"

	"github.com/georgemunganga/medibridge/internal/kvstore"
)

const (
	storageKey = "inventory"
	schemaName = "inventory"
)

type kvRepository struct{ store kvstore.Store }

// NewKVRepository returns a Repository persisted under a single key.
func NewKVRepository(store kvstore.Store) Repository { return &kvRepository{store: store} }

func decodeList(raw []byte) ([]Medicine, error) {
	if raw == nil {
		return []Medicine{}, nil
	}
	var list []Medicine
	if _, err := kvstore.Decode(raw, schemaName, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Medicine{}
	}
	return list, nil
}

func (r *kvRepository) All(ctx context.Context) ([]Medicine, error) {
	raw, err := r.store.Get(ctx, storageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []Medicine{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList(raw)
}

func (r *kvRepository) Mutate(ctx context.Context, fn func([]Medicine) ([]Medicine, error)) error {
	return r.store.Update(ctx, storageKey, func(cur []byte) ([]byte, error) {
		list, err := decodeList(cur)
		if err != nil {
			return nil, err
		}
		next, err := fn(list)
		if err != nil {
			return nil, err
		}
		return kvstore.Encode(schemaName, next)
	})
}
