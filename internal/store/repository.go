package store

import (
	"context"
)

// keyedCollection implements the lookups shared by every repository for a
// collection whose records are addressed by a natural key.
type keyedCollection[T any] struct {
	db         *CollectionStore
	collection Collection
	key        func(T) string
}

func (c keyedCollection[T]) list(ctx context.Context) ([]T, error) {
	records := []T{}
	if err := c.db.Get(ctx, c.collection, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c keyedCollection[T]) indexIn(records []T, key string) int {
	for i, r := range records {
		if c.key(r) == key {
			return i
		}
	}
	return -1
}

func (c keyedCollection[T]) get(ctx context.Context, key string) (*T, error) {
	records, err := c.list(ctx)
	if err != nil {
		return nil, err
	}
	i := c.indexIn(records, key)
	if i < 0 {
		return nil, NewErrNotFound(c.collection, key)
	}
	return &records[i], nil
}

func (c keyedCollection[T]) indexOf(ctx context.Context, key string) (int, error) {
	records, err := c.list(ctx)
	if err != nil {
		return -1, err
	}
	i := c.indexIn(records, key)
	if i < 0 {
		return -1, NewErrNotFound(c.collection, key)
	}
	return i, nil
}

func (c keyedCollection[T]) assertNotExists(ctx context.Context, key string) error {
	records, err := c.list(ctx)
	if err != nil {
		return err
	}
	if c.indexIn(records, key) >= 0 {
		return NewErrConflict(c.collection, key)
	}
	return nil
}

func (c keyedCollection[T]) replace(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	return c.db.Set(ctx, c.collection, records)
}
