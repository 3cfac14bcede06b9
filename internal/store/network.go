package store

import (
	"context"

	"github.com/dcsim/rack-planner/internal/store/model"
)

type Network interface {
	List(ctx context.Context) ([]model.Network, error)
	Get(ctx context.Context, name string) (*model.Network, error)
	IndexOf(ctx context.Context, name string) (int, error)
	AssertNotExists(ctx context.Context, name string) error
	Replace(ctx context.Context, networks []model.Network) error
}

type NetworkStore struct {
	c keyedCollection[model.Network]
}

var _ Network = (*NetworkStore)(nil)

func NewNetworkStore(db *CollectionStore) Network {
	return &NetworkStore{c: keyedCollection[model.Network]{
		db:         db,
		collection: CollectionNetworks,
		key:        func(n model.Network) string { return n.Name },
	}}
}

func (s *NetworkStore) List(ctx context.Context) ([]model.Network, error) {
	return s.c.list(ctx)
}

func (s *NetworkStore) Get(ctx context.Context, name string) (*model.Network, error) {
	return s.c.get(ctx, name)
}

func (s *NetworkStore) IndexOf(ctx context.Context, name string) (int, error) {
	return s.c.indexOf(ctx, name)
}

func (s *NetworkStore) AssertNotExists(ctx context.Context, name string) error {
	return s.c.assertNotExists(ctx, name)
}

func (s *NetworkStore) Replace(ctx context.Context, networks []model.Network) error {
	return s.c.replace(ctx, networks)
}
