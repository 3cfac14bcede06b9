package store

import (
	"context"

	"github.com/dcsim/rack-planner/internal/store/model"
)

// Rack records are addressed by id; names are only unique within a workspace.
type Rack interface {
	List(ctx context.Context) ([]model.Rack, error)
	Get(ctx context.Context, id string) (*model.Rack, error)
	IndexOf(ctx context.Context, id string) (int, error)
	// FindByName returns the first rack called name, in any workspace.
	FindByName(ctx context.Context, name string) (*model.Rack, error)
	AssertNotExists(ctx context.Context, name, workspaceName string) error
	Replace(ctx context.Context, racks []model.Rack) error
}

type RackStore struct {
	c keyedCollection[model.Rack]
}

var _ Rack = (*RackStore)(nil)

func NewRackStore(db *CollectionStore) Rack {
	return &RackStore{c: keyedCollection[model.Rack]{
		db:         db,
		collection: CollectionRacks,
		key:        func(r model.Rack) string { return r.ID },
	}}
}

func (s *RackStore) List(ctx context.Context) ([]model.Rack, error) {
	return s.c.list(ctx)
}

func (s *RackStore) Get(ctx context.Context, id string) (*model.Rack, error) {
	return s.c.get(ctx, id)
}

func (s *RackStore) IndexOf(ctx context.Context, id string) (int, error) {
	return s.c.indexOf(ctx, id)
}

func (s *RackStore) FindByName(ctx context.Context, name string) (*model.Rack, error) {
	racks, err := s.c.list(ctx)
	if err != nil {
		return nil, err
	}
	for i := range racks {
		if racks[i].Name == name {
			return &racks[i], nil
		}
	}
	return nil, NewErrNotFound(CollectionRacks, name)
}

func (s *RackStore) AssertNotExists(ctx context.Context, name, workspaceName string) error {
	racks, err := s.c.list(ctx)
	if err != nil {
		return err
	}
	for _, r := range racks {
		if r.Name == name && r.WorkspaceName == workspaceName {
			return NewErrConflict(CollectionRacks, workspaceName+"/"+name)
		}
	}
	return nil
}

func (s *RackStore) Replace(ctx context.Context, racks []model.Rack) error {
	return s.c.replace(ctx, racks)
}
