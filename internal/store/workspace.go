package store

import (
	"context"

	"github.com/dcsim/rack-planner/internal/store/model"
)

type Workspace interface {
	List(ctx context.Context) ([]model.Workspace, error)
	Get(ctx context.Context, name string) (*model.Workspace, error)
	IndexOf(ctx context.Context, name string) (int, error)
	AssertNotExists(ctx context.Context, name string) error
	Replace(ctx context.Context, workspaces []model.Workspace) error
	// FindByRack returns the first workspace listing rackName among its racks.
	FindByRack(ctx context.Context, rackName string) (*model.Workspace, error)
	ListByNetwork(ctx context.Context, network string) ([]model.Workspace, error)
}

type WorkspaceStore struct {
	c keyedCollection[model.Workspace]
}

var _ Workspace = (*WorkspaceStore)(nil)

func NewWorkspaceStore(db *CollectionStore) Workspace {
	return &WorkspaceStore{c: keyedCollection[model.Workspace]{
		db:         db,
		collection: CollectionWorkspaces,
		key:        func(w model.Workspace) string { return w.Name },
	}}
}

func (s *WorkspaceStore) List(ctx context.Context) ([]model.Workspace, error) {
	return s.c.list(ctx)
}

func (s *WorkspaceStore) Get(ctx context.Context, name string) (*model.Workspace, error) {
	return s.c.get(ctx, name)
}

func (s *WorkspaceStore) IndexOf(ctx context.Context, name string) (int, error) {
	return s.c.indexOf(ctx, name)
}

func (s *WorkspaceStore) AssertNotExists(ctx context.Context, name string) error {
	return s.c.assertNotExists(ctx, name)
}

func (s *WorkspaceStore) Replace(ctx context.Context, workspaces []model.Workspace) error {
	return s.c.replace(ctx, workspaces)
}

func (s *WorkspaceStore) FindByRack(ctx context.Context, rackName string) (*model.Workspace, error) {
	workspaces, err := s.c.list(ctx)
	if err != nil {
		return nil, err
	}
	for i := range workspaces {
		if workspaces[i].HasRack(rackName) {
			return &workspaces[i], nil
		}
	}
	return nil, NewErrNotFound(CollectionWorkspaces, "owning rack "+rackName)
}

func (s *WorkspaceStore) ListByNetwork(ctx context.Context, network string) ([]model.Workspace, error) {
	workspaces, err := s.c.list(ctx)
	if err != nil {
		return nil, err
	}
	result := []model.Workspace{}
	for _, w := range workspaces {
		if w.Network == network {
			result = append(result, w)
		}
	}
	return result, nil
}
