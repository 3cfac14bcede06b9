package store

import (
	"context"

	"github.com/dcsim/rack-planner/internal/store/model"
)

type Component interface {
	List(ctx context.Context) ([]model.Component, error)
	Get(ctx context.Context, name string) (*model.Component, error)
	IndexOf(ctx context.Context, name string) (int, error)
	AssertNotExists(ctx context.Context, name string) error
	Replace(ctx context.Context, components []model.Component) error
	// Resolve returns the catalog entry of every known name; unknown names are skipped.
	Resolve(ctx context.Context, names []string) (map[string]model.Component, error)
}

type ComponentStore struct {
	c keyedCollection[model.Component]
}

var _ Component = (*ComponentStore)(nil)

func NewComponentStore(db *CollectionStore) Component {
	return &ComponentStore{c: keyedCollection[model.Component]{
		db:         db,
		collection: CollectionComponents,
		key:        func(c model.Component) string { return c.Name },
	}}
}

func (s *ComponentStore) List(ctx context.Context) ([]model.Component, error) {
	return s.c.list(ctx)
}

func (s *ComponentStore) Get(ctx context.Context, name string) (*model.Component, error) {
	return s.c.get(ctx, name)
}

func (s *ComponentStore) IndexOf(ctx context.Context, name string) (int, error) {
	return s.c.indexOf(ctx, name)
}

func (s *ComponentStore) AssertNotExists(ctx context.Context, name string) error {
	return s.c.assertNotExists(ctx, name)
}

func (s *ComponentStore) Replace(ctx context.Context, components []model.Component) error {
	return s.c.replace(ctx, components)
}

func (s *ComponentStore) Resolve(ctx context.Context, names []string) (map[string]model.Component, error) {
	components, err := s.c.list(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	resolved := make(map[string]model.Component, len(names))
	for _, c := range components {
		if _, ok := wanted[c.Name]; ok {
			resolved[c.Name] = c
		}
	}
	return resolved, nil
}
