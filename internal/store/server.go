package store

import (
	"context"

	"github.com/dcsim/rack-planner/internal/store/model"
)

type Server interface {
	List(ctx context.Context) ([]model.Server, error)
	Get(ctx context.Context, name string) (*model.Server, error)
	IndexOf(ctx context.Context, name string) (int, error)
	AssertNotExists(ctx context.Context, name string) error
	Replace(ctx context.Context, servers []model.Server) error
	ListByComponent(ctx context.Context, componentName string) ([]model.Server, error)
}

type ServerStore struct {
	c keyedCollection[model.Server]
}

var _ Server = (*ServerStore)(nil)

func NewServerStore(db *CollectionStore) Server {
	return &ServerStore{c: keyedCollection[model.Server]{
		db:         db,
		collection: CollectionServers,
		key:        func(s model.Server) string { return s.Name },
	}}
}

func (s *ServerStore) List(ctx context.Context) ([]model.Server, error) {
	return s.c.list(ctx)
}

func (s *ServerStore) Get(ctx context.Context, name string) (*model.Server, error) {
	return s.c.get(ctx, name)
}

func (s *ServerStore) IndexOf(ctx context.Context, name string) (int, error) {
	return s.c.indexOf(ctx, name)
}

func (s *ServerStore) AssertNotExists(ctx context.Context, name string) error {
	return s.c.assertNotExists(ctx, name)
}

func (s *ServerStore) Replace(ctx context.Context, servers []model.Server) error {
	return s.c.replace(ctx, servers)
}

func (s *ServerStore) ListByComponent(ctx context.Context, componentName string) ([]model.Server, error) {
	servers, err := s.c.list(ctx)
	if err != nil {
		return nil, err
	}
	result := []model.Server{}
	for _, srv := range servers {
		if srv.HasComponent(componentName) {
			result = append(result, srv)
		}
	}
	return result, nil
}
