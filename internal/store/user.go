package store

import (
	"context"

	"github.com/dcsim/rack-planner/internal/store/model"
)

type User interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, username string) (*model.User, error)
	IndexOf(ctx context.Context, username string) (int, error)
	AssertNotExists(ctx context.Context, username string) error
	Replace(ctx context.Context, users []model.User) error
}

type UserStore struct {
	c keyedCollection[model.User]
}

// Make sure we conform to User interface
var _ User = (*UserStore)(nil)

func NewUserStore(db *CollectionStore) User {
	return &UserStore{c: keyedCollection[model.User]{
		db:         db,
		collection: CollectionUsers,
		key:        func(u model.User) string { return u.Username },
	}}
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	return s.c.list(ctx)
}

func (s *UserStore) Get(ctx context.Context, username string) (*model.User, error) {
	return s.c.get(ctx, username)
}

func (s *UserStore) IndexOf(ctx context.Context, username string) (int, error) {
	return s.c.indexOf(ctx, username)
}

func (s *UserStore) AssertNotExists(ctx context.Context, username string) error {
	return s.c.assertNotExists(ctx, username)
}

func (s *UserStore) Replace(ctx context.Context, users []model.User) error {
	return s.c.replace(ctx, users)
}
