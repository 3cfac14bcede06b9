package service

import (
	"context"
	"errors"

	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/dcsim/rack-planner/internal/validator"
)

type UserService struct {
	store     store.Store
	validator *validator.Validator
}

func NewUserService(store store.Store) *UserService {
	return &UserService{store: store, validator: validator.NewInventoryValidator()}
}

func (u *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return u.store.User().List(ctx)
}

func (u *UserService) GetUser(ctx context.Context, username string) (*model.User, error) {
	user, err := u.store.User().Get(ctx, username)
	if err != nil {
		return nil, mapStoreError(err, "user", username)
	}
	return user, nil
}

func (u *UserService) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	if err := u.store.User().AssertNotExists(ctx, user.Username); err != nil {
		return nil, mapStoreError(err, "user", user.Username)
	}
	if err := u.validator.Struct(user); err != nil {
		return nil, &ErrValidation{err}
	}

	users, err := u.store.User().List(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.store.User().Replace(ctx, append(users, user)); err != nil {
		return nil, mapStoreError(err, "user", user.Username)
	}
	return &user, nil
}

func (u *UserService) DeleteUser(ctx context.Context, username string) error {
	users, err := u.store.User().List(ctx)
	if err != nil {
		return err
	}
	i, err := u.store.User().IndexOf(ctx, username)
	if err != nil {
		return mapStoreError(err, "user", username)
	}
	if err := u.store.User().Replace(ctx, append(users[:i], users[i+1:]...)); err != nil {
		return mapStoreError(err, "user", username)
	}
	return nil
}

// Authenticate checks the credentials. An unknown user and a wrong password
// fail the same way.
func (u *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := u.store.User().Get(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrUnauthorized()
		}
		return nil, err
	}
	// TODO: passwords are stored as given; hash them once the user files can be migrated.
	if user.Password != password {
		return nil, NewErrUnauthorized()
	}
	return user, nil
}
