package service

import (
	"context"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/dcsim/rack-planner/internal/validator"
	"go.uber.org/zap"
)

type WorkspaceService struct {
	store     store.Store
	validator *validator.Validator
}

func NewWorkspaceService(store store.Store) *WorkspaceService {
	return &WorkspaceService{store: store, validator: validator.NewInventoryValidator()}
}

func (w *WorkspaceService) ListWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	return w.store.Workspace().List(ctx)
}

func (w *WorkspaceService) GetWorkspace(ctx context.Context, name string) (*model.Workspace, error) {
	workspace, err := w.store.Workspace().Get(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "workspace", name)
	}
	return workspace, nil
}

// CreateWorkspace stores a workspace attached to an existing network. Its rack
// list always starts empty.
func (w *WorkspaceService) CreateWorkspace(ctx context.Context, form mappers.WorkspaceCreateForm) (*model.Workspace, error) {
	if err := w.store.Workspace().AssertNotExists(ctx, form.Name); err != nil {
		return nil, mapStoreError(err, "workspace", form.Name)
	}

	workspace := mappers.WorkspaceFromForm(form)
	if err := w.validate(workspace); err != nil {
		return nil, err
	}
	if _, err := w.store.Network().Get(ctx, workspace.Network); err != nil {
		return nil, mapStoreError(err, "network", workspace.Network)
	}

	workspaces, err := w.store.Workspace().List(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.store.Workspace().Replace(ctx, append(workspaces, workspace)); err != nil {
		return nil, mapStoreError(err, "workspace", workspace.Name)
	}

	zap.S().Named("workspace_service").Infow("workspace created", "workspace", workspace.Name, "network", workspace.Network)
	return &workspace, nil
}

func (w *WorkspaceService) UpdateWorkspace(ctx context.Context, name string, form mappers.WorkspaceUpdateForm) (*model.Workspace, error) {
	workspaces, err := w.store.Workspace().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := w.store.Workspace().IndexOf(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "workspace", name)
	}

	workspace := *mappers.UpdateWorkspaceFromForm(&workspaces[i], form)
	if err := w.validate(workspace); err != nil {
		return nil, err
	}
	if form.Network != nil {
		if _, err := w.store.Network().Get(ctx, workspace.Network); err != nil {
			return nil, mapStoreError(err, "network", workspace.Network)
		}
	}

	workspaces[i] = workspace
	if err := w.store.Workspace().Replace(ctx, workspaces); err != nil {
		return nil, mapStoreError(err, "workspace", name)
	}
	return &workspace, nil
}

// DeleteWorkspace refuses to drop a workspace that still owns racks.
func (w *WorkspaceService) DeleteWorkspace(ctx context.Context, name string) error {
	workspaces, err := w.store.Workspace().List(ctx)
	if err != nil {
		return err
	}
	i, err := w.store.Workspace().IndexOf(ctx, name)
	if err != nil {
		return mapStoreError(err, "workspace", name)
	}
	if len(workspaces[i].Racks) > 0 {
		return NewErrResourceInUse("workspace", name, "its racks")
	}

	if err := w.store.Workspace().Replace(ctx, append(workspaces[:i], workspaces[i+1:]...)); err != nil {
		return mapStoreError(err, "workspace", name)
	}
	return nil
}

func (w *WorkspaceService) validate(workspace model.Workspace) error {
	if err := w.validator.Struct(workspace); err != nil {
		return &ErrValidation{err}
	}
	return nil
}
