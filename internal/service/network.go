package service

import (
	"context"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/dcsim/rack-planner/internal/validator"
)

type NetworkService struct {
	store     store.Store
	validator *validator.Validator
}

func NewNetworkService(store store.Store) *NetworkService {
	return &NetworkService{store: store, validator: validator.NewInventoryValidator()}
}

func (n *NetworkService) ListNetworks(ctx context.Context) ([]model.Network, error) {
	return n.store.Network().List(ctx)
}

func (n *NetworkService) GetNetwork(ctx context.Context, name string) (*model.Network, error) {
	network, err := n.store.Network().Get(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "network", name)
	}
	return network, nil
}

func (n *NetworkService) CreateNetwork(ctx context.Context, network model.Network) (*model.Network, error) {
	if err := n.store.Network().AssertNotExists(ctx, network.Name); err != nil {
		return nil, mapStoreError(err, "network", network.Name)
	}
	if err := n.validate(network); err != nil {
		return nil, err
	}

	networks, err := n.store.Network().List(ctx)
	if err != nil {
		return nil, err
	}
	if err := n.store.Network().Replace(ctx, append(networks, network)); err != nil {
		return nil, mapStoreError(err, "network", network.Name)
	}
	return &network, nil
}

func (n *NetworkService) UpdateNetwork(ctx context.Context, name string, form mappers.NetworkUpdateForm) (*model.Network, error) {
	networks, err := n.store.Network().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := n.store.Network().IndexOf(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "network", name)
	}

	network := *mappers.UpdateNetworkFromForm(&networks[i], form)
	if err := n.validate(network); err != nil {
		return nil, err
	}

	networks[i] = network
	if err := n.store.Network().Replace(ctx, networks); err != nil {
		return nil, mapStoreError(err, "network", name)
	}
	return &network, nil
}

// DeleteNetwork refuses to drop a network a workspace is attached to.
func (n *NetworkService) DeleteNetwork(ctx context.Context, name string) error {
	networks, err := n.store.Network().List(ctx)
	if err != nil {
		return err
	}
	i, err := n.store.Network().IndexOf(ctx, name)
	if err != nil {
		return mapStoreError(err, "network", name)
	}

	workspaces, err := n.store.Workspace().ListByNetwork(ctx, name)
	if err != nil {
		return err
	}
	if len(workspaces) > 0 {
		return NewErrResourceInUse("network", name, "workspace "+workspaces[0].Name)
	}

	if err := n.store.Network().Replace(ctx, append(networks[:i], networks[i+1:]...)); err != nil {
		return mapStoreError(err, "network", name)
	}
	return nil
}

func (n *NetworkService) validate(network model.Network) error {
	if err := n.validator.Struct(network); err != nil {
		return &ErrValidation{err}
	}
	return nil
}
