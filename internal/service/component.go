package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/dcsim/rack-planner/internal/validator"
	"go.uber.org/zap"
)

type ComponentService struct {
	store     store.Store
	servers   *ServerService
	validator *validator.Validator
}

func NewComponentService(store store.Store, servers *ServerService) *ComponentService {
	return &ComponentService{store: store, servers: servers, validator: validator.NewInventoryValidator()}
}

func (c *ComponentService) ListComponents(ctx context.Context) ([]model.Component, error) {
	return c.store.Component().List(ctx)
}

func (c *ComponentService) GetComponent(ctx context.Context, name string) (*model.Component, error) {
	component, err := c.store.Component().Get(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "component", name)
	}
	return component, nil
}

func (c *ComponentService) CreateComponent(ctx context.Context, component model.Component) (*model.Component, error) {
	if err := c.store.Component().AssertNotExists(ctx, component.Name); err != nil {
		return nil, mapStoreError(err, "component", component.Name)
	}
	if component.CompatibleList == nil {
		component.CompatibleList = []string{}
	}
	if err := c.validate(component); err != nil {
		return nil, err
	}

	components, err := c.store.Component().List(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Component().Replace(ctx, append(components, component)); err != nil {
		return nil, mapStoreError(err, "component", component.Name)
	}
	return &component, nil
}

// UpdateComponent stores the new catalog entry. A cost change is propagated to
// every server using the component and to the racks holding those servers.
func (c *ComponentService) UpdateComponent(ctx context.Context, name string, form mappers.ComponentUpdateForm) (*model.Component, error) {
	components, err := c.store.Component().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := c.store.Component().IndexOf(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "component", name)
	}

	previous := components[i]
	component := *mappers.UpdateComponentFromForm(&components[i], form)
	if err := c.validate(component); err != nil {
		return nil, err
	}
	if previous.Type != component.Type || !slices.Equal(previous.CompatibleList, component.CompatibleList) {
		if err := c.checkServersWith(ctx, component); err != nil {
			return nil, err
		}
	}

	components[i] = component
	if err := c.store.Component().Replace(ctx, components); err != nil {
		return nil, mapStoreError(err, "component", name)
	}

	if previous.Price != component.Price || previous.MaintenanceCost != component.MaintenanceCost {
		if err := c.servers.RecomputeForComponent(ctx, name); err != nil {
			return nil, fmt.Errorf("recomputing costs for component %s: %w", name, err)
		}
	}
	return &component, nil
}

// DeleteComponent refuses to drop a component some server is built from.
func (c *ComponentService) DeleteComponent(ctx context.Context, name string) error {
	components, err := c.store.Component().List(ctx)
	if err != nil {
		return err
	}
	i, err := c.store.Component().IndexOf(ctx, name)
	if err != nil {
		return mapStoreError(err, "component", name)
	}

	users, err := c.store.Server().ListByComponent(ctx, name)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return NewErrResourceInUse("component", name, fmt.Sprintf("%d server(s)", len(users)))
	}

	if err := c.store.Component().Replace(ctx, append(components[:i], components[i+1:]...)); err != nil {
		return mapStoreError(err, "component", name)
	}
	zap.S().Named("component_service").Infow("component deleted", "component", name)
	return nil
}

// checkServersWith runs the composition checks of every server using the
// component as if updated were already in the catalog. Names missing from the
// catalog are left out so they cannot block an unrelated edit.
func (c *ComponentService) checkServersWith(ctx context.Context, updated model.Component) error {
	servers, err := c.store.Server().ListByComponent(ctx, updated.Name)
	if err != nil {
		return err
	}
	for _, srv := range servers {
		catalog, err := c.store.Component().Resolve(ctx, srv.Components)
		if err != nil {
			return err
		}
		catalog[updated.Name] = updated
		known := make([]string, 0, len(srv.Components))
		for _, n := range srv.Components {
			if _, ok := catalog[n]; ok {
				known = append(known, n)
			}
		}
		if err := validateComposition(refsOf(known, catalog), catalog); err != nil {
			return NewErrResourceConflict("component %s is used by server %s: %s", updated.Name, srv.Name, err)
		}
	}
	return nil
}

func (c *ComponentService) validate(component model.Component) error {
	if err := c.validator.Struct(component); err != nil {
		return &ErrValidation{err}
	}
	return nil
}
