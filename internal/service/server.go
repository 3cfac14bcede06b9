package service

import (
	"context"
	"errors"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/dcsim/rack-planner/internal/validator"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"
)

type ServerService struct {
	store     store.Store
	validator *validator.Validator
}

func NewServerService(store store.Store) *ServerService {
	return &ServerService{store: store, validator: validator.NewInventoryValidator()}
}

func (s *ServerService) ListServers(ctx context.Context) ([]model.Server, error) {
	return s.store.Server().List(ctx)
}

func (s *ServerService) GetServer(ctx context.Context, name string) (*model.Server, error) {
	server, err := s.store.Server().Get(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "server", name)
	}
	return server, nil
}

// CreateServer builds a server from form. Prices and network are always derived.
func (s *ServerService) CreateServer(ctx context.Context, form mappers.ServerCreateForm) (*model.Server, error) {
	if err := s.store.Server().AssertNotExists(ctx, form.Name); err != nil {
		return nil, mapStoreError(err, "server", form.Name)
	}

	c, err := compose(ctx, s.store.Component(), form.Components)
	if err != nil {
		return nil, err
	}

	network, err := inferNetwork(ctx, s.store, form.RackName)
	if err != nil {
		return nil, err
	}

	server := model.Server{
		Name:                 form.Name,
		Description:          form.Description,
		Components:           c.components,
		TotalPrice:           c.totalPrice,
		TotalMaintenanceCost: c.totalMaintenanceCost,
		Network:              network,
		OperatingSystem:      firstNonEmpty(c.operatingSystem, form.OperatingSystem, model.OperatingSystemNone),
		IPAddress:            form.IPAddress,
		HealthStatus:         firstNonEmpty(form.HealthStatus, model.HealthStatusUnknown),
		RackName:             form.RackName,
	}
	if err := s.validate(server); err != nil {
		return nil, err
	}

	servers, err := s.store.Server().List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Server().Replace(ctx, append(servers, server)); err != nil {
		return nil, mapStoreError(err, "server", server.Name)
	}

	zap.S().Named("server_service").Infow("server created", "server", server.Name, "network", network, "total_price", server.TotalPrice)
	return &server, nil
}

// UpdateServer merges form into the stored server. A new component list is run
// through the whole pipeline again.
func (s *ServerService) UpdateServer(ctx context.Context, name string, form mappers.ServerUpdateForm) (*model.Server, error) {
	servers, err := s.store.Server().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := s.store.Server().IndexOf(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "server", name)
	}
	server := servers[i]

	if form.Components != nil {
		c, err := compose(ctx, s.store.Component(), *form.Components)
		if err != nil {
			return nil, err
		}

		previousFromComponent := server.HasComponent(server.OperatingSystem)
		server.Components = c.components
		server.TotalPrice = c.totalPrice
		server.TotalMaintenanceCost = c.totalMaintenanceCost

		switch {
		case c.operatingSystem != "":
			server.OperatingSystem = c.operatingSystem
		case form.OperatingSystem != nil:
			server.OperatingSystem = firstNonEmpty(*form.OperatingSystem, model.OperatingSystemNone)
		case previousFromComponent:
			server.OperatingSystem = model.OperatingSystemNone
		}
	} else if form.OperatingSystem != nil {
		server.OperatingSystem = firstNonEmpty(*form.OperatingSystem, model.OperatingSystemNone)
	}
	if form.Description != nil {
		server.Description = *form.Description
	}
	if form.IPAddress != nil {
		server.IPAddress = *form.IPAddress
	}
	if form.HealthStatus != nil {
		server.HealthStatus = *form.HealthStatus
	}

	if err := s.validate(server); err != nil {
		return nil, err
	}

	servers[i] = server
	if err := s.store.Server().Replace(ctx, servers); err != nil {
		return nil, mapStoreError(err, "server", name)
	}
	if form.Components != nil {
		if err := recomputeRackCosts(ctx, s.store, servers, map[string]struct{}{name: {}}); err != nil {
			return nil, err
		}
	}
	return &server, nil
}

// DeleteServer removes the server and detaches it from the rack holding it.
// The detach is best effort.
func (s *ServerService) DeleteServer(ctx context.Context, name string) error {
	servers, err := s.store.Server().List(ctx)
	if err != nil {
		return err
	}
	i, err := s.store.Server().IndexOf(ctx, name)
	if err != nil {
		return mapStoreError(err, "server", name)
	}
	server := servers[i]

	if err := s.store.Server().Replace(ctx, append(servers[:i], servers[i+1:]...)); err != nil {
		return mapStoreError(err, "server", name)
	}

	if err := detachFromRacks(ctx, s.store, server); err != nil {
		zap.S().Named("server_service").Warnw("failed to detach deleted server from its rack", "server", name, "error", err)
	}
	return nil
}

// AddComponent attaches one more component to the server and recomputes its costs.
func (s *ServerService) AddComponent(ctx context.Context, name string, ref model.ComponentRef) (*model.Server, error) {
	servers, err := s.store.Server().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := s.store.Server().IndexOf(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "server", name)
	}
	server := servers[i]

	component, err := s.store.Component().Get(ctx, ref.Name)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrUnknownComponent(ref.Name)
		}
		return nil, err
	}

	components := append(append([]string{}, server.Components...), component.Name)
	catalog, err := s.store.Component().Resolve(ctx, components)
	if err != nil {
		return nil, err
	}
	if err := checkCompatibility(components, catalog); err != nil {
		return nil, err
	}

	server.Components = components
	server.TotalPrice, server.TotalMaintenanceCost = sumCosts(components, catalog)
	if component.Type == model.ComponentTypeOS {
		server.OperatingSystem = component.Name
	}

	servers[i] = server
	if err := s.store.Server().Replace(ctx, servers); err != nil {
		return nil, mapStoreError(err, "server", name)
	}
	if err := recomputeRackCosts(ctx, s.store, servers, map[string]struct{}{name: {}}); err != nil {
		return nil, err
	}
	return &server, nil
}

// RemoveComponent detaches one occurrence of componentName. componentType may be
// empty, the catalog type is used then. Mandatory types can never be removed.
func (s *ServerService) RemoveComponent(ctx context.Context, name, componentName, componentType string) (*model.Server, error) {
	servers, err := s.store.Server().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := s.store.Server().IndexOf(ctx, name)
	if err != nil {
		return nil, mapStoreError(err, "server", name)
	}
	server := servers[i]

	catalog, err := s.store.Component().Resolve(ctx, append(append([]string{}, server.Components...), componentName))
	if err != nil {
		return nil, err
	}

	resolvedType := typeOf(model.ComponentRef{Name: componentName, Type: componentType}, catalog)
	if funk.ContainsString(model.MandatoryTypes, componentType) || funk.ContainsString(model.MandatoryTypes, resolvedType) {
		return nil, NewErrMandatoryComponentRemoval(componentName, firstNonEmpty(componentType, resolvedType))
	}

	idx := funk.IndexOfString(server.Components, componentName)
	if idx < 0 {
		return nil, NewErrResourceNotFound(componentName, "component on server "+name)
	}

	components := append(append([]string{}, server.Components[:idx]...), server.Components[idx+1:]...)
	server.Components = components
	server.TotalPrice, server.TotalMaintenanceCost = sumCosts(components, catalog)
	if resolvedType == model.ComponentTypeOS && server.OperatingSystem == componentName {
		server.OperatingSystem = firstNonEmpty(operatingSystemOf(refsOf(components, catalog), catalog), model.OperatingSystemNone)
	}

	servers[i] = server
	if err := s.store.Server().Replace(ctx, servers); err != nil {
		return nil, mapStoreError(err, "server", name)
	}
	if err := recomputeRackCosts(ctx, s.store, servers, map[string]struct{}{name: {}}); err != nil {
		return nil, err
	}
	return &server, nil
}

// MissingComponents lists the display mandatory types the server does not have yet.
func (s *ServerService) MissingComponents(ctx context.Context, name string) ([]string, error) {
	server, err := s.GetServer(ctx, name)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.Component().Resolve(ctx, server.Components)
	if err != nil {
		return nil, err
	}

	present := make([]string, 0, len(catalog))
	for _, c := range catalog {
		present = append(present, c.Type)
	}

	missing := []string{}
	for _, t := range model.DisplayMandatoryTypes {
		if !funk.ContainsString(present, t) {
			missing = append(missing, t)
		}
	}
	return missing, nil
}

// RecomputeForComponent refreshes the costs of every server using componentName
// and the total cost of every rack holding one of those servers.
func (s *ServerService) RecomputeForComponent(ctx context.Context, componentName string) error {
	servers, err := s.store.Server().List(ctx)
	if err != nil {
		return err
	}

	names := []string{}
	for _, srv := range servers {
		names = append(names, srv.Components...)
	}
	catalog, err := s.store.Component().Resolve(ctx, funk.UniqString(names))
	if err != nil {
		return err
	}

	affected := map[string]struct{}{}
	for i, srv := range servers {
		if !srv.HasComponent(componentName) {
			continue
		}
		servers[i].TotalPrice, servers[i].TotalMaintenanceCost = sumCosts(srv.Components, catalog)
		affected[srv.Name] = struct{}{}
	}
	if len(affected) == 0 {
		return nil
	}
	if err := s.store.Server().Replace(ctx, servers); err != nil {
		return mapStoreError(err, "server", componentName)
	}
	if err := recomputeRackCosts(ctx, s.store, servers, affected); err != nil {
		return err
	}

	zap.S().Named("server_service").Infow("costs recomputed", "component", componentName, "servers", len(affected))
	return nil
}

func (s *ServerService) validate(server model.Server) error {
	if err := s.validator.Struct(server); err != nil {
		return &ErrValidation{err}
	}
	return nil
}

// recomputeRackCosts rewrites the total cost of every rack listing one of the
// affected servers. servers must hold the prices already persisted.
func recomputeRackCosts(ctx context.Context, s store.Store, servers []model.Server, affected map[string]struct{}) error {
	prices := make(map[string]float64, len(servers))
	for _, srv := range servers {
		prices[srv.Name] = srv.TotalPrice
	}

	racks, err := s.Rack().List(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i, r := range racks {
		holds := false
		for _, rs := range r.Servers {
			if _, ok := affected[rs.Name]; ok {
				holds = true
				break
			}
		}
		if !holds {
			continue
		}
		racks[i].TotalCost = rackTotalCost(r, prices)
		changed = true
	}
	if !changed {
		return nil
	}
	if err := s.Rack().Replace(ctx, racks); err != nil {
		return mapStoreError(err, "rack", racks[0].ID)
	}
	return nil
}

// rackTotalCost sums the price of every server listed by r. Unknown servers are ignored.
func rackTotalCost(r model.Rack, prices map[string]float64) float64 {
	total := 0.0
	for _, rs := range r.Servers {
		total += prices[rs.Name]
	}
	return total
}

func refsOf(names []string, catalog map[string]model.Component) []model.ComponentRef {
	refs := make([]model.ComponentRef, 0, len(names))
	for _, n := range names {
		refs = append(refs, model.ComponentRef{Name: n, Type: catalog[n].Type})
	}
	return refs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
