package service

import (
	"context"
	"errors"

	"github.com/dcsim/rack-planner/internal/service/mappers"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/dcsim/rack-planner/internal/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RackService struct {
	store     store.Store
	validator *validator.Validator
}

func NewRackService(store store.Store) *RackService {
	return &RackService{store: store, validator: validator.NewInventoryValidator()}
}

func (r *RackService) ListRacks(ctx context.Context) ([]model.Rack, error) {
	return r.store.Rack().List(ctx)
}

func (r *RackService) GetRack(ctx context.Context, id string) (*model.Rack, error) {
	rack, err := r.store.Rack().Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "rack", id)
	}
	return rack, nil
}

// CreateRack registers the rack in its workspace first, then stores the rack.
// The two collections are written independently.
func (r *RackService) CreateRack(ctx context.Context, form mappers.RackCreateForm) (*model.Rack, error) {
	workspaces, err := r.store.Workspace().List(ctx)
	if err != nil {
		return nil, err
	}
	wi, err := r.store.Workspace().IndexOf(ctx, form.WorkspaceName)
	if err != nil {
		return nil, mapStoreError(err, "workspace", form.WorkspaceName)
	}
	if err := r.store.Rack().AssertNotExists(ctx, form.Name, form.WorkspaceName); err != nil {
		return nil, mapStoreError(err, "rack", form.WorkspaceName+"/"+form.Name)
	}

	rack := mappers.RackFromForm(uuid.NewString(), form)
	if err := r.validate(rack); err != nil {
		return nil, err
	}

	racks, err := r.store.Rack().List(ctx)
	if err != nil {
		return nil, err
	}

	if !workspaces[wi].HasRack(rack.Name) {
		workspaces[wi].Racks = append(workspaces[wi].Racks, rack.Name)
		if err := r.store.Workspace().Replace(ctx, workspaces); err != nil {
			return nil, mapStoreError(err, "workspace", form.WorkspaceName)
		}
	}
	if err := r.store.Rack().Replace(ctx, append(racks, rack)); err != nil {
		return nil, mapStoreError(err, "rack", rack.ID)
	}

	zap.S().Named("rack_service").Infow("rack created", "rack", rack.Name, "id", rack.ID, "workspace", rack.WorkspaceName)
	return &rack, nil
}

func (r *RackService) UpdateRack(ctx context.Context, id string, form mappers.RackUpdateForm) (*model.Rack, error) {
	racks, err := r.store.Rack().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := r.store.Rack().IndexOf(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "rack", id)
	}

	rack := *mappers.UpdateRackFromForm(&racks[i], form)
	if used := rack.UsedUnits(); rack.Units < used {
		return nil, NewErrValidation("rack %s needs at least %d units for its servers", rack.Name, used)
	}
	if err := r.validate(rack); err != nil {
		return nil, err
	}

	racks[i] = rack
	if err := r.store.Rack().Replace(ctx, racks); err != nil {
		return nil, mapStoreError(err, "rack", id)
	}
	return &rack, nil
}

// DeleteRack removes the rack. Dropping it from its workspace and releasing its
// servers are best effort: a dangling reference is logged and left alone.
func (r *RackService) DeleteRack(ctx context.Context, id string) error {
	racks, err := r.store.Rack().List(ctx)
	if err != nil {
		return err
	}
	i, err := r.store.Rack().IndexOf(ctx, id)
	if err != nil {
		return mapStoreError(err, "rack", id)
	}
	rack := racks[i]

	if err := r.store.Rack().Replace(ctx, append(racks[:i], racks[i+1:]...)); err != nil {
		return mapStoreError(err, "rack", id)
	}

	log := zap.S().Named("rack_service")
	if err := r.removeFromWorkspace(ctx, rack); err != nil {
		log.Warnw("failed to remove rack from workspace", "rack", rack.Name, "workspace", rack.WorkspaceName, "error", err)
	}
	if err := r.releaseServers(ctx, rack); err != nil {
		log.Warnw("failed to release servers of deleted rack", "rack", rack.Name, "error", err)
	}
	return nil
}

// AddServer mounts a server in the rack if enough units are free.
func (r *RackService) AddServer(ctx context.Context, id string, form mappers.RackServerForm) (*model.Rack, error) {
	racks, err := r.store.Rack().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := r.store.Rack().IndexOf(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "rack", id)
	}
	rack := racks[i]

	servers, err := r.store.Server().List(ctx)
	if err != nil {
		return nil, err
	}
	si, err := r.store.Server().IndexOf(ctx, form.Name)
	if err != nil {
		return nil, mapStoreError(err, "server", form.Name)
	}

	for _, other := range racks {
		if other.ServerIndex(form.Name) >= 0 {
			return nil, NewErrResourceConflict("server %s is already mounted in rack %s", form.Name, other.Name)
		}
	}

	units := form.Units
	if units <= 0 {
		units = model.DefaultServerUnits
	}
	if free := rack.FreeUnits(); free < units {
		return nil, NewErrValidation("rack %s has %d free units, server %s needs %d", rack.Name, free, form.Name, units)
	}

	rack.Servers = append(append([]model.RackServer{}, rack.Servers...), model.RackServer{Name: form.Name, Units: units})
	rack.TotalCost += servers[si].TotalPrice
	racks[i] = rack
	if err := r.store.Rack().Replace(ctx, racks); err != nil {
		return nil, mapStoreError(err, "rack", id)
	}

	servers[si].RackName = rack.Name
	if err := r.store.Server().Replace(ctx, servers); err != nil {
		return nil, mapStoreError(err, "server", form.Name)
	}

	zap.S().Named("rack_service").Infow("server mounted", "rack", rack.Name, "server", form.Name, "units", units)
	return &rack, nil
}

// RemoveServer unmounts a server. A server record that no longer exists only
// affects the rack side.
func (r *RackService) RemoveServer(ctx context.Context, id string, serverName string) (*model.Rack, error) {
	racks, err := r.store.Rack().List(ctx)
	if err != nil {
		return nil, err
	}
	i, err := r.store.Rack().IndexOf(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "rack", id)
	}
	rack := racks[i]

	idx := rack.ServerIndex(serverName)
	if idx < 0 {
		return nil, NewErrResourceNotFound(serverName, "server in rack "+rack.Name)
	}

	servers, err := r.store.Server().List(ctx)
	if err != nil {
		return nil, err
	}
	si := -1
	for j := range servers {
		if servers[j].Name == serverName {
			si = j
			break
		}
	}

	rack.Servers = append(append([]model.RackServer{}, rack.Servers[:idx]...), rack.Servers[idx+1:]...)
	if si >= 0 {
		rack.TotalCost = max(rack.TotalCost-servers[si].TotalPrice, 0)
	}
	racks[i] = rack
	if err := r.store.Rack().Replace(ctx, racks); err != nil {
		return nil, mapStoreError(err, "rack", id)
	}

	if si >= 0 && servers[si].RackName == rack.Name {
		servers[si].RackName = ""
		if err := r.store.Server().Replace(ctx, servers); err != nil {
			return nil, mapStoreError(err, "server", serverName)
		}
	}
	return &rack, nil
}

// MaintenanceCost sums the maintenance cost of every component of every server
// in the rack. Servers and components that cannot be found are skipped.
func (r *RackService) MaintenanceCost(ctx context.Context, id string) (float64, error) {
	rack, err := r.GetRack(ctx, id)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, rs := range rack.Servers {
		server, err := r.store.Server().Get(ctx, rs.Name)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				continue
			}
			return 0, err
		}
		catalog, err := r.store.Component().Resolve(ctx, server.Components)
		if err != nil {
			return 0, err
		}
		_, maintenance := sumCosts(server.Components, catalog)
		total += maintenance
	}
	return total, nil
}

func (r *RackService) removeFromWorkspace(ctx context.Context, rack model.Rack) error {
	workspaces, err := r.store.Workspace().List(ctx)
	if err != nil {
		return err
	}
	wi, err := r.store.Workspace().IndexOf(ctx, rack.WorkspaceName)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(workspaces[wi].Racks))
	for _, name := range workspaces[wi].Racks {
		if name != rack.Name {
			kept = append(kept, name)
		}
	}
	workspaces[wi].Racks = kept
	return r.store.Workspace().Replace(ctx, workspaces)
}

func (r *RackService) releaseServers(ctx context.Context, rack model.Rack) error {
	if len(rack.Servers) == 0 {
		return nil
	}
	servers, err := r.store.Server().List(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range servers {
		if rack.ServerIndex(servers[i].Name) >= 0 && servers[i].RackName == rack.Name {
			servers[i].RackName = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.store.Server().Replace(ctx, servers)
}

func (r *RackService) validate(rack model.Rack) error {
	if err := r.validator.Struct(rack); err != nil {
		return &ErrValidation{err}
	}
	return nil
}

// detachFromRacks drops server from every rack listing it and lowers their total cost.
func detachFromRacks(ctx context.Context, s store.Store, server model.Server) error {
	racks, err := s.Rack().List(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range racks {
		idx := racks[i].ServerIndex(server.Name)
		if idx < 0 {
			continue
		}
		racks[i].Servers = append(racks[i].Servers[:idx], racks[i].Servers[idx+1:]...)
		racks[i].TotalCost = max(racks[i].TotalCost-server.TotalPrice, 0)
		changed = true
	}
	if !changed {
		return nil
	}
	return s.Rack().Replace(ctx, racks)
}
