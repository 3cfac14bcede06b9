package store

import (
	"context"
	"fmt"
	"os"

	"github.com/dcsim/rack-planner/internal/config"
	"github.com/dcsim/rack-planner/internal/store/model"
	"go.uber.org/zap"
)

type Store interface {
	User() User
	Workspace() Workspace
	Rack() Rack
	Server() Server
	Component() Component
	Network() Network
	Collections() *CollectionStore
	Seed(ctx context.Context, state model.State) error
	Snapshot(ctx context.Context) (model.State, error)
	Statistics(ctx context.Context) (model.InventoryStats, error)
	Close() error
}

type DataStore struct {
	db        *CollectionStore
	user      User
	workspace Workspace
	rack      Rack
	server    Server
	component Component
	network   Network
}

func NewStore(db *CollectionStore) Store {
	return &DataStore{
		db:        db,
		user:      NewUserStore(db),
		workspace: NewWorkspaceStore(db),
		rack:      NewRackStore(db),
		server:    NewServerStore(db),
		component: NewComponentStore(db),
		network:   NewNetworkStore(db),
	}
}

// InitStore opens the collection directory described by cfg. Outside of test
// mode the directory is watched so that files rewritten by another process
// refresh the cache.
func InitStore(cfg *config.Config) (*CollectionStore, error) {
	dir := cfg.Storage.CollectionDir()
	log := zap.S().Named("store")

	if cfg.Storage.TestMode {
		log.Infof("opening collections in isolated mode: '%s'", dir)
		return NewCollectionStore(dir, true)
	}

	// the directory must exist before it can be watched
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating collection directory %s: %w", dir, err)
	}

	log.Infof("opening collections: '%s'", dir)
	watcher, err := NewFileWatcher(dir, cfg.Storage.WatchDebounce)
	if err != nil {
		log.Warnf("collection watcher disabled: %v", err)
		return NewCollectionStore(dir, false)
	}

	db, err := NewCollectionStore(dir, false, WithChangeNotifier(watcher))
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	watcher.Start(context.Background())

	return db, nil
}

func (s *DataStore) User() User {
	return s.user
}

func (s *DataStore) Workspace() Workspace {
	return s.workspace
}

func (s *DataStore) Rack() Rack {
	return s.rack
}

func (s *DataStore) Server() Server {
	return s.server
}

func (s *DataStore) Component() Component {
	return s.component
}

func (s *DataStore) Network() Network {
	return s.network
}

func (s *DataStore) Collections() *CollectionStore {
	return s.db
}

// Seed replaces every collection with the content of state.
func (s *DataStore) Seed(ctx context.Context, state model.State) error {
	return s.db.ResetAll(ctx, NewCollectionState(state))
}

func (s *DataStore) Snapshot(ctx context.Context) (model.State, error) {
	var (
		state model.State
		err   error
	)
	if state.Users, err = s.user.List(ctx); err != nil {
		return model.State{}, err
	}
	if state.Workspaces, err = s.workspace.List(ctx); err != nil {
		return model.State{}, err
	}
	if state.Racks, err = s.rack.List(ctx); err != nil {
		return model.State{}, err
	}
	if state.Servers, err = s.server.List(ctx); err != nil {
		return model.State{}, err
	}
	if state.Components, err = s.component.List(ctx); err != nil {
		return model.State{}, err
	}
	if state.Networks, err = s.network.List(ctx); err != nil {
		return model.State{}, err
	}
	return state, nil
}

func (s *DataStore) Statistics(ctx context.Context) (model.InventoryStats, error) {
	state, err := s.Snapshot(ctx)
	if err != nil {
		return model.InventoryStats{}, err
	}
	return model.NewInventoryStats(state), nil
}

func (s *DataStore) Close() error {
	return s.db.Close()
}

// CollectionState maps each collection to the records it should hold.
type CollectionState map[Collection]any

func NewCollectionState(state model.State) CollectionState {
	return CollectionState{
		CollectionUsers:      state.Users,
		CollectionWorkspaces: state.Workspaces,
		CollectionRacks:      state.Racks,
		CollectionServers:    state.Servers,
		CollectionComponents: state.Components,
		CollectionNetworks:   state.Networks,
	}
}
