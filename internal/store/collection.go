package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dcsim/rack-planner/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Collection string

const (
	CollectionUsers      Collection = "users"
	CollectionWorkspaces Collection = "workspaces"
	CollectionRacks      Collection = "racks"
	CollectionServers    Collection = "servers"
	CollectionComponents Collection = "components"
	CollectionNetworks   Collection = "networks"
)

var collectionFiles = map[Collection]string{
	CollectionUsers:      "userData.json",
	CollectionWorkspaces: "workspaceData.json",
	CollectionRacks:      "rackData.json",
	CollectionServers:    "serverData.json",
	CollectionComponents: "componentData.json",
	CollectionNetworks:   "networkData.json",
}

var collectionEntities = map[Collection]string{
	CollectionUsers:      "user",
	CollectionWorkspaces: "workspace",
	CollectionRacks:      "rack",
	CollectionServers:    "server",
	CollectionComponents: "component",
	CollectionNetworks:   "network",
}

var emptyCollection = json.RawMessage("[]")

// Collections returns every known collection in a stable order.
func Collections() []Collection {
	return []Collection{
		CollectionUsers,
		CollectionWorkspaces,
		CollectionRacks,
		CollectionServers,
		CollectionComponents,
		CollectionNetworks,
	}
}

// FileName returns the file backing the collection.
func (c Collection) FileName() (string, bool) {
	f, ok := collectionFiles[c]
	return f, ok
}

// CollectionStore maps collection keys to arrays of records kept in one JSON
// file per collection.
//
// In normal mode reads are served from an in-memory cache that is filled on
// first access and refreshed as a whole when the change notifier fires.
// In isolated mode every read goes to disk and nothing is cached.
type CollectionStore struct {
	dir      string
	isolated bool
	notifier ChangeNotifier
	log      *zap.SugaredLogger

	mu     sync.RWMutex
	cache  map[Collection]json.RawMessage
	loaded bool
	// writes counts successful Sets per collection so a reload can tell that
	// its file read is older than the cached entry.
	writes map[Collection]uint64
}

type CollectionStoreOption func(*CollectionStore)

// WithChangeNotifier reloads the cache whenever n reports an external change.
// It has no effect in isolated mode.
func WithChangeNotifier(n ChangeNotifier) CollectionStoreOption {
	return func(s *CollectionStore) {
		s.notifier = n
	}
}

func NewCollectionStore(dir string, isolated bool, opts ...CollectionStoreOption) (*CollectionStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating collection directory %s", dir)
	}

	s := &CollectionStore{
		dir:      dir,
		isolated: isolated,
		log:      zap.S().Named("collection_store"),
		cache:    make(map[Collection]json.RawMessage),
		writes:   make(map[Collection]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.isolated {
		s.notifier = nil
	}
	if s.notifier != nil {
		s.notifier.OnExternalChange(func() {
			if err := s.ReloadAll(context.Background()); err != nil {
				s.log.Errorw("failed to reload collections after external change", "error", err)
			}
		})
	}

	return s, nil
}

func (s *CollectionStore) Dir() string {
	return s.dir
}

// Get decodes the records of collection key into out, which must be a pointer to a slice.
// The decoded value never aliases the cache.
func (s *CollectionStore) Get(ctx context.Context, key Collection, out any) error {
	if _, ok := collectionFiles[key]; !ok {
		return newErrUnknownCollection(key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var raw json.RawMessage
	if s.isolated {
		raw = s.readIsolated(key)
	} else {
		r, err := s.cached(ctx, key)
		if err != nil {
			return err
		}
		raw = r
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if !s.isolated {
			return fmt.Errorf("decoding collection %s: %w", key, err)
		}
		s.log.Debugw("decoding collection failed, using empty collection", "collection", key, "error", err)
		// decoding "[]" truncates whatever the failed decode left in out
		if err := json.Unmarshal(emptyCollection, out); err != nil {
			return fmt.Errorf("decoding collection %s: %w", key, err)
		}
	}
	return nil
}

// Set replaces the whole collection on disk. records is encoded as a JSON array.
func (s *CollectionStore) Set(ctx context.Context, key Collection, records any) error {
	file, ok := collectionFiles[key]
	if !ok {
		return newErrUnknownCollection(key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeRecords(records)
	if err != nil {
		metrics.IncreaseCollectionWritesMetric(string(key), metrics.StatusFailure)
		return &PersistenceError{Collection: key, Op: "encode", Err: err}
	}

	if err := writeFileDurable(filepath.Join(s.dir, file), data); err != nil {
		metrics.IncreaseCollectionWritesMetric(string(key), metrics.StatusFailure)
		s.log.Errorw("failed to write collection", "collection", key, "error", err)
		return &PersistenceError{Collection: key, Op: "write", Err: err}
	}
	metrics.IncreaseCollectionWritesMetric(string(key), metrics.StatusSuccess)

	if !s.isolated {
		s.mu.Lock()
		s.cache[key] = json.RawMessage(data)
		s.writes[key]++
		s.mu.Unlock()
	}

	return nil
}

// ResetAll rewrites every collection from state and refreshes the cache.
func (s *CollectionStore) ResetAll(ctx context.Context, state CollectionState) error {
	for _, key := range Collections() {
		records, ok := state[key]
		if !ok || records == nil {
			records = emptyCollection
		}
		if err := s.Set(ctx, key, records); err != nil {
			return err
		}
	}
	if s.isolated {
		return nil
	}
	return s.ReloadAll(ctx)
}

// ReloadAll reads every collection file and swaps the cache in one step.
// A collection whose file cannot be read keeps its previously cached content,
// and so does one written by Set while the files were being read.
func (s *CollectionStore) ReloadAll(ctx context.Context) error {
	snap, err := s.readAll(ctx)
	if err != nil {
		metrics.IncreaseCollectionReloadsMetric(metrics.StatusFailure)
		return err
	}
	s.swap(snap)

	metrics.IncreaseCollectionReloadsMetric(metrics.StatusSuccess)
	s.log.Debugw("collections reloaded", "dir", s.dir)
	return nil
}

// reloadSnapshot holds the files read by a reload and the write counters seen
// before reading them.
type reloadSnapshot struct {
	keys     []Collection
	results  []json.RawMessage
	failures []error
	writes   map[Collection]uint64
}

func (s *CollectionStore) readAll(ctx context.Context) (*reloadSnapshot, error) {
	keys := Collections()
	snap := &reloadSnapshot{
		keys:     keys,
		results:  make([]json.RawMessage, len(keys)),
		failures: make([]error, len(keys)),
		writes:   make(map[Collection]uint64, len(keys)),
	}

	s.mu.RLock()
	for _, key := range keys {
		snap.writes[key] = s.writes[key]
	}
	s.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snap.results[i], snap.failures[i] = s.readFile(key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *CollectionStore) swap(snap *reloadSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[Collection]json.RawMessage, len(snap.keys))
	for i, key := range snap.keys {
		if s.writes[key] != snap.writes[key] {
			next[key] = s.cache[key]
			continue
		}
		if snap.failures[i] != nil {
			s.log.Warnw("keeping cached collection after read failure", "collection", key, "error", snap.failures[i])
			if prev, ok := s.cache[key]; ok {
				next[key] = prev
			} else {
				next[key] = emptyCollection
			}
			continue
		}
		next[key] = snap.results[i]
	}
	s.cache = next
	s.loaded = true
}

// Close releases the change notifier. Teardown failures are logged only.
func (s *CollectionStore) Close() error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.Close(); err != nil {
		s.log.Warnw("failed to release change notifier", "error", err)
	}
	return nil
}

func (s *CollectionStore) cached(ctx context.Context, key Collection) (json.RawMessage, error) {
	s.mu.RLock()
	if s.loaded {
		raw := s.cache[key]
		s.mu.RUnlock()
		return raw, nil
	}
	s.mu.RUnlock()

	if err := s.ReloadAll(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key], nil
}

// readIsolated never falls back to a previous value: any failure reads as an empty collection.
func (s *CollectionStore) readIsolated(key Collection) json.RawMessage {
	raw, err := s.readFile(key)
	if err != nil {
		s.log.Debugw("reading collection failed, using empty collection", "collection", key, "error", err)
		return emptyCollection
	}
	return raw
}

func (s *CollectionStore) readFile(key Collection) (json.RawMessage, error) {
	path := filepath.Join(s.dir, collectionFiles[key])
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyCollection, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return emptyCollection, nil
	}

	var probe []json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return json.RawMessage(data), nil
}

func encodeRecords(records any) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	if bytes.Equal(data, []byte("null")) {
		data = []byte("[]")
	}
	if data[0] != '[' {
		return nil, fmt.Errorf("records must encode to a JSON array, got %T", records)
	}
	return append(data, '\n'), nil
}

// writeFileDurable replaces path with data. The data goes to a temporary file
// in the same directory which is synced, closed and renamed over path, so a
// failure at any step leaves the previous content in place.
func writeFileDurable(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()

	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrap(err, "write")
	}
	if err = fdatasync(tmp); err != nil {
		return errors.Wrap(err, "sync")
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close")
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "rename")
	}

	// the rename is already visible; a failed directory sync only weakens durability
	if d, derr := os.Open(dir); derr == nil {
		if serr := d.Sync(); serr != nil {
			zap.S().Named("collection_store").Debugw("directory sync failed", "dir", dir, "error", serr)
		}
		_ = d.Close()
	}
	return nil
}
