package store

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultWatchDebounce = 100 * time.Millisecond

// ChangeNotifier reports that collection files were changed by another writer.
type ChangeNotifier interface {
	OnExternalChange(fn func())
	Close() error
}

// FileWatcher watches the collection directory and notifies subscribers once a
// burst of changes to any collection file has settled.
//
// The directory is watched rather than the files themselves because durable
// writes replace a file by renaming over it, which drops a per-file watch.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	names    map[string]struct{}
	debounce time.Duration
	log      *zap.SugaredLogger

	mu          sync.Mutex
	subscribers []func()

	changes  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

var _ ChangeNotifier = (*FileWatcher)(nil)

func NewFileWatcher(dir string, debounce time.Duration) (*FileWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	names := make(map[string]struct{}, len(collectionFiles))
	for _, f := range collectionFiles {
		names[f] = struct{}{}
	}

	return &FileWatcher{
		watcher:  watcher,
		names:    names,
		debounce: debounce,
		log:      zap.S().Named("collection_watcher"),
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

func (w *FileWatcher) OnExternalChange(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers = append(w.subscribers, fn)
}

// Start runs the event loop until ctx is canceled or Close is called.
func (w *FileWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
}

// Close releases the underlying watch handle. Safe to call more than once.
func (w *FileWatcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if _, known := w.names[filepath.Base(event.Name)]; !known {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debugw("collection file changed", "file", event.Name, "op", event.Op.String())

			// one pending signal is enough, the reload covers every collection
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("watch error", "error", err)
		}
	}
}

func (w *FileWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-w.done:
			stop()
			return
		case <-w.changes:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.notify()
		}
	}
}

func (w *FileWatcher) notify() {
	w.mu.Lock()
	subscribers := make([]func(), len(w.subscribers))
	copy(subscribers, w.subscribers)
	w.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}
