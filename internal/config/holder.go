package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/templay/pkg/logger"
)

// DefaultDebounce is how long Watch waits after the last file event before reloading.
const DefaultDebounce = 250 * time.Millisecond

// LoadFunc produces a fresh configuration for Holder.Reload.
type LoadFunc func(path string) (Configuration, error)

// Holder keeps the current configuration and swaps it atomically on reload.
// Reads are concurrent; reloads are serialized.
type Holder struct {
	mu      sync.RWMutex
	current Configuration

	path     string
	load     LoadFunc
	debounce time.Duration
	log      logr.Logger

	reloadMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []chan<- Configuration

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// HolderOption customizes a Holder.
type HolderOption func(*Holder)

// WithLoadFunc replaces LoadMerged as the reload source.
func WithLoadFunc(fn LoadFunc) HolderOption {
	return func(h *Holder) { h.load = fn }
}

// WithDebounce sets the quiet period Watch waits for before reloading.
func WithDebounce(d time.Duration) HolderOption {
	return func(h *Holder) { h.debounce = d }
}

// NewHolder returns a holder seeded with initial that reloads from path.
func NewHolder(ctx context.Context, initial Configuration, path string, opts ...HolderOption) *Holder {
	h := &Holder{
		current:  initial.Clone(),
		path:     path,
		load:     LoadMerged,
		debounce: DefaultDebounce,
		log:      logger.Component(ctx, "config"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Get returns a copy of the current configuration.
func (h *Holder) Get() Configuration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Path returns the watched file.
func (h *Holder) Path() string { return h.path }

// Reload loads and validates the file, then swaps it in. On any failure the
// previous configuration stays current and the error is returned.
func (h *Holder) Reload(_ context.Context) error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	next, err := h.load(h.path)
	if err != nil {
		h.log.Error(err, "config reload failed", logger.PathKey, h.path)
		return fmt.Errorf("load config: %w", err)
	}
	if err := Validate(next).Err(); err != nil {
		h.log.Error(err, "reloaded config is invalid, keeping previous", logger.PathKey, h.path)
		return fmt.Errorf("validate config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next.Clone()
	h.mu.Unlock()

	h.log.Info("config reloaded",
		logger.PathKey, h.path,
		"version", next.Version,
		"templates", len(next.Templates),
		"changed", !Equal(prev, next),
	)
	h.notify(next)
	return nil
}

// Subscribe registers ch to receive each successfully reloaded configuration.
// Sends never block; a full channel misses the update. The caller owns ch.
func (h *Holder) Subscribe(ch chan<- Configuration) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg Configuration) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg.Clone():
		default:
			h.log.V(1).Info("config listener is full, dropping update")
		}
	}
}

// Watch starts reloading whenever the file changes. The parent directory is watched
// so editors that replace the file by rename are still observed. Watch returns once the
// watcher is running; stop it with Close or by cancelling ctx.
func (h *Holder) Watch(ctx context.Context) error {
	if h.path == "" {
		return fmt.Errorf("watch config: no config file to watch")
	}
	if h.watcher != nil {
		return fmt.Errorf("watch config: already watching %s", h.path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(h.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	h.watcher = w
	h.cancel = cancel
	h.done = make(chan struct{})

	h.log.Info("watching config file", logger.PathKey, h.path)
	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	defer close(h.done)

	target := filepath.Clean(h.path)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.log.V(1).Info("config watcher stopped")
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				h.log.V(1).Info("config file changed", "op", event.Op.String())
				if timer == nil {
					timer = time.NewTimer(h.debounce)
				} else {
					timer.Reset(h.debounce)
				}
				fire = timer.C
			}

		case <-fire:
			fire = nil
			// errors are logged by Reload
			_ = h.Reload(ctx)

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.log.Error(err, "config watcher error")
		}
	}
}

// Close stops the watcher and waits for the watch loop to exit.
func (h *Holder) Close() error {
	if h.watcher == nil {
		return nil
	}
	h.cancel()
	<-h.done
	err := h.watcher.Close()
	h.watcher = nil
	return err
}
