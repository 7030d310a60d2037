package netconfig

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/snapnet/replicore/internal/logger"
)

// Manager holds the live Config and reloads it from disk whenever the
// backing file changes, watching the file's directory rather than the file
// itself since editors commonly save by renaming a temp file over it,
// which a direct file watch can miss.
type Manager struct {
	mu     sync.RWMutex
	path   string
	cfg    Config
	watch  *fsnotify.Watcher
	onLoad func(Config)
}

// NewManager loads path once and starts watching its directory for
// changes. Reloads only replace the Manager's stored Config — callers must
// call Current() at the next safe boundary (a tick start, per the ambient
// single-threaded model) rather than reading concurrently from a hot loop.
func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	m := &Manager{path: path, cfg: cfg, watch: watcher}
	go m.run()
	return m, nil
}

// OnLoad registers a callback invoked every time the config is
// successfully reloaded.
func (m *Manager) OnLoad(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLoad = fn
}

// Current returns the most recently loaded Config.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Close stops the directory watch.
func (m *Manager) Close() error {
	return m.watch.Close()
}

func (m *Manager) run() {
	for event := range m.watch.Events {
		if filepath.Clean(event.Name) != filepath.Clean(m.path) {
			continue
		}
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		cfg, err := Load(m.path)
		if err != nil {
			logger.Warn("netconfig: reload failed", "path", m.path, "error", err)
			continue
		}
		m.mu.Lock()
		m.cfg = cfg
		cb := m.onLoad
		m.mu.Unlock()
		logger.Info("netconfig: reloaded", "path", m.path)
		if cb != nil {
			cb(cfg)
		}
	}
}
