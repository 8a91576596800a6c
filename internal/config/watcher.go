package config

import (
	"io"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk and hands the new
// value to onChange. Parse errors are logged and the previous config stays
// in effect.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*Config)
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	exited  chan struct{}
}

// NewWatcher creates a Watcher for path.
func NewWatcher(path string, onChange func(*Config), logger *log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Watcher{
		watcher:  w,
		path:     path,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched since editors and
// Save replace the file by rename.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.exited)
	name := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Printf("config: reload %s: %v", w.path, err)
				continue
			}
			w.logger.Printf("config: reloaded %s", w.path)
			w.onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("config: watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

// Stop ends the watch. onChange is not called after Stop returns.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	<-w.exited
	return w.watcher.Close()
}
