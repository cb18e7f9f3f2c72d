// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the burst of events an editor save produces.
const defaultDebounce = 200 * time.Millisecond

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Path is the config file to watch. Required.
	Path string

	// OnChange receives each successfully reloaded configuration. Required.
	OnChange func(*Config)

	// Logger is used for structured logging (optional)
	Logger *slog.Logger

	// Debounce is the quiet period before reloading (defaults to 200ms)
	Debounce time.Duration
}

// Watcher reloads a config file when it changes on disk. A file that fails
// to load or validate is logged and ignored; the last good config stays in
// effect.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	onChange  func(*Config)
	logger    *slog.Logger
	debounce  time.Duration

	mu    sync.Mutex
	timer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching cfg.Path.
//
// The parent directory is watched rather than the file, so saves that
// replace the file by rename are seen.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change handler is required")
	}

	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", cfg.Path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = defaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsWatcher: fsWatcher,
		path:      path,
		onChange:  cfg.OnChange,
		logger:    logger.With("component", "config-watcher"),
		debounce:  debounce,
		ctx:       ctx,
		cancel:    cancel,
	}

	w.wg.Add(1)
	go w.processEvents()

	w.logger.Debug("watching config file", slog.String("path", path))
	return w, nil
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", slog.Any("error", err))

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("ignoring invalid config change",
			slog.String("path", w.path),
			slog.Any("error", err),
		)
		return
	}

	w.logger.Info("config reloaded", slog.String("path", w.path))
	w.onChange(cfg)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}
