// Package watcher reloads local trajectory files when they change on disk.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// FileWatcher watches files and calls back once per burst of changes
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	log       zerolog.Logger
	mu        sync.Mutex
	callbacks map[string]func(string)
	dirs      map[string]int
	debounce  time.Duration
	timers    map[string]*time.Timer
	closed    bool
	done      chan struct{}
}

// NewFileWatcher creates a watcher that waits debounce after the last event
// before calling back
func NewFileWatcher(debounce time.Duration, log zerolog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:   watcher,
		log:       log,
		callbacks: make(map[string]func(string)),
		dirs:      make(map[string]int),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}, nil
}

// Watch registers files; callback receives the absolute path of a changed
// file. The parent directory is watched so files replaced by rename (as most
// editors and exporters do) keep being tracked.
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}

		if _, ok := fw.callbacks[absPath]; !ok {
			dir := filepath.Dir(absPath)
			if fw.dirs[dir] == 0 {
				if err := fw.watcher.Add(dir); err != nil {
					return fmt.Errorf("failed to watch %s: %w", dir, err)
				}
			}
			fw.dirs[dir]++
		}

		fw.callbacks[absPath] = callback
		fw.log.Debug().Str("file", absPath).Msg("Watching file")
	}

	return nil
}

// Start begins delivering change callbacks
func (fw *FileWatcher) Start() {
	go func() {
		defer close(fw.done)
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					fw.handleFileChange(filepath.Clean(event.Name))
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.log.Warn().Err(err).Msg("Watcher error")
			}
		}
	}()
}

// handleFileChange handles a file change event with debouncing
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return
	}
	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	if timer, exists := fw.timers[filePath]; exists {
		timer.Stop()
	}

	fw.timers[filePath] = time.AfterFunc(fw.debounce, func() {
		fw.log.Info().Str("file", filePath).Msg("File changed")
		callback(filePath)
	})
}

// Close stops the watcher and pending callbacks
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.mu.Unlock()

	return fw.watcher.Close()
}

// Done is closed once the event loop started by Start has exited
func (fw *FileWatcher) Done() <-chan struct{} {
	return fw.done
}

// RemoveAll stops watching every file
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for dir := range fw.dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			return err
		}
	}
	for _, timer := range fw.timers {
		timer.Stop()
	}

	fw.callbacks = make(map[string]func(string))
	fw.dirs = make(map[string]int)
	fw.timers = make(map[string]*time.Timer)
	return nil
}
