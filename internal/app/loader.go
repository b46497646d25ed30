package app

import (
	"fmt"
	"time"

	"github.com/philipparndt/cncview/pkg/watcher"
)

// loadSourceFile replaces the path with the watched file's points
func (app *App) loadSourceFile() {
	n, err := app.session.LoadLocalFile(app.FileWatch.sourceFile)
	if err != nil {
		app.log.Warn().Err(err).Str("file", app.FileWatch.sourceFile).Msg("Error loading trajectory")
		return
	}
	app.log.Info().Int("points", n).Msg("Trajectory loaded")
}

// setupFileWatcher reloads the source file whenever it changes
func (app *App) setupFileWatcher(debounce time.Duration) error {
	fw, err := watcher.NewFileWatcher(debounce, app.log)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Reload on the main loop; the callback runs on a timer goroutine
	callback := func(string) {
		app.FileWatch.needsReload.Store(true)
	}

	if err := fw.Watch([]string{app.FileWatch.sourceFile}, callback); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch files: %w", err)
	}

	fw.Start()
	app.FileWatch.fileWatcher = fw
	app.log.Info().Str("file", app.FileWatch.sourceFile).Msg("Watching file for changes")
	return nil
}

// applyReload reloads the source file if it changed since the last frame
func (app *App) applyReload() {
	if app.FileWatch.needsReload.CompareAndSwap(true, false) {
		app.loadSourceFile()
	}
}
