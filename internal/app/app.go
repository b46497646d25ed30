// Package app is the native raylib viewer.
package app

import (
	"context"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/cncview/internal/session"
	"github.com/rs/zerolog"
)

// Options configures the viewer
type Options struct {
	// WatchFile is a local trajectory file loaded at start and on change
	WatchFile string
	Debounce  time.Duration
	// CommandTimeout bounds controller requests triggered from the keyboard
	CommandTimeout time.Duration
}

// App drives a session from a raylib window
type App struct {
	session *session.Session
	window  *Window
	log     zerolog.Logger
	opts    Options
	ctx     context.Context

	Interaction InteractionState
	Sketch      SketchState
	FileWatch   FileWatchState
	UI          UIState
}

// New creates a viewer for a session whose surface is window
func New(s *session.Session, window *Window, opts Options, log zerolog.Logger) *App {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 10 * time.Second
	}
	app := &App{
		session: s,
		window:  window,
		log:     log.With().Str("component", "viewer").Logger(),
		opts:    opts,
		UI:      UIState{showHelp: true},
	}
	app.FileWatch.sourceFile = opts.WatchFile
	window.Overlay = app.drawUI
	return app
}

// Run starts the application and blocks until the window is closed
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.ctx = ctx

	app.UI.font = rl.GetFontDefault()

	// Esc cancels a sketch instead of closing the window
	rl.SetExitKey(rl.KeyNull)

	if app.FileWatch.sourceFile != "" {
		app.loadSourceFile()
		if err := app.setupFileWatcher(app.opts.Debounce); err != nil {
			app.log.Warn().Err(err).Msg("Auto-reload will not be available")
		} else {
			defer app.FileWatch.fileWatcher.Close()
		}
	}

	app.session.Run(ctx)
	defer app.session.Close()

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			break
		}

		// Check for Ctrl+Q to exit
		ctrlPressed := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
		if ctrlPressed && rl.IsKeyPressed(rl.KeyQ) {
			break
		}

		if rl.IsWindowResized() {
			app.session.Scene.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
		}

		app.applyReload()
		app.handleInput()
		app.session.Loop.Tick()
	}

	return nil
}

// async runs a controller request without blocking the frame loop. Failures
// are recorded on the status display by the session.
func (app *App) async(name string, fn func(ctx context.Context) error) {
	app.UI.busy.Add(1)
	go func() {
		defer app.UI.busy.Add(-1)
		ctx, cancel := context.WithTimeout(app.ctx, app.opts.CommandTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			app.log.Warn().Err(err).Str("action", name).Msg("Action failed")
			return
		}
		app.log.Debug().Str("action", name).Msg("Action completed")
	}()
}
