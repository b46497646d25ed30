package app

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/cncview/pkg/watcher"
)

// InteractionState holds mouse and interaction state
type InteractionState struct {
	mouseDownPos rl.Vector2
	mouseMoved   bool
	isPanning    bool
	lastMousePos rl.Vector2
}

// SketchState holds freehand drawing mode state
type SketchState struct {
	active  bool // drawing mode toggled on
	drawing bool // left button held while in drawing mode
}

// FileWatchState holds local trajectory reload state
type FileWatchState struct {
	sourceFile  string
	fileWatcher *watcher.FileWatcher
	needsReload atomic.Bool
}

// UIState holds HUD settings
type UIState struct {
	font     rl.Font
	showHelp bool
	busy     atomic.Int32 // controller requests in progress
}
