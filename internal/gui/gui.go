// Package gui is the fyne desktop window around a session.
package gui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/cncview/internal/session"
	"github.com/philipparndt/cncview/pkg/scene"
	"github.com/philipparndt/cncview/pkg/viewer"
	"github.com/rs/zerolog"
)

// Window shows a path view next to the machine status and controls
type Window struct {
	window  fyne.Window
	view    *viewer.PathView
	session *session.Session
	log     zerolog.Logger
	timeout time.Duration

	statusLabel *widget.Label
	pathLabel   *widget.Label
	fileEntry   *widget.Entry
	trackCheck  *widget.Check
}

// New lays out the window for a session whose surface is view.Surface()
func New(w fyne.Window, view *viewer.PathView, s *session.Session, timeout time.Duration, log zerolog.Logger) *Window {
	g := &Window{
		window:      w,
		view:        view,
		session:     s,
		log:         log.With().Str("component", "gui").Logger(),
		timeout:     timeout,
		statusLabel: widget.NewLabel(""),
		pathLabel:   widget.NewLabel(""),
		fileEntry:   widget.NewEntry(),
	}

	view.SetControls(s.Scene)
	view.OnResize = s.Scene.Resize
	view.OnFrame = g.updateInfo

	g.fileEntry.SetPlaceHolder("Controller file name")
	g.trackCheck = widget.NewCheck("Track machining", func(on bool) {
		if on {
			s.StartTracking()
		} else {
			s.StopTracking()
		}
	})

	g.setupMainUI()
	return g
}

func (g *Window) setupMainUI() {
	openButton := widget.NewButton("Open Trajectory", g.showOpenDialog)
	uploadButton := widget.NewButton("Upload File", g.showUploadDialog)
	parseButton := widget.NewButton("Parse", func() {
		file := strings.TrimSpace(g.fileEntry.Text)
		g.run("parse", func(ctx context.Context) error {
			_, err := g.session.ParseFile(ctx, file)
			return err
		})
	})
	startButton := widget.NewButton("Start", func() {
		file := strings.TrimSpace(g.fileEntry.Text)
		g.run("start", func(ctx context.Context) error {
			return g.session.StartMachining(ctx, file)
		})
	})
	stopButton := widget.NewButton("Stop", func() {
		g.run("stop", g.session.StopMachining)
	})
	clearButton := widget.NewButton("Clear", func() {
		g.run("clear", g.session.Clear)
	})
	fitButton := widget.NewButton("Fit View", func() {
		g.session.ResetView()
	})

	g.statusLabel.TextStyle = fyne.TextStyle{Monospace: true}

	instructions := widget.NewLabel(
		"Instructions:\n" +
			"• Drag to rotate the view\n" +
			"• Scroll to zoom in/out\n" +
			"• Red lines are rapid moves, cyan lines are feed moves",
	)
	instructions.Wrapping = fyne.TextWrapWord

	infoPanel := container.NewVBox(
		widget.NewLabel("Machine:"),
		widget.NewSeparator(),
		g.statusLabel,
		widget.NewSeparator(),
		widget.NewLabel("Path:"),
		g.pathLabel,
		g.trackCheck,
		widget.NewSeparator(),
		g.fileEntry,
		container.NewGridWithColumns(2, startButton, stopButton),
		container.NewGridWithColumns(2, parseButton, clearButton),
		uploadButton,
		openButton,
		fitButton,
		widget.NewSeparator(),
		instructions,
	)

	infoScroll := container.NewVScroll(infoPanel)
	infoScroll.SetMinSize(fyne.NewSize(300, 0))

	g.window.SetContent(container.NewBorder(nil, nil, nil, infoScroll, g.view))
}

// updateInfo refreshes the side panel. It runs on the fyne goroutine.
func (g *Window) updateInfo(frame scene.Frame) {
	text := strings.Join(g.session.Display.View().Lines(), "\n")
	if g.statusLabel.Text != text {
		g.statusLabel.SetText(text)
	}

	path := fmt.Sprintf("%d points, %d segments (gen %d)",
		g.session.Renderer.PointCount(), len(frame.Lines), g.session.Renderer.Generation())
	if g.pathLabel.Text != path {
		g.pathLabel.SetText(path)
	}

	if tracking := g.session.Tracking(); g.trackCheck.Checked != tracking {
		g.trackCheck.Checked = tracking
		g.trackCheck.Refresh()
	}

	if cur := g.session.Display.View().CurrentFile; cur != "" && g.fileEntry.Text == "" {
		g.fileEntry.SetText(cur)
	}
}

// run performs a controller action off the fyne goroutine and reports
// failures in a dialog
func (g *Window) run(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			g.log.Warn().Err(err).Str("action", name).Msg("Action failed")
			fyne.Do(func() {
				dialog.ShowError(fmt.Errorf("%s: %w", name, err), g.window)
			})
		}
	}()
}

func (g *Window) showOpenDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if _, err := g.session.LoadLocalFile(path); err != nil {
			dialog.ShowError(fmt.Errorf("failed to load trajectory: %w", err), g.window)
		}
	}, g.window)
}

func (g *Window) showUploadDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		name := reader.URI().Name()
		reader.Close()

		g.fileEntry.SetText(name)
		g.run("upload", func(ctx context.Context) error {
			return g.session.UploadFile(ctx, path)
		})
	}, g.window)
}
