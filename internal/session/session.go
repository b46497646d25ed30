// Package session wires the store, scene, renderer, pollers and render loop
// of one view.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/philipparndt/cncview/internal/client"
	"github.com/philipparndt/cncview/internal/config"
	"github.com/philipparndt/cncview/internal/logging"
	"github.com/philipparndt/cncview/internal/poller"
	"github.com/philipparndt/cncview/internal/renderloop"
	"github.com/philipparndt/cncview/internal/sketch"
	"github.com/philipparndt/cncview/internal/status"
	"github.com/philipparndt/cncview/pkg/pathrender"
	"github.com/philipparndt/cncview/pkg/scene"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/philipparndt/cncview/pkg/viewfit"
	"github.com/rs/zerolog"
)

var (
	// ErrOffline is returned by controller operations when no backend is configured
	ErrOffline = errors.New("no controller configured")
	// ErrNoFile is returned when machining is started without a selected file
	ErrNoFile = errors.New("no file selected")
)

// Backend is the controller API used by a session
type Backend interface {
	poller.Source
	Start(ctx context.Context, filename string) error
	Stop(ctx context.Context) error
	ClearTrajectory(ctx context.Context) error
	Upload(ctx context.Context, filePath string) error
	Parse(ctx context.Context, filename string) (client.ParseResult, error)
}

// Options configures a session
type Options struct {
	Config  *config.Config
	Surface scene.Surface
	// Backend may be nil for a purely local view
	Backend Backend
	// SelfDriven means the surface runs its own frame loop and calls
	// Loop.Tick; otherwise Run schedules frames
	SelfDriven bool
	Logger     zerolog.Logger
}

// Session owns every component of one view
type Session struct {
	cfg     *config.Config
	log     zerolog.Logger
	backend Backend

	Store    *toolpath.Store
	Scene    *scene.Manager
	Fitter   *viewfit.Fitter
	Renderer *pathrender.Renderer
	Display  *status.Display
	Loop     *renderloop.Loop
	Sketch   *sketch.Sketch

	tracker *poller.Poller
	monitor *poller.Poller

	selfDriven bool

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// New builds a session and initializes the scene on opts.Surface. A surface
// that cannot be used yields a *scene.InitializationError.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger

	sm := scene.NewManager(scene.Options{
		FieldOfView: cfg.View.FieldOfView,
		Damping:     cfg.View.Damping,
		Background:  scene.DefaultOptions().Background,
	})
	if err := sm.Initialize(opts.Surface); err != nil {
		return nil, err
	}

	store := toolpath.NewStore()
	fitter := viewfit.New(store, sm)
	renderer := pathrender.New(sm, fitter)
	renderer.Attach(store)

	s := &Session{
		cfg:        cfg,
		log:        logging.Component(log, "session"),
		backend:    opts.Backend,
		Store:      store,
		Scene:      sm,
		Fitter:     fitter,
		Renderer:   renderer,
		Display:    status.NewDisplay(),
		Loop:       renderloop.New(sm, cfg.View.FrameRate),
		Sketch:     sketch.New(0),
		selfDriven: opts.SelfDriven,
	}

	if s.backend != nil {
		s.tracker = poller.New(s.backend, poller.Options{
			Interval:       cfg.Poll.Interval,
			StopOnTerminal: true,
			Store:          store,
			Display:        s.Display,
			OnTerminal:     func(status.Snapshot) { s.resumeMonitor() },
		}, logging.Component(log, "tracker"))

		s.monitor = poller.New(s.backend, poller.Options{
			Interval:   cfg.Poll.StatusInterval,
			Display:    s.Display,
			OnSnapshot: s.onMonitorSnapshot,
		}, logging.Component(log, "monitor"))
	}

	return s, nil
}

// Run starts the coarse status poller and, unless the surface drives itself,
// the render loop. It returns immediately.
func (s *Session) Run(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.ctx != nil {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	if !s.selfDriven {
		s.Loop.Start(runCtx)
	}
	if s.monitor != nil {
		s.monitor.Start(runCtx)
	}
	s.log.Info().Bool("online", s.backend != nil).Msg("Session started")
}

func (s *Session) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Session) onMonitorSnapshot(snap status.Snapshot) {
	if snap.HasState && snap.State.Active() && !s.tracker.Running() {
		s.log.Info().Str("state", snap.RawState).Msg("Machine running, starting tracking")
		s.StartTracking()
	}
}

func (s *Session) resumeMonitor() {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.monitor == nil {
		return
	}
	s.monitor.Start(s.runContext())
}

// Tracking reports whether the fine-grained poller is active
func (s *Session) Tracking() bool {
	return s.tracker != nil && s.tracker.Running()
}

// StartTracking switches from coarse status polling to path tracking with an
// immediate first poll
func (s *Session) StartTracking() {
	if s.tracker == nil {
		return
	}
	s.monitor.Stop()
	s.tracker.Start(s.runContext())
}

// StopTracking stops path tracking and resumes coarse status polling
func (s *Session) StopTracking() {
	if s.tracker == nil {
		return
	}
	s.tracker.Stop()
	s.resumeMonitor()
}

func (s *Session) fail(err error) error {
	s.Display.SetError(err)
	return err
}

// Clear asks the controller to drop its recorded path and then clears the
// local path. A rejected command leaves the view untouched.
func (s *Session) Clear(ctx context.Context) error {
	if s.backend != nil {
		if err := s.backend.ClearTrajectory(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Failed to clear trajectory")
			return s.fail(err)
		}
	}
	gen := s.Store.Clear()
	s.log.Info().Uint64("generation", gen).Msg("Trajectory cleared")
	return nil
}

// StartMachining starts filename, or the displayed current file when
// filename is empty, and begins tracking
func (s *Session) StartMachining(ctx context.Context, filename string) error {
	if s.backend == nil {
		return ErrOffline
	}
	if filename == "" {
		filename = s.Display.View().CurrentFile
	}
	if filename == "" {
		return s.fail(ErrNoFile)
	}
	if err := s.backend.Start(ctx, filename); err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("Failed to start machining")
		return s.fail(err)
	}
	s.Display.SetCurrentFile(filename)
	s.Display.ClearError()
	s.log.Info().Str("file", filename).Msg("Machining started")
	s.StartTracking()
	return nil
}

// StopMachining halts the machine and stops tracking
func (s *Session) StopMachining(ctx context.Context) error {
	if s.backend == nil {
		return ErrOffline
	}
	if err := s.backend.Stop(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to stop machining")
		return s.fail(err)
	}
	s.log.Info().Msg("Machining stopped")
	s.StopTracking()
	return nil
}

// UploadFile sends a program to the controller and selects it. It does not
// parse the file.
func (s *Session) UploadFile(ctx context.Context, path string) error {
	if s.backend == nil {
		return ErrOffline
	}
	if err := s.backend.Upload(ctx, path); err != nil {
		s.log.Warn().Err(err).Str("file", path).Msg("Upload failed")
		return s.fail(err)
	}
	name := filepath.Base(path)
	s.Display.SetCurrentFile(name)
	s.log.Info().Str("file", name).Msg("File uploaded")
	return nil
}

// ParseFile asks the controller for the path of filename and shows it as a
// new generation. It returns the number of points shown.
func (s *Session) ParseFile(ctx context.Context, filename string) (int, error) {
	if s.backend == nil {
		return 0, ErrOffline
	}
	if filename == "" {
		filename = s.Display.View().CurrentFile
	}
	if filename == "" {
		return 0, s.fail(ErrNoFile)
	}
	res, err := s.backend.Parse(ctx, filename)
	if err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("Parse failed")
		return 0, s.fail(err)
	}
	s.logMalformed(res.Malformed)
	gen := s.Store.Replace(res.Points)
	n := s.Store.Len()
	s.log.Info().Str("file", filename).Int("points", n).Uint64("generation", gen).Msg("Parsed file")
	return n, nil
}

// LoadLocalFile replaces the path with the points stored in a JSON file
func (s *Session) LoadLocalFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, s.fail(fmt.Errorf("failed to open trajectory: %w", err))
	}
	defer f.Close()

	points, malformed, err := toolpath.ReadPoints(f)
	if err != nil {
		s.log.Warn().Err(err).Str("file", path).Msg("Failed to load trajectory")
		return 0, s.fail(err)
	}
	s.logMalformed(malformed)
	s.Store.Replace(points)
	n := s.Store.Len()
	s.log.Info().Str("file", path).Int("points", n).Msg("Loaded trajectory")
	return n, nil
}

// SubmitSketch ends the drawing in progress and shows it as a new generation
func (s *Session) SubmitSketch() ([]toolpath.MotionPoint, error) {
	path, err := s.Sketch.End()
	if err != nil {
		return nil, err
	}
	s.Store.Replace(path)
	s.log.Info().Int("points", len(path)).Msg("Sketch submitted")
	return path, nil
}

// ResetView frames the current path
func (s *Session) ResetView() viewfit.ViewFrame {
	return s.Fitter.ResetView()
}

func (s *Session) logMalformed(malformed []*toolpath.MalformedPointError) {
	for _, m := range malformed {
		s.log.Debug().Int("index", m.Index).Str("reason", m.Reason).Msg("Dropped malformed point")
	}
	if len(malformed) > 0 {
		s.log.Warn().Int("count", len(malformed)).Msg("Dropped malformed points")
	}
}

// Close stops polling and drawing and releases the scene and surface
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.Stop()
		s.monitor.Stop()
	}
	s.Loop.Stop()
	if cancel != nil {
		cancel()
	}
	if s.tracker != nil {
		s.tracker.Wait()
		s.monitor.Wait()
	}

	s.Renderer.Clear()
	err := s.Scene.Close()
	s.log.Info().Msg("Session closed")
	return err
}
