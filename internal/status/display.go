package status

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/philipparndt/cncview/pkg/geometry"
)

// FormatProgress renders a [0,1] progress value as a whole percentage
func FormatProgress(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(clampProgress(p)*100)))
}

// View is an immutable copy of the displayed values
type View struct {
	State       State
	RawState    string
	Position    geometry.Vector3
	HasPosition bool
	FeedRate    float64
	HasFeedRate bool
	Progress    float64
	HasProgress bool
	CurrentFile string
	LastError   string
	ErrorAt     time.Time
	UpdatedAt   time.Time
}

// ProgressText returns the progress as shown to the operator
func (v View) ProgressText() string {
	if !v.HasProgress {
		return "-"
	}
	return FormatProgress(v.Progress)
}

// Lines returns the view as text rows for a heads-up display
func (v View) Lines() []string {
	lines := []string{fmt.Sprintf("State: %s", v.State)}
	if v.HasPosition {
		lines = append(lines, fmt.Sprintf("X %.3f  Y %.3f  Z %.3f", v.Position.X, v.Position.Y, v.Position.Z))
	}
	if v.HasFeedRate {
		lines = append(lines, fmt.Sprintf("Feed: %g", v.FeedRate))
	}
	lines = append(lines, fmt.Sprintf("Progress: %s", v.ProgressText()))
	if v.CurrentFile != "" {
		lines = append(lines, fmt.Sprintf("File: %s", v.CurrentFile))
	}
	if v.LastError != "" {
		lines = append(lines, fmt.Sprintf("Error: %s", v.LastError))
	}
	return lines
}

// Display holds the last known value of every status field. Fields missing
// from a snapshot keep their previous value.
type Display struct {
	mu   sync.RWMutex
	view View
	now  func() time.Time
}

// NewDisplay creates a display in the unknown state
func NewDisplay() *Display {
	return &Display{view: View{State: StateUnknown}, now: time.Now}
}

// Apply copies the fields present in s
func (d *Display) Apply(s Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.HasState {
		d.view.State = s.State
		d.view.RawState = s.RawState
	}
	if s.Position != nil {
		d.view.Position = *s.Position
		d.view.HasPosition = true
	}
	if s.FeedRate != nil {
		d.view.FeedRate = *s.FeedRate
		d.view.HasFeedRate = true
	}
	if s.Progress != nil {
		d.view.Progress = *s.Progress
		d.view.HasProgress = true
	}
	if s.CurrentFile != "" {
		d.view.CurrentFile = s.CurrentFile
	}
	d.view.UpdatedAt = d.now()
}

// SetCurrentFile records a file selected locally, e.g. after an upload
func (d *Display) SetCurrentFile(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name != "" {
		d.view.CurrentFile = name
	}
}

// SetError records the most recent ingestion or command failure
func (d *Display) SetError(err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.LastError = err.Error()
	d.view.ErrorAt = d.now()
}

// ClearError forgets the last failure
func (d *Display) ClearError() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.LastError = ""
	d.view.ErrorAt = time.Time{}
}

// View returns a copy of the displayed values
func (d *Display) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}
