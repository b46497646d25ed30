// Package status normalizes machine status payloads and keeps the values
// shown to the operator.
package status

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/toolpath"
)

// State is the normalized machine state
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
	StateError   State = "error"
	StateUnknown State = "unknown"
)

// ParseState maps a controller state string onto State
func ParseState(raw string) State {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "running", "machining", "run", "busy":
		return StateRunning
	case "idle", "ready":
		return StateIdle
	case "paused", "pause", "hold":
		return StatePaused
	case "stopped", "stop", "finished", "complete", "completed":
		return StateStopped
	case "error", "alarm", "fault":
		return StateError
	default:
		return StateUnknown
	}
}

// Active reports whether the machine is executing a program
func (s State) Active() bool {
	return s == StateRunning
}

// Snapshot is one normalized status response. Pointer fields are nil when the
// payload did not carry them.
type Snapshot struct {
	State       State
	RawState    string
	HasState    bool
	Position    *geometry.Vector3
	FeedRate    *float64
	Progress    *float64
	CurrentFile string
	HasPoints   bool
	Points      []toolpath.MotionPoint
	Malformed   []*toolpath.MalformedPointError
}

// Terminal reports whether the snapshot says the machine is no longer running.
// A snapshot without a state is never terminal.
func (s Snapshot) Terminal() bool {
	return s.HasState && !s.State.Active()
}

type wirePosition struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type wireMachining struct {
	Progress         *float64           `json:"progress"`
	TrajectoryPoints *[]json.RawMessage `json:"trajectoryPoints"`
}

type wireStatus struct {
	State            *string            `json:"state"`
	Position         *wirePosition      `json:"position"`
	FeedRate         *float64           `json:"feedRate"`
	Progress         *float64           `json:"progress"`
	CurrentFile      *string            `json:"currentFile"`
	TrajectoryPoints *[]json.RawMessage `json:"trajectoryPoints"`
	Machining        *wireMachining     `json:"machining"`
}

// Decode reads and normalizes a status payload
func Decode(r io.Reader) (Snapshot, error) {
	var w wireStatus
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode status: %w", err)
	}
	return normalize(w), nil
}

func normalize(w wireStatus) Snapshot {
	var s Snapshot

	if w.State != nil && *w.State != "" {
		s.HasState = true
		s.RawState = *w.State
		s.State = ParseState(*w.State)
	}

	if p := w.Position; p != nil && p.X != nil && p.Y != nil && p.Z != nil {
		pos := geometry.NewVector3(*p.X, *p.Y, *p.Z)
		if pos.IsFinite() {
			s.Position = &pos
		}
	}

	s.FeedRate = w.FeedRate

	progress := w.Progress
	if w.Machining != nil && w.Machining.Progress != nil {
		progress = w.Machining.Progress
	}
	if progress != nil {
		p := clampProgress(*progress)
		s.Progress = &p
	}

	if w.CurrentFile != nil {
		s.CurrentFile = *w.CurrentFile
	}

	raw := w.TrajectoryPoints
	if raw == nil && w.Machining != nil {
		raw = w.Machining.TrajectoryPoints
	}
	if raw != nil {
		s.HasPoints = true
		s.Points, s.Malformed = toolpath.DecodePoints(*raw)
	}

	return s
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
