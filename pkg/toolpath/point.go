package toolpath

import (
	"fmt"
	"strings"

	"github.com/philipparndt/cncview/pkg/geometry"
)

// MoveType classifies how the machine reached a point
type MoveType int

const (
	// Feed is a cutting move at the programmed feed rate
	Feed MoveType = iota
	// Rapid is a non-cutting repositioning move
	Rapid
)

// String returns the wire name of the move type
func (m MoveType) String() string {
	if m == Rapid {
		return "RAPID"
	}
	return "FEED"
}

// ParseMoveType accepts the spellings used by the controller backend:
// RAPID/FEED in any case, and the G-code words G0/G1.
func ParseMoveType(s string) (MoveType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RAPID", "G0", "G00":
		return Rapid, nil
	case "FEED", "G1", "G01", "LINEAR":
		return Feed, nil
	default:
		return Feed, fmt.Errorf("unknown move type %q", s)
	}
}

// MotionPoint is one sampled or commanded machine position
type MotionPoint struct {
	X, Y, Z float64
	Move    MoveType
}

// NewPoint creates a motion point
func NewPoint(x, y, z float64, move MoveType) MotionPoint {
	return MotionPoint{X: x, Y: y, Z: z, Move: move}
}

// Position returns the coordinates as a vector
func (p MotionPoint) Position() geometry.Vector3 {
	return geometry.NewVector3(p.X, p.Y, p.Z)
}

// Valid reports whether all coordinates are finite numbers
func (p MotionPoint) Valid() bool {
	return p.Position().IsFinite()
}

// Bounds returns the bounding box of the given points, skipping invalid ones
func Bounds(points []MotionPoint) geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, p := range points {
		bbox.Extend(p.Position())
	}
	return bbox
}
