package viewfit

import (
	"math"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/scene"
	"github.com/philipparndt/cncview/pkg/toolpath"
)

const (
	// DefaultDistance is used when there is nothing to frame
	DefaultDistance = 120.0
	// Margin scales the tightest bounding-sphere framing distance
	Margin = 1.5
	// MinDistance is added to every framing distance so a single point never
	// puts the camera on the geometry
	MinDistance = 10.0
)

// Direction is the fixed diagonal the camera looks along toward the center
var Direction = geometry.NewVector3(1, 1, 1).Normalize()

// ViewFrame is a derived camera pose that frames a path
type ViewFrame struct {
	Position geometry.Vector3
	Target   geometry.Vector3
	Distance float64
}

// DefaultFrame is the pose used for an empty path
func DefaultFrame() ViewFrame {
	return ViewFrame{
		Position: Direction.Mul(DefaultDistance),
		Target:   geometry.Vector3{},
		Distance: DefaultDistance,
	}
}

// HalfAngle returns the narrower half field of view in radians for a vertical
// fov in degrees and a width/height aspect. A portrait viewport is limited by
// its horizontal extent.
func HalfAngle(fovDegrees, aspect float64) float64 {
	half := fovDegrees * math.Pi / 180 / 2
	if aspect > 0 && aspect < 1 {
		half = math.Atan(math.Tan(half) * aspect)
	}
	return half
}

// FramingDistance returns how far from the center the camera must be for a
// sphere of the given radius to fit inside a view cone of halfAngle radians,
// including the margin. It grows strictly with radius and is MinDistance for
// a point.
func FramingDistance(radius, halfAngle float64) float64 {
	if !(radius > 0) || math.IsInf(radius, 0) || !(halfAngle > 0 && halfAngle < math.Pi/2) {
		return MinDistance
	}
	return MinDistance + Margin*radius/math.Sin(halfAngle)
}

// Fit computes the view frame for the given points, vertical field of view
// in degrees and viewport aspect (width/height, 0 for square). The whole
// bounding box stays on screen from the fixed viewing diagonal.
func Fit(points []toolpath.MotionPoint, fovDegrees, aspect float64) ViewFrame {
	bbox := toolpath.Bounds(points)
	if bbox.IsEmpty() {
		return DefaultFrame()
	}

	center := bbox.Center()
	radius := bbox.Diagonal() / 2
	distance := FramingDistance(radius, HalfAngle(fovDegrees, aspect))

	return ViewFrame{
		Position: center.Add(Direction.Mul(distance)),
		Target:   center,
		Distance: distance,
	}
}

// Fitter frames the store's current path in the scene
type Fitter struct {
	store *toolpath.Store
	scene *scene.Manager
}

// New creates a fitter reading from store and moving the scene camera
func New(store *toolpath.Store, sm *scene.Manager) *Fitter {
	return &Fitter{store: store, scene: sm}
}

// Apply moves the camera to frame the given points
func (f *Fitter) Apply(points []toolpath.MotionPoint) ViewFrame {
	cam := f.scene.Camera()
	frame := Fit(points, cam.FieldOfView, cam.Aspect)
	f.scene.SetCamera(frame.Position, frame.Target)
	return frame
}

// ResetView frames the store's current generation; it needs no new data
func (f *Fitter) ResetView() ViewFrame {
	return f.Apply(f.store.Snapshot().Points)
}
