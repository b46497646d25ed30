package scene

import (
	"math"

	"github.com/philipparndt/cncview/pkg/geometry"
)

const (
	settleEpsilon   = 1e-6
	maxElevationPad = 0.01
)

// OrbitControls orbits a camera around a target. Rotation and pan requests
// accumulate and are eased in over successive Update calls by DampingFactor.
type OrbitControls struct {
	Target        geometry.Vector3
	Distance      float64
	AngleX        float64 // Elevation above the target's horizontal plane
	AngleY        float64 // Azimuth around the vertical axis
	DampingFactor float64
	MaxPolarAngle float64 // Largest angle between the up axis and the view direction
	MinDistance   float64

	pendingX   float64
	pendingY   float64
	pendingPan geometry.Vector3
}

// NewOrbitControls creates controls with the given damping factor
func NewOrbitControls(damping float64) *OrbitControls {
	if damping <= 0 || damping > 1 {
		damping = 1
	}
	o := &OrbitControls{
		DampingFactor: damping,
		MaxPolarAngle: math.Pi / 2,
		MinDistance:   0.1,
	}
	o.SetPose(geometry.NewVector3(50, 50, 100), geometry.Vector3{})
	return o
}

// SetPose places the camera at position looking at target and discards any
// motion still being damped.
func (o *OrbitControls) SetPose(position, target geometry.Vector3) {
	offset := position.Sub(target)
	o.Target = target
	o.Distance = math.Max(offset.Length(), o.MinDistance)
	o.AngleX = math.Asin(clamp(offset.Y/o.Distance, -1, 1))
	o.AngleY = math.Atan2(offset.X, offset.Z)
	o.pendingX, o.pendingY = 0, 0
	o.pendingPan = geometry.Vector3{}
	o.clampElevation()
}

// Rotate queues a rotation in radians
func (o *OrbitControls) Rotate(deltaX, deltaY float64) {
	o.pendingX += deltaX
	o.pendingY += deltaY
}

// Pan queues a translation of the target
func (o *OrbitControls) Pan(delta geometry.Vector3) {
	o.pendingPan = o.pendingPan.Add(delta)
}

// Zoom scales the orbit distance; positive delta moves away
func (o *OrbitControls) Zoom(delta float64) {
	o.Distance *= 1.0 + delta
	if o.Distance < o.MinDistance {
		o.Distance = o.MinDistance
	}
}

// Update advances the damped motion by one step and reports whether the
// camera is still moving.
func (o *OrbitControls) Update() bool {
	f := o.DampingFactor

	o.AngleX += o.pendingX * f
	o.AngleY += o.pendingY * f
	o.Target = o.Target.Add(o.pendingPan.Mul(f))

	o.pendingX *= 1 - f
	o.pendingY *= 1 - f
	o.pendingPan = o.pendingPan.Mul(1 - f)

	o.clampElevation()

	moving := math.Abs(o.pendingX) > settleEpsilon || math.Abs(o.pendingY) > settleEpsilon ||
		o.pendingPan.Length() > settleEpsilon
	if !moving {
		o.pendingX, o.pendingY = 0, 0
		o.pendingPan = geometry.Vector3{}
	}
	return moving
}

// Position returns the camera position implied by the orbit parameters
func (o *OrbitControls) Position() geometry.Vector3 {
	x := o.Distance * math.Cos(o.AngleX) * math.Sin(o.AngleY)
	y := o.Distance * math.Sin(o.AngleX)
	z := o.Distance * math.Cos(o.AngleX) * math.Cos(o.AngleY)
	return o.Target.Add(geometry.NewVector3(x, y, z))
}

// clampElevation keeps the camera between the polar limit and just short of
// straight overhead, where the up vector would degenerate.
func (o *OrbitControls) clampElevation() {
	minElevation := math.Pi/2 - o.MaxPolarAngle
	maxElevation := math.Pi/2 - maxElevationPad
	o.AngleX = clamp(o.AngleX, minElevation, maxElevation)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
