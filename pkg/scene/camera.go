package scene

import (
	"math"

	"github.com/philipparndt/cncview/pkg/geometry"
)

// Camera is a perspective camera looking from Position at Target
type Camera struct {
	Position    geometry.Vector3
	Target      geometry.Vector3
	Up          geometry.Vector3
	FieldOfView float64 // Vertical field of view in degrees
	Aspect      float64
	Near        float64
	Far         float64
}

// NewCamera creates a perspective camera with the given vertical field of view
func NewCamera(fov float64) Camera {
	return Camera{
		Position:    geometry.NewVector3(50, 50, 100),
		Target:      geometry.Vector3{},
		Up:          geometry.NewVector3(0, 1, 0),
		FieldOfView: fov,
		Aspect:      1,
		Near:        0.1,
		Far:         10000,
	}
}

// FOVRadians returns the vertical field of view in radians
func (c Camera) FOVRadians() float64 {
	return c.FieldOfView * math.Pi / 180
}

// basis returns the camera's forward, right and up unit vectors
func (c Camera) basis() (forward, right, up geometry.Vector3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// Project projects a 3D point to 2D screen coordinates.
// The third value is the depth along the view direction.
func (c Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward, right, up := c.basis()

	// Transform to camera space
	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)

	// Prevent division by zero for points at or behind the camera plane
	if z <= c.Near {
		z = c.Near
	}

	aspect := width / height
	fovScale := math.Tan(c.FOVRadians() / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, z
}

// Unproject converts 2D screen coordinates back to a world-space ray
func (c Camera) Unproject(screenX, screenY, width, height float64) (origin, direction geometry.Vector3) {
	// Normalized device coordinates (-1 to 1)
	ndcX := (2.0 * screenX / width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / height)

	aspect := width / height
	fovScale := math.Tan(c.FOVRadians() / 2)

	forward, right, up := c.basis()
	dir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))

	return c.Position, dir.Normalize()
}

// IntersectGround intersects a ray with the y=0 plane
func IntersectGround(origin, direction geometry.Vector3) (geometry.Vector3, bool) {
	if math.Abs(direction.Y) < 1e-9 {
		return geometry.Vector3{}, false
	}
	t := -origin.Y / direction.Y
	if t < 0 {
		return geometry.Vector3{}, false
	}
	return origin.Add(direction.Mul(t)), true
}
