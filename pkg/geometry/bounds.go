package geometry

import "math"

// BoundingBox represents an axis-aligned bounding box.
// A freshly created box is empty until the first Extend.
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: Vector3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// Extend expands the bounding box to include a point.
// Non-finite points are ignored so a single bad sample cannot poison the box.
func (b *BoundingBox) Extend(point Vector3) {
	if !point.IsFinite() {
		return
	}
	b.Min = b.Min.Min(point)
	b.Max = b.Max.Max(point)
}

// IsEmpty reports whether no point has been added
func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Size returns the dimensions of the bounding box, zero when empty
func (b BoundingBox) Size() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box, the origin when empty
func (b BoundingBox) Center() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// MaxExtent returns the largest of the three box dimensions
func (b BoundingBox) MaxExtent() float64 {
	return b.Size().MaxComponent()
}

// Diagonal returns the length of the bounding box diagonal
func (b BoundingBox) Diagonal() float64 {
	return b.Size().Length()
}
