package geometry

import (
	"math"
	"testing"
)

func TestBoundingBoxExtend(t *testing.T) {
	bbox := NewBoundingBox()

	bbox.Extend(NewVector3(1, 2, 3))
	bbox.Extend(NewVector3(4, 5, 6))
	bbox.Extend(NewVector3(-1, 0, 2))

	if expected := NewVector3(-1, 0, 2); bbox.Min != expected {
		t.Errorf("Min failed: expected %v, got %v", expected, bbox.Min)
	}
	if expected := NewVector3(4, 5, 6); bbox.Max != expected {
		t.Errorf("Max failed: expected %v, got %v", expected, bbox.Max)
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	bbox := NewBoundingBox()
	if !bbox.IsEmpty() {
		t.Fatal("new bounding box should be empty")
	}
	if bbox.Size() != (Vector3{}) || bbox.Center() != (Vector3{}) {
		t.Errorf("empty box should report zero size and origin center, got %v %v", bbox.Size(), bbox.Center())
	}

	bbox.Extend(NewVector3(math.NaN(), 1, 1))
	if !bbox.IsEmpty() {
		t.Error("non-finite point must not extend the box")
	}

	bbox.Extend(NewVector3(2, 2, 2))
	if bbox.IsEmpty() {
		t.Error("box with one point should not be empty")
	}
	if bbox.MaxExtent() != 0 {
		t.Errorf("single point box should have zero extent, got %v", bbox.MaxExtent())
	}
}

func TestBoundingBoxSizeCenter(t *testing.T) {
	bbox := NewBoundingBox()
	bbox.Extend(NewVector3(0, 0, 0))
	bbox.Extend(NewVector3(10, 20, 30))

	if expected := NewVector3(10, 20, 30); bbox.Size() != expected {
		t.Errorf("Size failed: expected %v, got %v", expected, bbox.Size())
	}
	if expected := NewVector3(5, 10, 15); bbox.Center() != expected {
		t.Errorf("Center failed: expected %v, got %v", expected, bbox.Center())
	}
	if bbox.MaxExtent() != 30 {
		t.Errorf("MaxExtent failed: expected 30, got %v", bbox.MaxExtent())
	}
}
