// Package analysis computes statistics over motion paths.
package analysis

import (
	"fmt"
	"sort"

	"github.com/philipparndt/cncview/pkg/geometry"
	"github.com/philipparndt/cncview/pkg/toolpath"
)

// MoveInfo describes one path segment, ending at point Index
type MoveInfo struct {
	Index  int
	Start  geometry.Vector3
	End    geometry.Vector3
	Length float64
	Move   toolpath.MoveType
}

// PathResult contains measurements of a motion path
type PathResult struct {
	BoundingBox geometry.BoundingBox
	Dimensions  geometry.Vector3
	PointCount  int
	RapidCount  int
	FeedCount   int
	RapidLength float64
	FeedLength  float64
	MinMove     float64
	MaxMove     float64
	AvgMove     float64
	Moves       []MoveInfo
}

// TotalLength is the distance travelled along the whole path
func (r *PathResult) TotalLength() float64 {
	return r.RapidLength + r.FeedLength
}

// AnalyzePath measures a path. Invalid points are skipped.
func AnalyzePath(points []toolpath.MotionPoint) *PathResult {
	result := &PathResult{BoundingBox: geometry.NewBoundingBox()}

	var prev *toolpath.MotionPoint
	for i := range points {
		p := points[i]
		if !p.Valid() {
			continue
		}
		result.PointCount++
		result.BoundingBox.Extend(p.Position())
		if p.Move == toolpath.Rapid {
			result.RapidCount++
		} else {
			result.FeedCount++
		}

		// Segments take the move type of their end point
		if prev != nil {
			length := prev.Position().Distance(p.Position())
			result.Moves = append(result.Moves, MoveInfo{
				Index:  i,
				Start:  prev.Position(),
				End:    p.Position(),
				Length: length,
				Move:   p.Move,
			})
			if p.Move == toolpath.Rapid {
				result.RapidLength += length
			} else {
				result.FeedLength += length
			}
		}
		prev = &points[i]
	}

	if result.PointCount > 0 {
		result.Dimensions = result.BoundingBox.Size()
	}
	if len(result.Moves) > 0 {
		result.MinMove = result.Moves[0].Length
		for _, m := range result.Moves {
			result.MinMove = min(result.MinMove, m.Length)
			result.MaxMove = max(result.MaxMove, m.Length)
		}
		result.AvgMove = result.TotalLength() / float64(len(result.Moves))
	}
	return result
}

// FindLongestMoves returns the N longest segments
func FindLongestMoves(result *PathResult, count int) []MoveInfo {
	moves := make([]MoveInfo, len(result.Moves))
	copy(moves, result.Moves)

	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Length > moves[j].Length
	})

	if count > len(moves) {
		count = len(moves)
	}
	return moves[:count]
}

// FormatMeasurement formats a length with its unit
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "mm"
	}
	return fmt.Sprintf("%.3f %s", value, unit)
}

// FormatVector formats a position as X/Y/Z
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("X %.3f  Y %.3f  Z %.3f", v.X, v.Y, v.Z)
}
