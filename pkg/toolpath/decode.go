package toolpath

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// MalformedPointError describes a raw point that failed shape validation
type MalformedPointError struct {
	Index  int
	Reason string
}

func (e *MalformedPointError) Error() string {
	return fmt.Sprintf("malformed point %d: %s", e.Index, e.Reason)
}

// rawPoint mirrors the three encodings the backend uses for a point:
// {moveType: "RAPID"}, {isRapid: true} from status, {type: "rapid"} from parse.
type rawPoint struct {
	X        json.RawMessage `json:"x"`
	Y        json.RawMessage `json:"y"`
	Z        json.RawMessage `json:"z"`
	MoveType *string         `json:"moveType"`
	IsRapid  *bool           `json:"isRapid"`
	Type     *string         `json:"type"`
}

// DecodePoints decodes each raw point independently. Points with a missing or
// non-numeric coordinate are dropped and reported; the rest keep their order.
func DecodePoints(raw []json.RawMessage) ([]MotionPoint, []*MalformedPointError) {
	points := make([]MotionPoint, 0, len(raw))
	var dropped []*MalformedPointError

	for i, msg := range raw {
		p, err := decodePoint(msg)
		if err != nil {
			dropped = append(dropped, &MalformedPointError{Index: i, Reason: err.Error()})
			continue
		}
		points = append(points, p)
	}

	return points, dropped
}

func decodePoint(msg json.RawMessage) (MotionPoint, error) {
	var rp rawPoint
	if err := json.Unmarshal(msg, &rp); err != nil {
		return MotionPoint{}, fmt.Errorf("not an object: %w", err)
	}

	x, err := coordinate("x", rp.X)
	if err != nil {
		return MotionPoint{}, err
	}
	y, err := coordinate("y", rp.Y)
	if err != nil {
		return MotionPoint{}, err
	}
	z, err := coordinate("z", rp.Z)
	if err != nil {
		return MotionPoint{}, err
	}

	// Unknown move spellings (arcs, dwells, ...) are drawn as feed moves so
	// the point still belongs to the path
	move := Feed
	switch {
	case rp.MoveType != nil:
		move, _ = ParseMoveType(*rp.MoveType)
	case rp.IsRapid != nil:
		if *rp.IsRapid {
			move = Rapid
		}
	case rp.Type != nil:
		move, _ = ParseMoveType(*rp.Type)
	}

	return NewPoint(x, y, z, move), nil
}

func coordinate(name string, raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing %s", name)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("non-numeric %s: %s", name, string(raw))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s", name)
	}
	return v, nil
}

// pointFile accepts either a bare point array or a parse-style envelope
type pointFile struct {
	TrajectoryPoints []json.RawMessage `json:"trajectoryPoints"`
}

// ReadPoints reads a trajectory document: either a JSON array of points or an
// object with a trajectoryPoints array.
func ReadPoints(r io.Reader) ([]MotionPoint, []*MalformedPointError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read trajectory: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var doc pointFile
		if err2 := json.Unmarshal(data, &doc); err2 != nil {
			return nil, nil, fmt.Errorf("failed to decode trajectory: %w", err2)
		}
		raw = doc.TrajectoryPoints
	}

	points, dropped := DecodePoints(raw)
	return points, dropped, nil
}

// WirePoint is the JSON form written by EncodePoints
type WirePoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	MoveType string  `json:"moveType"`
}

// EncodePoints converts points to their wire form
func EncodePoints(points []MotionPoint) []WirePoint {
	out := make([]WirePoint, len(points))
	for i, p := range points {
		out[i] = WirePoint{X: p.X, Y: p.Y, Z: p.Z, MoveType: p.Move.String()}
	}
	return out
}
