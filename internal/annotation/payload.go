package annotation

import (
	"encoding/json"
	"fmt"
)

// currentPayloadVersion is the payload layout written by EncodePayload.
// Older versions are migrated forward on decode:
//
//	version 1 - flat stroke list with canvas_w/canvas_h (drawing only)
//	version 2 - drawing plus marks, no meanings or summary flag
//	version 3 - current layout
//
// A missing version tag denotes version 1.
const currentPayloadVersion = 3

// Payload is the serialized annotation state of a single photo.
type Payload struct {
	Version          int               `json:"version"`
	Drawing          Drawing           `json:"drawing"`
	Marks            Set               `json:"marks"`
	Meanings         map[string]string `json:"meanings,omitempty"`
	ShowStampSummary bool              `json:"show_stamp_summary,omitempty"`
}

type payloadV1 struct {
	CanvasW float64  `json:"canvas_w"`
	CanvasH float64  `json:"canvas_h"`
	Strokes []Stroke `json:"strokes"`
}

type payloadV2 struct {
	Drawing Drawing `json:"drawing"`
	Marks   Set     `json:"marks"`
}

// EncodePayload serializes the annotation state in the current layout.
func EncodePayload(p Payload) ([]byte, error) {
	p.Version = currentPayloadVersion
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not encode annotation payload: %w", err)
	}
	return data, nil
}

// DecodePayload parses a serialized annotation payload of any known version
// and migrates it to the current layout. Unknown future versions are an
// error rather than silent data loss.
func DecodePayload(data []byte) (Payload, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Payload{}, fmt.Errorf("could not parse annotation payload: %w", err)
	}

	switch probe.Version {
	case 0, 1:
		var v1 payloadV1
		if err := json.Unmarshal(data, &v1); err != nil {
			return Payload{}, fmt.Errorf("could not parse annotation payload v1: %w", err)
		}
		return Payload{
			Version: currentPayloadVersion,
			Drawing: Drawing{
				Canvas:  Size{W: v1.CanvasW, H: v1.CanvasH},
				Strokes: v1.Strokes,
			},
			Marks: Set{Canvas: Size{W: v1.CanvasW, H: v1.CanvasH}},
		}, nil
	case 2:
		var v2 payloadV2
		if err := json.Unmarshal(data, &v2); err != nil {
			return Payload{}, fmt.Errorf("could not parse annotation payload v2: %w", err)
		}
		return Payload{
			Version: currentPayloadVersion,
			Drawing: v2.Drawing,
			Marks:   v2.Marks,
		}, nil
	case currentPayloadVersion:
		var p Payload
		if err := json.Unmarshal(data, &p); err != nil {
			return Payload{}, fmt.Errorf("could not parse annotation payload: %w", err)
		}
		return p, nil
	default:
		return Payload{}, fmt.Errorf("unsupported annotation payload version %d", probe.Version)
	}
}
