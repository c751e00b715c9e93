package engine

import (
	"github.com/roach88/takeoff/internal/geom"
)

// EventType names a session input.
type EventType string

const (
	EventPointerDown      EventType = "pointer_down"
	EventPointerMove      EventType = "pointer_move"
	EventPointerUp        EventType = "pointer_up"
	EventPointerLeave     EventType = "pointer_leave"
	EventHover            EventType = "hover"
	EventSelectScale      EventType = "select_scale"
	EventClearCalibration EventType = "clear_calibration"
	EventUndo             EventType = "undo"
	EventRedo             EventType = "redo"
	EventDocumentChanged  EventType = "document_changed"
)

// PointerEvent is a pointer position as the page-rendering collaborator
// reports it: screen coordinates, the rendered page's on-screen origin, the
// current zoom, and the 1-based page number.
type PointerEvent struct {
	ScreenX float64 `json:"screen_x"`
	ScreenY float64 `json:"screen_y"`
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
	Zoom    float64 `json:"zoom"`
	Page    int     `json:"page"`
}

// Point normalizes the event to page-local coordinates.
func (p PointerEvent) Point() (geom.Point, error) {
	pt, err := geom.Normalize(p.ScreenX, p.ScreenY, p.OriginX, p.OriginY, p.Zoom, p.Page)
	if err != nil {
		return geom.Point{}, classifyPointerError(err)
	}
	return pt, nil
}

// Event is one session input in serializable form. It is what the Engine
// queues and what the journal records.
//
// Field use by type:
//   - pointer_down, pointer_move: Pointer
//   - pointer_up: ID optionally pins the committed measurement id (replay)
//   - hover: ID (empty clears the hover)
//   - select_scale: Scale
//   - document_changed: Document
type Event struct {
	Type     EventType     `json:"type"`
	Pointer  *PointerEvent `json:"pointer,omitempty"`
	ID       string        `json:"id,omitempty"`
	Scale    string        `json:"scale,omitempty"`
	Document string        `json:"document,omitempty"`
}

// Validate checks that ev carries the data its type needs.
func (ev Event) Validate() error {
	switch ev.Type {
	case EventPointerDown, EventPointerMove:
		if ev.Pointer == nil {
			return newInvalidEventError("%s event missing pointer data", ev.Type)
		}
	case EventSelectScale:
		if ev.Scale == "" {
			return newInvalidEventError("select_scale event missing scale id")
		}
	case EventPointerUp, EventPointerLeave, EventHover, EventClearCalibration,
		EventUndo, EventRedo, EventDocumentChanged:
	default:
		return newInvalidEventError("unknown event type: %q", ev.Type)
	}
	return nil
}
