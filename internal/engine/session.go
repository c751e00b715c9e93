package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/takeoff/internal/calibration"
	"github.com/roach88/takeoff/internal/drag"
	"github.com/roach88/takeoff/internal/history"
	"github.com/roach88/takeoff/internal/measure"
	"github.com/roach88/takeoff/internal/overlay"
)

// ChangeKind names what a state change touched.
type ChangeKind string

const (
	ChangeDrag        ChangeKind = "drag"
	ChangeCommit      ChangeKind = "commit"
	ChangeHover       ChangeKind = "hover"
	ChangeCalibration ChangeKind = "calibration"
	ChangeHistory     ChangeKind = "history"
	ChangeDocument    ChangeKind = "document"
)

// Change is delivered to the Observer after every state change. The
// overlay for every visible page must be re-derived on receipt.
type Change struct {
	Seq  int64
	Kind ChangeKind
	ID   string // measurement id for ChangeCommit
}

// Observer receives change notifications on the session's goroutine.
type Observer func(Change)

// CommitResult reports what a pointer release did.
type CommitResult struct {
	Committed   bool
	Measurement measure.Measurement // set when Committed
	Reason      string              // drag abort reason when not Committed
}

// Option configures a Session.
type Option func(*Session)

// WithIDGenerator sets the measurement ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		s.ids = g
	}
}

// WithZeroLengthPolicy sets whether zero-length drags commit.
// Default: drag.RejectZeroLength.
func WithZeroLengthPolicy(p drag.ZeroLengthPolicy) Option {
	return func(s *Session) {
		s.zeroLength = p
	}
}

// WithRedoOrder sets the history redo order. Default: history.RedoFIFO.
func WithRedoOrder(o history.RedoOrder) Option {
	return func(s *Session) {
		s.redoOrder = o
	}
}

// WithHistoryLimit caps the undo depth. Default: unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.historyLimit = n
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClock sets the logical clock. Default: NewClock().
func WithClock(c Sequencer) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithObserver registers a change observer.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// Session is the measurement state for one open document.
//
// It is not safe for concurrent use. Callers either drive it from a
// single UI goroutine or wrap it in an Engine.
type Session struct {
	registry *calibration.Registry
	ids      IDGenerator
	clock    Sequencer
	logger   *slog.Logger
	observer Observer

	zeroLength   drag.ZeroLengthPolicy
	redoOrder    history.RedoOrder
	historyLimit int

	drag    *drag.Machine
	store   *measure.Store
	history *history.Manager
	factor  calibration.Factor
	hovered string
	doc     string
}

// NewSession creates an empty, uncalibrated session resolving scales
// against registry (calibration.Default() when nil).
func NewSession(registry *calibration.Registry, opts ...Option) *Session {
	if registry == nil {
		registry = calibration.Default()
	}
	s := &Session{
		registry: registry,
		ids:      UUIDv7Generator{},
		clock:    NewClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.drag = drag.NewMachine(s.zeroLength)
	s.store = measure.NewStore()
	s.history = history.New(
		history.WithRedoOrder(s.redoOrder),
		history.WithLimit(s.historyLimit),
	)
	return s
}

// PointerDown starts a gesture at the event position. A gesture already in
// progress is abandoned without committing.
func (s *Session) PointerDown(ev PointerEvent) error {
	p, err := ev.Point()
	if err != nil {
		return err
	}
	if s.drag.Begin(p) {
		s.logger.Debug("drag superseded", "page", p.Page)
	}
	s.logger.Debug("drag started", "point", p.String())
	s.notify(ChangeDrag, "")
	return nil
}

// PointerMove updates the running gesture's end point. Moves while idle and
// moves over a page other than the gesture's are ignored.
func (s *Session) PointerMove(ev PointerEvent) error {
	if s.drag.State() != drag.Dragging {
		return nil
	}
	p, err := ev.Point()
	if err != nil {
		return err
	}
	if !s.drag.Update(p) {
		s.logger.Debug("drag update ignored", "point", p.String())
		return nil
	}
	s.notify(ChangeDrag, "")
	return nil
}

// PointerUp ends the gesture, committing a measurement when it moved.
func (s *Session) PointerUp() (CommitResult, error) {
	return s.release("")
}

// release ends the gesture. A pinned id already in the measurement set is
// refused before the gesture is touched; a generated id that collides is
// refused after it, and the gesture is discarded.
func (s *Session) release(pinnedID string) (CommitResult, error) {
	if pinnedID != "" {
		if _, taken := s.store.List().Find(pinnedID); taken {
			return CommitResult{}, newDuplicateIDError(pinnedID)
		}
	}

	wasDragging := s.drag.State() == drag.Dragging
	out := s.drag.End()
	if out.Kind != drag.Committed {
		if wasDragging {
			s.logger.Debug("drag discarded", "reason", out.Reason)
			s.notify(ChangeDrag, "")
		}
		return CommitResult{Reason: out.Reason}, nil
	}

	id := pinnedID
	if id == "" {
		id = s.ids.Generate()
		if _, taken := s.store.List().Find(id); taken {
			s.logger.Warn("generated id collides", "id", id)
			s.notify(ChangeDrag, "")
			return CommitResult{}, newDuplicateIDError(id)
		}
	}
	m, err := measure.New(id, out.Start, out.End)
	if err != nil {
		return CommitResult{}, fmt.Errorf("commit measurement: %w", err)
	}

	before := s.store.Append(m)
	s.history.PushUndo(before)

	s.logger.Info("measurement committed",
		"id", m.ID,
		"page", m.Page(),
		"pixel_distance", m.PixelDistance,
		"count", s.store.Len(),
	)
	s.notify(ChangeCommit, m.ID)
	return CommitResult{Committed: true, Measurement: m}, nil
}

// PointerLeave aborts the running gesture. Returns false when idle.
func (s *Session) PointerLeave() bool {
	if !s.drag.Abort() {
		return false
	}
	s.logger.Debug("drag aborted", "reason", "pointer_leave")
	s.notify(ChangeDrag, "")
	return true
}

// Hover sets the hovered measurement id; "" clears it. The id need not
// exist: an unknown id simply labels nothing.
func (s *Session) Hover(id string) {
	if id == s.hovered {
		return
	}
	s.hovered = id
	s.notify(ChangeHover, id)
}

// SelectScale resolves id in the registry and makes it the session's
// calibration. On failure the previous calibration is kept.
func (s *Session) SelectScale(id string) error {
	scale, err := s.registry.Resolve(id)
	if err != nil {
		s.logger.Warn("scale selection rejected", "scale", id, "error", err)
		return newUnknownScaleError(id, err)
	}
	s.factor = scale.Calibration()
	s.logger.Info("calibration selected",
		"scale", scale.ID,
		"factor", scale.Factor,
		"unit", scale.Unit,
	)
	s.notify(ChangeCalibration, "")
	return nil
}

// ClearCalibration returns the session to uncalibrated display.
func (s *Session) ClearCalibration() {
	if !s.factor.Calibrated() {
		return
	}
	s.factor = calibration.Uncalibrated()
	s.logger.Info("calibration cleared")
	s.notify(ChangeCalibration, "")
}

// Undo restores the measurement set as it was before the latest committed
// action. Returns false with nothing to undo.
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo(s.store.List())
	if !ok {
		return false
	}
	s.store.ReplaceAll(snap)
	s.logger.Info("undo", "count", snap.Len(),
		"undo_depth", s.history.UndoDepth(), "redo_depth", s.history.RedoDepth())
	s.notify(ChangeHistory, "")
	return true
}

// Redo reinstates an undone measurement set. Returns false with nothing to
// redo.
func (s *Session) Redo() bool {
	snap, ok := s.history.Redo(s.store.List())
	if !ok {
		return false
	}
	s.store.ReplaceAll(snap)
	s.logger.Info("redo", "count", snap.Len(),
		"undo_depth", s.history.UndoDepth(), "redo_depth", s.history.RedoDepth())
	s.notify(ChangeHistory, "")
	return true
}

// DocumentChanged resets everything for a newly loaded document: the
// gesture, measurements, both history stacks, calibration and hover.
func (s *Session) DocumentChanged(docID string) {
	s.drag.Abort()
	s.store.Reset()
	s.history.Reset()
	s.factor = calibration.Uncalibrated()
	s.hovered = ""
	s.doc = docID
	s.logger.Info("document changed", "document", docID)
	s.notify(ChangeDocument, "")
}

// Apply dispatches ev to the matching method. It returns ev with any
// session-assigned fields filled in: for a committing pointer_up, ID holds
// the new measurement's id, so that journaled events replay to the same
// state.
func (s *Session) Apply(ev Event) (Event, error) {
	if err := ev.Validate(); err != nil {
		return ev, err
	}

	switch ev.Type {
	case EventPointerDown:
		return ev, s.PointerDown(*ev.Pointer)
	case EventPointerMove:
		return ev, s.PointerMove(*ev.Pointer)
	case EventPointerUp:
		res, err := s.release(ev.ID)
		if err != nil {
			return ev, err
		}
		if res.Committed {
			ev.ID = res.Measurement.ID
		} else {
			ev.ID = ""
		}
		return ev, nil
	case EventPointerLeave:
		s.PointerLeave()
	case EventHover:
		s.Hover(ev.ID)
	case EventSelectScale:
		return ev, s.SelectScale(ev.Scale)
	case EventClearCalibration:
		s.ClearCalibration()
	case EventUndo:
		s.Undo()
	case EventRedo:
		s.Redo()
	case EventDocumentChanged:
		s.DocumentChanged(ev.Document)
	}
	return ev, nil
}

// Measurements returns the current measurement set.
func (s *Session) Measurements() measure.Snapshot {
	return s.store.List()
}

// Rows returns the tabular measurement list under the current calibration.
func (s *Session) Rows() []measure.Row {
	return measure.Rows(s.store.List(), s.factor)
}

// Overlay projects the drawable segments for page at zoom.
func (s *Session) Overlay(page int, zoom float64) ([]overlay.Segment, error) {
	segs, err := overlay.Project(overlay.Input{
		Page:         page,
		Measurements: s.store.List(),
		Drag:         s.drag.Session(),
		Zoom:         zoom,
		Factor:       s.factor,
		HoveredID:    s.hovered,
	})
	if err != nil {
		return nil, classifyPointerError(err)
	}
	return segs, nil
}

// Calibration returns the active factor.
func (s *Session) Calibration() calibration.Factor { return s.factor }

// Drag returns the gesture view.
func (s *Session) Drag() drag.Session { return s.drag.Session() }

// Hovered returns the hovered measurement id.
func (s *Session) Hovered() string { return s.hovered }

// DocumentID returns the id passed to the last DocumentChanged.
func (s *Session) DocumentID() string { return s.doc }

// UndoDepth returns the number of undoable actions.
func (s *Session) UndoDepth() int { return s.history.UndoDepth() }

// RedoDepth returns the number of redoable actions.
func (s *Session) RedoDepth() int { return s.history.RedoDepth() }

// Seq returns the seq of the latest change.
func (s *Session) Seq() int64 { return s.clock.Current() }

// Registry returns the calibration registry the session resolves against.
func (s *Session) Registry() *calibration.Registry { return s.registry }

func (s *Session) notify(kind ChangeKind, id string) {
	seq := s.clock.Next()
	if s.observer != nil {
		s.observer(Change{Seq: seq, Kind: kind, ID: id})
	}
}
