package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/takeoff/internal/engine"
)

// Scenario scripts a measurement session: the inputs a user would produce
// and assertions on the state they leave behind.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Scales optionally points at a CUE scale table to use instead of the
	// built-in one. Relative paths resolve against the scenario file.
	Scales string `yaml:"scales,omitempty"`

	// IDs are handed out to committed measurements in order and must be
	// unique. Once they run out, ids continue as m-1, m-2, ..., skipping
	// any already listed here.
	IDs []string `yaml:"ids,omitempty"`

	// Policy overrides session defaults.
	Policy Policy `yaml:"policy,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Policy holds the session choices a scenario can override.
type Policy struct {
	// ZeroLength is "reject" (default) or "allow".
	ZeroLength string `yaml:"zero_length,omitempty"`

	// RedoOrder is "fifo" (default) or "lifo".
	RedoOrder string `yaml:"redo_order,omitempty"`

	// HistoryLimit caps undo depth; 0 is unbounded.
	HistoryLimit int `yaml:"history_limit,omitempty"`
}

// Step is one user input.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Pointer position for down/move, in screen pixels.
	X       float64 `yaml:"x,omitempty"`
	Y       float64 `yaml:"y,omitempty"`
	OriginX float64 `yaml:"origin_x,omitempty"`
	OriginY float64 `yaml:"origin_y,omitempty"`

	// Zoom defaults to 1 and Page to 1 when omitted.
	Zoom *float64 `yaml:"zoom,omitempty"`
	Page *int     `yaml:"page,omitempty"`

	// ID is the hover target.
	ID string `yaml:"id,omitempty"`

	// Scale is the registry id for select_scale.
	Scale string `yaml:"scale,omitempty"`

	// Document names the newly loaded document for load_document.
	Document string `yaml:"document,omitempty"`

	// ExpectError is the RuntimeError code this step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step actions.
const (
	ActionDown         = "down"
	ActionMove         = "move"
	ActionUp           = "up"
	ActionLeave        = "leave"
	ActionHover        = "hover"
	ActionSelectScale  = "select_scale"
	ActionClearScale   = "clear_scale"
	ActionUndo         = "undo"
	ActionRedo         = "redo"
	ActionLoadDocument = "load_document"
)

var stepEvents = map[string]engine.EventType{
	ActionDown:         engine.EventPointerDown,
	ActionMove:         engine.EventPointerMove,
	ActionUp:           engine.EventPointerUp,
	ActionLeave:        engine.EventPointerLeave,
	ActionHover:        engine.EventHover,
	ActionSelectScale:  engine.EventSelectScale,
	ActionClearScale:   engine.EventClearCalibration,
	ActionUndo:         engine.EventUndo,
	ActionRedo:         engine.EventRedo,
	ActionLoadDocument: engine.EventDocumentChanged,
}

// Event converts the step into the engine event it stands for.
func (s Step) Event() (engine.Event, error) {
	typ, ok := stepEvents[s.Action]
	if !ok {
		return engine.Event{}, fmt.Errorf("unknown action %q", s.Action)
	}

	ev := engine.Event{Type: typ}
	switch typ {
	case engine.EventPointerDown, engine.EventPointerMove:
		zoom, page := 1.0, 1
		if s.Zoom != nil {
			zoom = *s.Zoom
		}
		if s.Page != nil {
			page = *s.Page
		}
		ev.Pointer = &engine.PointerEvent{
			ScreenX: s.X,
			ScreenY: s.Y,
			OriginX: s.OriginX,
			OriginY: s.OriginY,
			Zoom:    zoom,
			Page:    page,
		}
	case engine.EventHover:
		ev.ID = s.ID
	case engine.EventSelectScale:
		ev.Scale = s.Scale
	case engine.EventDocumentChanged:
		ev.Document = s.Document
	}
	return ev, nil
}

// Assertion validates the final session state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Index is the 1-based measurement position (display_distance,
	// formatted_distance).
	Index int `yaml:"index,omitempty"`

	// Count is the expected number (measurement_count, undo_depth,
	// redo_depth, overlay_count).
	Count int `yaml:"count,omitempty"`

	// Value is the expected rounded distance (display_distance).
	Value float64 `yaml:"value,omitempty"`

	// Text is the expected formatted text (formatted_distance,
	// overlay_label; empty for overlay_label means no label).
	Text string `yaml:"text,omitempty"`

	// Scale is the expected scale id; empty means uncalibrated (calibration).
	Scale string `yaml:"scale,omitempty"`

	// IDs is the expected measurement id order (measurement_ids).
	IDs []string `yaml:"ids,omitempty"`

	// Page and Zoom select the projected overlay (overlay_count,
	// overlay_label). Both default to 1.
	Page int     `yaml:"page,omitempty"`
	Zoom float64 `yaml:"zoom,omitempty"`
}

// Assertion type constants.
const (
	AssertMeasurementCount  = "measurement_count"
	AssertMeasurementIDs    = "measurement_ids"
	AssertDisplayDistance   = "display_distance"
	AssertFormattedDistance = "formatted_distance"
	AssertCalibration       = "calibration"
	AssertUndoDepth         = "undo_depth"
	AssertRedoDepth         = "redo_depth"
	AssertOverlayCount      = "overlay_count"
	AssertOverlayLabel      = "overlay_label"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative Scales path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Scales != "" && !filepath.IsAbs(scenario.Scales) {
		scenario.Scales = filepath.Join(filepath.Dir(path), scenario.Scales)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	slices.Sort(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.IDs))
	for i, id := range s.IDs {
		if id == "" {
			return fmt.Errorf("ids[%d] is empty", i)
		}
		if seen[id] {
			return fmt.Errorf("ids[%d]: duplicate id %q", i, id)
		}
		seen[id] = true
	}

	switch s.Policy.ZeroLength {
	case "", "reject", "allow":
	default:
		return fmt.Errorf("policy.zero_length must be reject or allow, got %q", s.Policy.ZeroLength)
	}
	switch s.Policy.RedoOrder {
	case "", "fifo", "lifo":
	default:
		return fmt.Errorf("policy.redo_order must be fifo or lifo, got %q", s.Policy.RedoOrder)
	}
	if s.Policy.HistoryLimit < 0 {
		return fmt.Errorf("policy.history_limit must be non-negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Action == "" {
		return fmt.Errorf("action is required")
	}
	ev, err := step.Event()
	if err != nil {
		return err
	}
	if step.ExpectError != "" {
		return nil
	}
	return ev.Validate()
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertDisplayDistance, AssertFormattedDistance:
		if a.Index < 1 {
			return fmt.Errorf("index (1-based) is required for %s", a.Type)
		}
		if a.Type == AssertFormattedDistance && a.Text == "" {
			return fmt.Errorf("text is required for %s", a.Type)
		}
	case AssertMeasurementCount, AssertUndoDepth, AssertRedoDepth, AssertOverlayCount:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for %s", a.Type)
		}
	case AssertMeasurementIDs, AssertCalibration, AssertOverlayLabel:
	default:
		return fmt.Errorf("unknown assertion type %q (want one of %s)", a.Type, strings.Join(assertionTypes(), ", "))
	}
	return nil
}

func assertionTypes() []string {
	return []string{
		AssertMeasurementCount, AssertMeasurementIDs, AssertDisplayDistance,
		AssertFormattedDistance, AssertCalibration, AssertUndoDepth,
		AssertRedoDepth, AssertOverlayCount, AssertOverlayLabel,
	}
}
