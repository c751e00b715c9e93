package measure

// Snapshot is an immutable, ordered view of the measurement set.
// Insertion order is display order. The zero value is the empty snapshot.
type Snapshot struct {
	items []Measurement
}

// NewSnapshot copies ms into a new snapshot.
func NewSnapshot(ms ...Measurement) Snapshot {
	if len(ms) == 0 {
		return Snapshot{}
	}
	items := make([]Measurement, len(ms))
	copy(items, ms)
	return Snapshot{items: items}
}

// Len returns the number of measurements.
func (s Snapshot) Len() int {
	return len(s.items)
}

// At returns the i-th measurement. Panics if i is out of range.
func (s Snapshot) At(i int) Measurement {
	return s.items[i]
}

// Measurements returns a copy of the ordered measurements.
func (s Snapshot) Measurements() []Measurement {
	out := make([]Measurement, len(s.items))
	copy(out, s.items)
	return out
}

// IDs returns the measurement IDs in order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.items))
	for i, m := range s.items {
		ids[i] = m.ID
	}
	return ids
}

// Find returns the measurement with the given ID.
func (s Snapshot) Find(id string) (Measurement, bool) {
	for _, m := range s.items {
		if m.ID == id {
			return m, true
		}
	}
	return Measurement{}, false
}

// OnPage returns the measurements anchored to page, in order.
func (s Snapshot) OnPage(page int) []Measurement {
	var out []Measurement
	for _, m := range s.items {
		if m.Page() == page {
			out = append(out, m)
		}
	}
	return out
}

// With returns a new snapshot with m appended. s is unchanged.
func (s Snapshot) With(m Measurement) Snapshot {
	items := make([]Measurement, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return Snapshot{items: append(items, m)}
}

// Equal reports structural equality of the ordered sequences.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// Store is the current measurement set.
//
// From the outside it is append-only; the only other mutation is a full
// replacement with a history snapshot (undo/redo) or a reset on document
// change. Not safe for concurrent use.
type Store struct {
	current Snapshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// List returns the current measurements as an immutable snapshot.
func (st *Store) List() Snapshot {
	return st.current
}

// Len returns the number of measurements.
func (st *Store) Len() int {
	return st.current.Len()
}

// Append adds m and returns the snapshot from before the append, which is
// what the history records for undo.
func (st *Store) Append(m Measurement) (before Snapshot) {
	before = st.current
	st.current = st.current.With(m)
	return before
}

// ReplaceAll installs snap as the current set.
func (st *Store) ReplaceAll(snap Snapshot) {
	st.current = snap
}

// Reset empties the store.
func (st *Store) Reset() {
	st.current = Snapshot{}
}
