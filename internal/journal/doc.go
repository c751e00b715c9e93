// Package journal records the input events of a measurement session in
// SQLite so a run can be replayed and checked later.
//
// The journal is diagnostic. Sessions keep their measurements in memory
// and never load state from here; `takeoff replay` reads the recorded
// events, re-drives a fresh engine.Session and compares the final digest
// with the one stored when the session finished.
//
// Events are stored in arrival order (pos) together with the logical seq
// the session had reached when each was applied.
package journal
