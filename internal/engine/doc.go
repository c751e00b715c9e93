// Package engine owns the measurement session: the drag machine, the
// measurement store, the undo/redo history, the calibration factor and the
// hovered measurement for one open document.
//
// ARCHITECTURE:
//
// Session is an explicit state object. Every pointer callback, calibration
// choice, undo/redo request and document change goes through one of its
// methods (or Apply, which dispatches an Event to them). Nothing in the
// package holds global state.
//
// Session methods never block and are not safe for concurrent use. Hosts
// that receive input on several goroutines wrap the Session in an Engine,
// whose single-writer Run loop serializes all mutations:
//
//  1. Events enqueued to a FIFO queue from any goroutine
//  2. Engine.Run() dequeues events one at a time
//  3. Session.Apply() performs the transition
//  4. The optional Recorder journals the applied event
//  5. The Observer hears about the change and re-derives the overlay
//
// Logical Clock:
// Every state change is stamped with a monotonic seq from the Sequencer.
// NEVER use wall-clock timestamps for ordering.
//
// Replay:
// Applying the same events, with the committed measurement IDs they carry,
// to a fresh Session reproduces the same canonical state and digest.
package engine
