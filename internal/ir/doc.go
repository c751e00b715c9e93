// Package ir provides the canonical serialization used to compare engine
// states.
//
// Two runs of the same event sequence must produce byte-identical canonical
// output: journal replay and golden snapshots both rely on it. ir imports
// nothing internal.
//
// Key design constraints:
//   - Object keys ordered by UTF-16 code units (RFC 8785)
//   - Strings NFC-normalized, no HTML escaping
//   - Floats rendered in shortest round-trip form; NaN, Inf and null rejected
//   - All JSON keys use snake_case
package ir
