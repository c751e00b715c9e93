// Package calibration maps drawing-scale identifiers to the factor that
// converts page-local pixel distance into a real-world distance.
//
// The registry is a static table seeded at startup from a CUE document
// (scales.cue is embedded; LoadFile accepts a replacement). Each entry is
// keyed by the identifier offered to the user, usually the ratio
// denominator of an architectural drawing ("100" for 1:100), and carries a
// positive multiplier plus the unit of the converted value.
//
// Calibration is session-global: a Factor is either absent (uncalibrated,
// multiplier 1, raw pixel units) or the factor of one registered Scale.
// Selecting a Scale from the registry is the only way to obtain a
// calibrated Factor.
package calibration
