package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// Version suffix enables future algorithm migration.
const (
	DomainState = "takeoff/state/v1"
	DomainEvent = "takeoff/event/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest canonicalizes v and hashes it under domain.
func Digest(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: failed to marshal: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// StateDigest hashes a canonical engine state view. Equal digests mean two
// runs ended in the same observable state.
func StateDigest(view map[string]any) (string, error) {
	return Digest(DomainState, view)
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDigest(domain string, v any) string {
	d, err := Digest(domain, v)
	if err != nil {
		panic(err)
	}
	return d
}
