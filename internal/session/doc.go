// Package session owns exclusive access to the tag transceiver.
//
// Ownership boundary:
// - the session lock (busy flag plus at most one active write or scan handle)
// - write attempts over the ordered encoding candidates
// - read operations resolved by the first tag detection
// - status and profile delivery to the form layer
//
// Encoding and decoding rules live in internal/codec; record framing lives in
// internal/ndef and the transceiver implementation.
package session
