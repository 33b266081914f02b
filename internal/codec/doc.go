// Package codec is the payload codec between profile records and tag records.
//
// Ownership boundary:
// - ordered encoding candidates for a write (structured mime, generic text, plain text)
// - decode of a scanned record set into a profile, raw text, or diagnostics
//
// Decode never fails. Records that cannot be decoded are reported as
// unreadable in the diagnostic dump and skipped.
package codec
