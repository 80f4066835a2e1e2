// Package pii normalizes and hashes personally identifying match keys
// (email, phone, external id) before they leave the process.
//
// Conversions APIs match server events against client events by comparing
// SHA-256 digests of normalized values. Normalization must happen before
// hashing — trim whitespace, then lowercase — or the digest will never
// match the one computed elsewhere in the ecosystem.
//
// Empty input produces an empty output rather than a hash of the empty
// string, so callers can omit the field from outgoing payloads entirely.
package pii
