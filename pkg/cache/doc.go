// Package cache provides a small, thread-safe LRU cache with optional
// per-entry TTL.
//
// It backs the in-process event-ID deduplication window and the
// read-through layer in front of the configuration store. Capacity is
// fixed at construction; when full, the least recently used entry is
// evicted. Expired entries are treated as absent and removed lazily on
// access.
package cache
