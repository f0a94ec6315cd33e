// Package storage defines the persistence interfaces for the Folio registry.
//
// It provides a high-level abstraction for storing pages, update requests,
// reactions, and telemetry events. Implementations of these interfaces
// (in-memory and SQLite) can be found in subpackages.
//
// # Error Types
//
// The package defines common error types used across storage implementations:
//   - ErrNotFound: Indicates a requested record is missing.
package storage
