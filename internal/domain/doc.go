// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (follower.go, audit.go,
// errors.go) with shared types and cross-cutting contracts. No
// implementation code - just types. Prevents circular imports by keeping
// interfaces on the consumer side.
package domain
