// Package ir provides the program and instruction types shared by schedcheck.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps IR the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Positions are dense 0-based program-order indices
//   - Stream, device and event ids are non-negative int64 with no fixed maximum
//   - All JSON tags use snake_case
//   - Canonical JSON is the only serialization used for digests
package ir
