// Package model provides the shared row types for the rollcall pipeline.
//
// This package contains type definitions plus the small amount of parsing
// and serialization logic every other package depends on. All other
// internal packages import model; model imports nothing internal. This
// keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Dates are civil dates (no time of day, no zone). An unparseable or
//     empty date is represented by the zero Date, which sorts after every
//     valid date so that undateable actions never leak into backward
//     (as-of) windows.
//   - Derived tables are serialized with MarshalCanonical: sorted keys,
//     NFC-normalized strings, shortest-round-trip floats. Two pipeline
//     runs over identical inputs produce byte-identical output.
//   - All JSON tags use snake_case.
package model
