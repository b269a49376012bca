// Package services defines shared error utilities consumed by the search,
// clip, and HTTP layers.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that tag failures with
//     their taxonomy (validation, not found, engine, decode).
//   - The HTTPStatus mapping the web layer uses to classify failures without
//     inspecting error strings.
//
// All core operations reject invalid input with ErrValidation before any
// store or engine I/O occurs.
package services
