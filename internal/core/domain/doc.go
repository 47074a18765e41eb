// Package domain defines the core entities of the detection engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - StoredDocument: A previously analysed text with its derived features
//   - DetectionResult: The value object returned for one analysis request
//   - RawScore: The common payload every detection backend translates into
//   - BackendDescriptor: A ranked, configured detection backend
//   - Settings: The typed configuration object supplied at start-up
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
