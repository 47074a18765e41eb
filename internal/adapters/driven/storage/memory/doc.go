// Package memory provides in-memory implementations of driven port
// interfaces. Nothing is persisted; the stores back tests and ephemeral runs.
package memory
