// Package sqlite provides the SQLite implementation of driven.CorpusStore.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Sentences, feature vectors and sentence vectors are stored as
// JSON columns; Go encodes floats in their shortest round-trip form, so a
// reloaded vector is bit-for-bit identical to the stored one.
//
// # Data Location
//
// By default, the corpus is stored at ~/.provenance/data/corpus.db
//
// # Thread Safety
//
// Appends are serialised by a store mutex on top of SQLite's single-writer
// lock. Reads run in read-only transactions and, under WAL, observe a
// stable snapshot while appends proceed.
package sqlite
