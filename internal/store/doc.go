// Package store provides the persistent settings store for Juli.
//
// The [Store] interface is a key-value store addressed by dotted paths,
// matching the layout of the settings file written by earlier releases:
//
//	workspaces.43          -> map of workspace id to record
//	workspaces.43.<id>     -> one record
//
// The first segment of a key names a JSON document; the remaining segments
// walk into it (gjson for reads, sjson for writes). Each write is one
// read-modify-write transaction on that document.
//
// # Backends
//
//   - Bolt (default): bbolt file settings.bolt in the data directory
//   - SQLite: settings.db, one row per root document
//
// Use [Open] to pick a backend by name:
//
//	s, err := store.Open(store.KindBolt, dataDir)
//	_ = s.Set(store.Key("workspaces", "43", id), w)
package store
