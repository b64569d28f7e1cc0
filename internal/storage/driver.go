package storage

// Driver used: modernc.org/sqlite (pure Go, no C compiler required).
// Vectors live in the external vector index, so no SQLite extension is
// needed here.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"
)
