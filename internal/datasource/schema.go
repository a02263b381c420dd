package datasource

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table of every bundle.
const SchemaVersion = 1

// Field kinds in the fields table.
const (
	fieldFreeEnergy  = "free_energy"
	fieldCluster     = "cluster"
	fieldEigenvector = "eigenvector"
)

// Keys in the meta table.
const (
	metaSchemaVersion = "schema_version"
	metaName          = "name"
	metaLagUnit       = "lag_unit"
	metaManifest      = "manifest"
)

// CreateSchema creates the bundle tables.
func CreateSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"meta", `
			CREATE TABLE IF NOT EXISTS meta (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`},
		{"fields", `
			CREATE TABLE IF NOT EXISTS fields (
				kind TEXT NOT NULL,
				id INTEGER NOT NULL,
				doc BLOB NOT NULL,
				PRIMARY KEY (kind, id)
			)`},
		{"timescales", `
			CREATE TABLE IF NOT EXISTS timescales (
				process INTEGER NOT NULL,
				lag_index INTEGER NOT NULL,
				lag REAL NOT NULL,
				timescale REAL NOT NULL,
				PRIMARY KEY (process, lag_index)
			)`},
		{"images", `
			CREATE TABLE IF NOT EXISTS images (
				key INTEGER PRIMARY KEY,
				data BLOB NOT NULL
			)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s table: %w", s.name, err)
		}
	}
	return nil
}
