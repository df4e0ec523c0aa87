package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Tours and personal records are stored as JSON documents. Partner agencies
// and their guests live inside the tour document.
const schema = `
CREATE TABLE IF NOT EXISTS tours (
    id TEXT PRIMARY KEY,
    doc TEXT NOT NULL CHECK (json_valid(doc)),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS personal_records (
    id TEXT PRIMARY KEY,
    tour_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    doc TEXT NOT NULL CHECK (json_valid(doc)),
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_personal_records_tour_id ON personal_records(tour_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
