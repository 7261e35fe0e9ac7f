package store

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// Migrate brings the schema up to schemaVersion, tracked in PRAGMA user_version.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	stmts := []string{`
CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company TEXT NOT NULL DEFAULT '',
  department TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT 'TBD',
  applied_at TEXT NOT NULL,
  url TEXT NOT NULL,
  template TEXT NOT NULL DEFAULT '',
  confidence TEXT NOT NULL DEFAULT 'low',
  location TEXT NOT NULL DEFAULT '',
  work_mode TEXT NOT NULL DEFAULT 'Unknown',
  source_id TEXT NOT NULL DEFAULT ''
);`, `
CREATE INDEX IF NOT EXISTS idx_applications_applied_at
ON applications(applied_at);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_source_id
ON applications(source_id)
WHERE source_id != '';`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}

	if !columnExists(tx, "applications", "work_mode") {
		if _, err := tx.Exec(`ALTER TABLE applications ADD COLUMN work_mode TEXT NOT NULL DEFAULT 'Unknown';`); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	return q.QueryRow(query, col).Scan(&one) == nil
}
