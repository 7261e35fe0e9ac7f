package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// dateLayout matches SQLite's datetime() so window filters compare as text.
const dateLayout = "2006-01-02 15:04:05"

// Application is one row of the tracker.
type Application struct {
	ID         int64  `json:"id"`
	Company    string `json:"company"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Salary     string `json:"salary"`
	AppliedAt  string `json:"application_date"`
	URL        string `json:"application_page"`
	Template   string `json:"template"`
	Confidence string `json:"confidence"`
	Location   string `json:"location"`
	WorkMode   string `json:"work_mode"`
	SourceID   string `json:"-"`
}

type ListOpts struct {
	Window string // 24h | 7d | 30d | all
	Limit  int
}

// InsertApplication records a posting once per source id. added is false
// when the posting was already tracked.
func InsertApplication(ctx context.Context, db *sql.DB, a Application, now time.Time) (added bool, err error) {
	if a.AppliedAt == "" {
		a.AppliedAt = now.UTC().Format(dateLayout)
	}
	if a.Salary == "" {
		a.Salary = "TBD"
	}
	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO applications
  (company, department, role, salary, applied_at, url, template, confidence, location, work_mode, source_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		a.Company, a.Department, a.Role, a.Salary, a.AppliedAt, a.URL,
		a.Template, a.Confidence, a.Location, a.WorkMode, a.SourceID,
	)
	if err != nil {
		return false, fmt.Errorf("insert application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert application: %w", err)
	}
	return n > 0, nil
}

func ListApplications(ctx context.Context, db *sql.DB, opts ListOpts) ([]Application, error) {
	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 500
	}

	where := ""
	switch opts.Window {
	case "24h":
		where = "WHERE applied_at >= datetime('now','-24 hours')"
	case "7d":
		where = "WHERE applied_at >= datetime('now','-7 days')"
	case "30d":
		where = "WHERE applied_at >= datetime('now','-30 days')"
	}

	query := fmt.Sprintf(`
SELECT id, company, department, role, salary, applied_at, url, template, confidence, location, work_mode, source_id
FROM applications
%s
ORDER BY applied_at DESC, id DESC
LIMIT ?;
`, where)

	rows, err := db.QueryContext(ctx, query, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := []Application{}
	for rows.Next() {
		var a Application
		if err := rows.Scan(
			&a.ID, &a.Company, &a.Department, &a.Role, &a.Salary, &a.AppliedAt,
			&a.URL, &a.Template, &a.Confidence, &a.Location, &a.WorkMode, &a.SourceID,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteApplication removes a row; it reports whether anything was deleted.
func DeleteApplication(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
