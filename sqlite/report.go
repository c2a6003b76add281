package sqlite

import (
	"context"
	"sort"
	"strings"

	"github.com/fwojciec/webcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webcrawl.ReportService = (*ReportService)(nil)

// ReportService implements webcrawl.ReportService using SQLite.
type ReportService struct {
	db *DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db}
}

// CreateReport stores a report with its pages in one transaction and assigns
// a new ID.
func (s *ReportService) CreateReport(ctx context.Context, report *webcrawl.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reports (id, root_url, root_hash, depth, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, report.RootURL, hashURL(report.RootURL), report.Depth,
		formatTime(report.StartedAt), formatTime(report.FinishedAt)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_pages (report_id, position, url, url_hash, failed, message)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	position := 0
	for _, url := range report.Downloaded {
		if _, err := stmt.ExecContext(ctx, id, position, url, hashURL(url), 0, ""); err != nil {
			return err
		}
		position++
	}
	// Map order is random; store failures sorted so reads are stable.
	failed := make([]string, 0, len(report.Errors))
	for url := range report.Errors {
		failed = append(failed, url)
	}
	sort.Strings(failed)
	for _, url := range failed {
		if _, err := stmt.ExecContext(ctx, id, position, url, hashURL(url), 1, report.Errors[url]); err != nil {
			return err
		}
		position++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	report.ID = id
	return nil
}

// FindReportByID retrieves a report by ID.
func (s *ReportService) FindReportByID(ctx context.Context, id string) (*webcrawl.Report, error) {
	reports, err := s.FindReports(ctx, webcrawl.ReportFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, webcrawl.Errorf(webcrawl.ENOTFOUND, "report not found")
	}
	return reports[0], nil
}

// FindReports retrieves reports matching the filter, newest first.
func (s *ReportService) FindReports(ctx context.Context, filter webcrawl.ReportFilter) ([]*webcrawl.Report, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, root_url, depth, started_at, finished_at FROM reports WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.RootURL != nil {
		query.WriteString(" AND root_hash = ? AND root_url = ?")
		args = append(args, hashURL(*filter.RootURL), *filter.RootURL)
	}

	if filter.PageURL != nil {
		query.WriteString(` AND EXISTS (
			SELECT 1 FROM report_pages p
			WHERE p.report_id = reports.id AND p.url_hash = ? AND p.url = ?
		)`)
		args = append(args, hashURL(*filter.PageURL), *filter.PageURL)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*webcrawl.Report
	for rows.Next() {
		var report webcrawl.Report
		var startedAt, finishedAt string

		if err := rows.Scan(&report.ID, &report.RootURL, &report.Depth, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if report.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if report.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Close before loading pages; the pool holds a single connection.
	rows.Close()

	for _, report := range reports {
		if err := s.loadPages(ctx, report); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// DeleteReport permanently removes a report and its pages.
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return webcrawl.Errorf(webcrawl.ENOTFOUND, "report not found")
	}

	return nil
}

func (s *ReportService) loadPages(ctx context.Context, report *webcrawl.Report) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, failed, message
		FROM report_pages
		WHERE report_id = ?
		ORDER BY position
	`, report.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	report.Errors = make(map[string]string)
	for rows.Next() {
		var url, message string
		var failed bool
		if err := rows.Scan(&url, &failed, &message); err != nil {
			return err
		}
		if failed {
			report.Errors[url] = message
		} else {
			report.Downloaded = append(report.Downloaded, url)
		}
	}
	return rows.Err()
}
