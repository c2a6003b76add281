package webcrawl

import (
	"context"
	"time"
)

// Report is the stored outcome of a finished crawl.
type Report struct {
	ID         string            `json:"id"`
	RootURL    string            `json:"rootUrl"`
	Depth      int               `json:"depth"`
	Downloaded []string          `json:"downloaded"`
	Errors     map[string]string `json:"errors"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// NewReport builds a report from a crawl result. Error values are flattened
// to their messages.
func NewReport(rootURL string, depth int, result *Result, startedAt, finishedAt time.Time) *Report {
	r := &Report{
		RootURL:    rootURL,
		Depth:      depth,
		Errors:     make(map[string]string),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if result == nil {
		return r
	}
	r.Downloaded = append(r.Downloaded, result.Downloaded...)
	for url, err := range result.Errors {
		r.Errors[url] = err.Error()
	}
	return r
}

// Validate returns an error if the report contains invalid fields.
func (r *Report) Validate() error {
	if r.RootURL == "" {
		return Errorf(EINVALID, "report root URL required")
	}
	if r.Depth < 1 {
		return Errorf(EINVALID, "report depth must be at least 1")
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return Errorf(EINVALID, "report finishes before it starts")
	}
	return nil
}

// Duration returns how long the crawl took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ReportService represents a service for managing crawl reports.
type ReportService interface {
	// CreateReport stores a new report and assigns its ID.
	CreateReport(ctx context.Context, report *Report) error

	// FindReportByID retrieves a report by ID.
	// Returns ENOTFOUND if the report does not exist.
	FindReportByID(ctx context.Context, id string) (*Report, error)

	// FindReports retrieves reports matching the filter, newest first.
	FindReports(ctx context.Context, filter ReportFilter) ([]*Report, error)

	// DeleteReport permanently removes a report.
	// Returns ENOTFOUND if the report does not exist.
	DeleteReport(ctx context.Context, id string) error
}

// ReportFilter represents a filter for FindReports.
type ReportFilter struct {
	ID      *string `json:"id"`
	RootURL *string `json:"rootUrl"`

	// PageURL matches reports that downloaded or failed this URL.
	PageURL *string `json:"pageUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
