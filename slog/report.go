package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Ensure LoggingReportService implements webcrawl.ReportService.
var _ webcrawl.ReportService = (*LoggingReportService)(nil)

// LoggingReportService wraps a ReportService with debug logging.
type LoggingReportService struct {
	next   webcrawl.ReportService
	logger *slog.Logger
}

// NewLoggingReportService creates a new LoggingReportService.
func NewLoggingReportService(next webcrawl.ReportService, logger *slog.Logger) *LoggingReportService {
	return &LoggingReportService{next: next, logger: logger}
}

// CreateReport delegates to the wrapped service and logs the operation.
func (s *LoggingReportService) CreateReport(ctx context.Context, report *webcrawl.Report) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create report",
			"id", report.ID,
			"url", report.RootURL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateReport(ctx, report)
}

// FindReportByID delegates to the wrapped service and logs the operation.
func (s *LoggingReportService) FindReportByID(ctx context.Context, id string) (report *webcrawl.Report, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find report",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindReportByID(ctx, id)
}

// FindReports delegates to the wrapped service and logs the operation.
func (s *LoggingReportService) FindReports(ctx context.Context, filter webcrawl.ReportFilter) (reports []*webcrawl.Report, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find reports",
			"count", len(reports),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindReports(ctx, filter)
}

// DeleteReport delegates to the wrapped service and logs the operation.
func (s *LoggingReportService) DeleteReport(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete report",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteReport(ctx, id)
}
