package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := webcrawl.ReportFilter{Limit: c.Limit}
	if c.Root != "" {
		filter.RootURL = &c.Root
	}
	if c.Page != "" {
		filter.PageURL = &c.Page
	}

	reports, err := deps.Reports.FindReports(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(deps.Stdout, "No reports found. Use 'webcrawl crawl' to create one.")
		return nil
	}

	for _, r := range reports {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  depth=%d  downloaded=%d  failed=%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.RootURL, r.Depth, len(r.Downloaded), len(r.Errors))
	}

	return nil
}
