package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fwojciec/webcrawl"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	report, err := deps.Reports.FindReportByID(deps.Ctx, c.ID)
	if err != nil {
		if webcrawl.ErrorCode(err) == webcrawl.ENOTFOUND {
			return webcrawl.Errorf(webcrawl.ENOTFOUND, "report %q not found. Use 'webcrawl list' to see saved reports.", c.ID)
		}
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(deps.Stdout, "Report:   %s\n", report.ID)
	fmt.Fprintf(deps.Stdout, "Root:     %s\n", report.RootURL)
	fmt.Fprintf(deps.Stdout, "Depth:    %d\n", report.Depth)
	fmt.Fprintf(deps.Stdout, "Started:  %s\n", report.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(deps.Stdout, "Duration: %s\n", report.Duration().Round(time.Millisecond))

	fmt.Fprintf(deps.Stdout, "\nDownloaded (%d):\n", len(report.Downloaded))
	for _, url := range report.Downloaded {
		fmt.Fprintf(deps.Stdout, "  %s\n", url)
	}

	if len(report.Errors) > 0 {
		failed := make([]string, 0, len(report.Errors))
		for url := range report.Errors {
			failed = append(failed, url)
		}
		sort.Strings(failed)

		fmt.Fprintf(deps.Stdout, "\nErrors (%d):\n", len(report.Errors))
		for _, url := range failed {
			fmt.Fprintf(deps.Stdout, "  %s: %s\n", url, report.Errors[url])
		}
	}

	return nil
}
