package main

import (
	"fmt"

	"github.com/fwojciec/webcrawl"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		return webcrawl.Errorf(webcrawl.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Reports.DeleteReport(deps.Ctx, c.ID); err != nil {
		if webcrawl.ErrorCode(err) == webcrawl.ENOTFOUND {
			return webcrawl.Errorf(webcrawl.ENOTFOUND, "report %q not found. Use 'webcrawl list' to see saved reports.", c.ID)
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted report %s\n", c.ID)
	return nil
}
