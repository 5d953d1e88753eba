package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/idmbatch"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := idmbatch.BatchFilter{Limit: c.Limit}
	if c.Session != "" {
		filter.SessionID = &c.Session
	}

	batches, err := deps.Batches.FindBatches(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
		return err
	}

	if len(batches) == 0 {
		fmt.Fprintln(deps.Stdout, "No batches recorded yet. Use 'idmbatch run' to send some.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSESSION\tLINKS\tSENT\tSOURCE")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%d-%d\t%d/%d\t%s\n",
			b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(b.SessionID),
			b.Offset+1, b.Offset+b.Size,
			b.Sent, b.Size,
			b.Source,
		)
	}
	return w.Flush()
}

// shortID trims a UUID to its first group.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
