package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one reconcile, queue and delivery cycle",
		Long: `Run one pipeline cycle: load the team files, refresh everyone's facts,
queue notifications for new deaths and deliver the outbox.

Exits non-zero when the run fails or is aborted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.runner.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"run %s: %d teams, %d names, %d died, %d jobs queued, %d delivered, %d failed, %d retrying\n",
				report.RunID, report.Teams, report.Names, len(report.Refresh.Died),
				report.Queue.Jobs+report.NotFoundQueued,
				report.Drain.Delivered, report.Drain.Failed, report.Drain.Retrying)
			return nil
		},
	}
}
