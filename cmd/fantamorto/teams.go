package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fantamorto/internal/sheets"
)

func newDownloadTeamsCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download-teams",
		Short: "Write team files from the league spreadsheet",
		Long: `Download the league spreadsheet as CSV and write one team file per
team column. Contacts come from the notifications file and name fixes from
the corrections file; both are optional.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = opts.cfg.Teams.Folder
			}
			d, err := sheets.NewDownloader(opts.cfg.Sheets, sheets.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			report, err := d.Download(cmd.Context(), output)
			if err != nil {
				return err
			}
			for _, name := range report.Written {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d teams written to %s\n", len(report.Written), report.Teams, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output folder (default teams.folder)")
	return cmd
}
