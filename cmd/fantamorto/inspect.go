package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newOutboxCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outbox",
		Short: "List jobs waiting for delivery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.ListOutbox(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCHANNEL\tADDRESS\tTEAM\tPERSON\tATTEMPTS\tLAST ERROR")
			for _, j := range jobs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
					j.ID, j.Channel, j.Address, dash(j.TeamName), dash(j.PersonName), j.Attempts, dash(j.LastError))
			}
			return w.Flush()
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent delivery outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tCHANNEL\tADDRESS\tPERSON\tOUTCOME\tATTEMPTS\tRECORDED\tERROR")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					e.JobID, e.Channel, e.Address, dash(e.PersonName), e.Outcome, e.Attempts,
					e.RecordedAt.Format("2006-01-02 15:04"), dash(e.Error))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func newPeopleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "List tracked people and their announcement state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			people, err := store.ListPeople(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRESOLVED\tID\tBORN\tDIED\tNOTICE")
			for _, p := range people {
				id := "not found"
				if p.Found() {
					id = p.StableID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.OriginalName, p.DisplayName(), id, dash(p.BirthDate), dash(p.DeathDate), p.GlobalNotice())
			}
			return w.Flush()
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
