package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fantamorto/internal/platform/config"
	"fantamorto/internal/platform/logger"
)

type rootOptions struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "fantamorto",
		Short:         "Track the people in the league teams and announce their deaths",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.closer != nil {
				return opts.closer.Close()
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newDownloadTeamsCmd(opts),
		newOutboxCmd(opts),
		newHistoryCmd(opts),
		newPeopleCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	o.cfg, o.logger, o.closer = cfg, log, closer
	slog.SetDefault(log)
	return nil
}
