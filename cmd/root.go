package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"uptime-reporter/internal/config"
)

// usageError marks invocation mistakes, which exit with status 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "uptime-reporter",
		Short:         "Probe HTTP endpoints and report phase timings to Graphite",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				configPath = os.Getenv("CONFIG_PATH")
			}
			if configPath == "" {
				cmd.PrintErrln(cmd.UsageString())
				return usageError{fmt.Errorf("no configuration file given, use --config or CONFIG_PATH")}
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runFunc(cfg)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.PrintErrln(cmd.UsageString())
		return usageError{err}
	})

	root.AddCommand(newURLCommand())
	return root
}

// newURLCommand probes a single URL configured from the environment, using
// the URL-rooted metric layout.
func newURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url <url>",
		Short: "Probe a single URL configured from the environment",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				cmd.PrintErrln(cmd.UsageString())
				return usageError{fmt.Errorf("expected exactly one URL, got %d arguments", len(args))}
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.LoadLegacy(args[0])
			if err != nil {
				return err
			}
			return runFunc(cfg)
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cmd.PrintErrln(cmd.UsageString())
		return usageError{fmt.Errorf("unexpected arguments: %v", args)}
	}
	return nil
}

var runFunc = run
