package main

import (
	"github.com/spf13/cobra"
)

const app = "tailor-engine"

type rootOptions struct {
	cfgFile string
	dataDir string
	debug   bool
	json    bool
}

var (
	opts rootOptions

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "tailor-engine extracts company, role, salary and resume template from job postings",
		SilenceUsage:  true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is config.yml inside the data dir)")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default $TAILOR_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&opts.json, "json", "j", false, "json format for logging")
}
