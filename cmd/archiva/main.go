package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "archiva"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Archiva repository server",
		Long:          "Serves managed Maven repositories and searches their artifact indexes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetVersionTemplate(`{{.Version}} (` + build + `)
`)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to the configuration file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("index-dir", "./data/indexes", "directory holding the repository indexes")

	rootCmd.AddCommand(
		newServeCommand(programName, version),
		newScanCommand(),
		newSearchCommand(),
		newTokenCommand(),
		newMigrateCommand(),
	)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}
