package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinconf/jin/pkg/config"
	"github.com/jinconf/jin/pkg/log"
)

var (
	// Global flags
	cfgFile  string
	workDir  string
	logLevel string

	// Version info
	versionInfo struct {
		Version string
		Commit  string
		Date    string
	}

	// Global config
	cfg *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "jin",
	Short: "Layered configuration composition",
	Long: `Jin composes configuration across a fixed eight-layer precedence
order (global, mode, mode+scope, mode+scope+project, mode+project,
scope, project, user-local), merging structured files with null-deletion
and keyed-array semantics and opaque files with a 3-way text merge, and
applies the result into a workspace.

Features:
  - Deep merge with deletion markers and keyed-array semantics
  - 3-way text merge for opaque files, with conflict markers on overlap
  - Context-aware layer routing (mode, scope, project)
  - Attachment validation against the last applied state
  - Resumable apply after hand-resolving conflicts`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		log.Init()

		if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
			logLevel = "debug"
		}

		if logLevel != "" {
			if err := log.SetLevelFromString(logLevel); err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
		}

		if cmd.Name() != "version" && versionInfo.Version != "" {
			log.WithField("version", versionInfo.Version).Debug("jin")
		}

		// Skip config loading for commands that have no use for it.
		switch cmd.Name() {
		case "version", "schema", "completion", "man":
			return nil
		}

		log.Debug("loading configuration")
		var err error
		if cfgFile != "" {
			log.WithField("file", cfgFile).Debug("loading config from file")
			cfg, err = config.Load(cfgFile)
		} else {
			log.WithField("dir", workDir).Debug("loading config from directory")
			cfg, err = config.LoadOrDefault(workDir)
		}

		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log.Debug("validating configuration")
		return cfg.Validate()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets version information.
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: .jin.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "w", cwd, "workspace root directory")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output (shorthand for --log-level=debug)")
}
