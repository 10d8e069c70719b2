package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jinconf/jin/pkg/config"
	"github.com/jinconf/jin/pkg/log"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a jin workspace",
	Long: `Create the workspace metadata directory and object store if
absent, and write a default .jin.yaml configuration file.

Running init again on an already-initialized workspace is a no-op
unless --force is given, in which case the configuration file (but
never the object store or any applied state) is overwritten.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite existing config file")
}

func runInit(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	log.WithField("root", ws.Root).Debug("ensuring workspace layout")
	if err := ws.EnsureLayout(); err != nil {
		return fmt.Errorf("failed to create workspace metadata directory: %w", err)
	}

	log.WithField("dir", ws.ObjectsDir()).Debug("opening object store")
	if _, err := openStore(ws); err != nil {
		return err
	}

	configPath := filepath.Join(workDir, ".jin.yaml")
	if _, err := os.Stat(configPath); err == nil && !forceInit {
		log.WithField("file", configPath).Info("config file already exists, leaving it in place")
	} else {
		log.Debug("writing default configuration")
		defaultCfg := config.DefaultConfig()
		if err := defaultCfg.Save(configPath); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		log.WithField("file", configPath).Info("configuration created")
	}

	log.WithField("root", ws.Root).Info("workspace initialized")
	log.Info("next steps:")
	log.IncreasePadding()
	log.Info("jin add <paths...>")
	log.Info("jin commit -m \"initial layer\"")
	log.Info("jin apply")
	log.DecreasePadding()

	return nil
}
