package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/lockfile"
	"github.com/jinconf/jin/pkg/log"
)

var activateCmd = &cobra.Command{
	Use:   "activate {mode|scope|project} <name>",
	Short: "Set the active mode, scope, or project",
	Long: `Set which mode, scope, or project layer is currently active.

Activating a component clears the recorded last-applied state only if
it actually changes a value that at least one previously applied layer
depends on, so the next apply is forced to resolve the stack fresh.

Examples:
  jin activate mode ci
  jin activate project web
  jin activate scope backend`,
	Args: cobra.ExactArgs(2),
	RunE: runActivate,
}

func init() {
	rootCmd.AddCommand(activateCmd)
}

func runActivate(_ *cobra.Command, args []string) error {
	var component jctx.Component
	switch args[0] {
	case "mode":
		component = jctx.ComponentMode
	case "scope":
		component = jctx.ComponentScope
	case "project":
		component = jctx.ComponentProject
	default:
		return fmt.Errorf("unknown component %q (want mode, scope, or project)", args[0])
	}
	name, err := layer.ValidName(args[0], args[1])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	if err := ws.EnsureLayout(); err != nil {
		return fmt.Errorf("failed to create workspace metadata directory: %w", err)
	}

	lock, err := lockfile.Acquire(ws.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx, err := jctx.Activate(ws, component, name)
	if err != nil {
		return err
	}

	log.WithField(args[0], name).Info("activated")
	log.WithField("context", ctx).Debug("active context")

	return nil
}
