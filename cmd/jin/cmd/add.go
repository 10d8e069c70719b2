package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/lockfile"
	"github.com/jinconf/jin/internal/staging"
	"github.com/jinconf/jin/pkg/log"
)

var (
	addGlobal  bool
	addLocal   bool
	addMode    bool
	addProject bool
	addScope   string
)

var addCmd = &cobra.Command{
	Use:   "add <paths...>",
	Short: "Stage files for a targeted layer",
	Long: `Stage one or more files for commit into the layer selected by
the routing flags, per the routing table:

  (no flags)        project layer for the active project
  --mode            mode layer for the active mode
  --mode --project  mode+project layer
  --scope <name>    scope layer
  --mode --scope    mode+scope layer
  --mode --scope --project  mode+scope+project layer
  --project         project layer for the active project
  --global          the global base layer
  --local           the user-local layer

--global and --local are mutually exclusive with every other flag.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().BoolVar(&addGlobal, "global", false, "target the global base layer")
	addCmd.Flags().BoolVar(&addLocal, "local", false, "target the user-local layer")
	addCmd.Flags().BoolVar(&addMode, "mode", false, "target the active mode's layer")
	addCmd.Flags().BoolVar(&addProject, "project", false, "target the active project's layer")
	addCmd.Flags().StringVar(&addScope, "scope", "", "target the named scope's layer")
}

func runAdd(_ *cobra.Command, args []string) error {
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

	ctx, err := jctx.Load(ws)
	if err != nil {
		return err
	}

	coord, err := staging.Route(staging.RouteOptions{
		Mode:    addMode,
		Scope:   addScope,
		Project: addProject,
		Global:  addGlobal,
		Local:   addLocal,
	}, ctx)
	if err != nil {
		return err
	}

	st, err := openStore(ws)
	if err != nil {
		return err
	}

	idx, err := staging.LoadIndex(ws)
	if err != nil {
		return err
	}

	if err := staging.Stage(args, coord, ws, st, staging.NewDetector(), idx); err != nil {
		return err
	}

	if err := staging.SaveIndex(ws, idx); err != nil {
		return err
	}

	for _, p := range args {
		log.WithField("path", p).Info("staged")
	}

	return nil
}
