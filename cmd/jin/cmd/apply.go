package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jinconf/jin/internal/apply"
	"github.com/jinconf/jin/internal/lockfile"
	"github.com/jinconf/jin/internal/merge"
	"github.com/jinconf/jin/internal/store"
	"github.com/jinconf/jin/internal/textmerge"
	"github.com/jinconf/jin/internal/workspace"
	"github.com/jinconf/jin/pkg/log"
)

var (
	applyDryRun bool
	applyForce  bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Resolve and materialize the layer stack onto the workspace",
	Long: `Resolve the applicable layer stack for the active context,
merge every candidate path across it, and write the result onto the
workspace root.

A dirty workspace (tracked files changed since the last apply) blocks
apply unless --force is given. An unresolved text conflict pauses the
apply without touching the workspace; "jin resolve" writes the
conflict-marked files and picks up where it left off once they are
hand-edited.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "report what would change without writing")
	applyCmd.Flags().BoolVar(&applyForce, "force", false, "apply despite a dirty workspace")
}

func runApply(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	lock, err := lockfile.Acquire(ws.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := openStore(ws)
	if err != nil {
		return err
	}

	p := buildPipeline(ws, st)

	report, err := p.Run(cmd.Context(), apply.Options{DryRun: applyDryRun, Force: applyForce})
	if err != nil {
		return err
	}

	printApplyReport(report)
	return nil
}

// buildPipeline translates the loaded process configuration's merge
// and text-merge sections into the core package's own Config types,
// falling back to their defaults for anything left unset.
func buildPipeline(ws *workspace.Workspace, st store.Store) *apply.Pipeline {
	mergeCfg := merge.DefaultConfig()
	if cfg != nil && len(cfg.Merge.ArrayKeyFields) > 0 {
		mergeCfg.ArrayKeyFields = cfg.Merge.ArrayKeyFields
	}
	textCfg := textmerge.DefaultConfig()
	if cfg != nil {
		if cfg.TextMerge.OursLabel != "" {
			textCfg.OursLabel = cfg.TextMerge.OursLabel
		}
		if cfg.TextMerge.TheirsLabel != "" {
			textCfg.TheirsLabel = cfg.TextMerge.TheirsLabel
		}
		if cfg.TextMerge.BaseLabel != "" {
			textCfg.BaseLabel = cfg.TextMerge.BaseLabel
		}
		textCfg.ShowBase = cfg.TextMerge.ShowBase
	}

	return &apply.Pipeline{
		WS:              ws,
		Store:           st,
		MergeConfig:     mergeCfg,
		TextMergeConfig: textCfg,
	}
}

func printApplyReport(report *apply.Report) {
	if report.DryRun {
		for _, d := range report.Diff {
			log.WithField("action", d.Action).Info(d.Path)
		}
		return
	}
	for _, path := range report.Written {
		log.WithField("path", path).Info("written")
	}
	for _, path := range report.Deleted {
		log.WithField("path", path).Info("deleted")
	}
}
