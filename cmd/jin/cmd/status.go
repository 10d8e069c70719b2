package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/jinconf/jin/internal/attach"
	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/resume"
	"github.com/jinconf/jin/internal/staging"
)

var (
	attachedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	detachedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	headingStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active context, attachment state, and pending work",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	ctx, err := jctx.Load(ws)
	if err != nil {
		return err
	}

	st, err := openStore(ws)
	if err != nil {
		return err
	}

	status, err := attach.Validate(ws, st)
	if err != nil {
		return err
	}
	if status.Attached {
		fmt.Println(attachedStyle.Render("attached"))
	} else {
		fmt.Println(detachedStyle.Render("detached") + ": " + status.Detached.Error())
	}

	fmt.Println()
	fmt.Println(headingStyle.Render("context"))
	fmt.Printf("  mode:    %s\n", orNone(ctx.Mode))
	fmt.Printf("  scope:   %s\n", orNone(ctx.Scope))
	fmt.Printf("  project: %s\n", orNone(ctx.Project))

	fmt.Println()
	fmt.Println(headingStyle.Render("applicable layers (lowest to highest precedence)"))
	for _, coord := range layer.Applicable(ctx.ToLayerContext()) {
		ref := layer.RefName(coord)
		exists, existsErr := st.RefExists(ref)
		marker := dimStyle.Render("(unset)")
		if existsErr == nil && exists {
			marker = ""
		}
		fmt.Printf("  %-28s %s\n", coord.String(), marker)
	}

	idx, err := staging.LoadIndex(ws)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("%s: %d\n", headingStyle.Render("staged, uncommitted"), len(idx.Entries))

	paused, err := resume.Load(ws)
	if err != nil {
		return err
	}
	if paused != nil {
		fmt.Println()
		fmt.Println(headingStyle.Render("paused apply"))
		for path, fs := range paused.Files {
			if fs.ConflictCount > 0 {
				fmt.Printf("  %s: %d unresolved conflict(s)\n", path, fs.ConflictCount)
			}
		}
		if !paused.HasConflicts() {
			fmt.Println("  all conflicts resolved; run \"jin resolve\" to finish")
		}
	}

	return nil
}

func orNone(s string) string {
	if s == "" {
		return dimStyle.Render("(none)")
	}
	return s
}
