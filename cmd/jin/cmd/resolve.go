package cmd

import (
	"fmt"

	"charm.land/huh/v2"
	"github.com/spf13/cobra"

	"github.com/jinconf/jin/internal/lockfile"
	"github.com/jinconf/jin/internal/resume"
)

var resolveAssumeYes bool

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Finish an apply paused on conflicts",
	Long: `Re-read every conflicted file's current on-disk content as its
resolution and finish the apply that was paused at the conflict gate.

The first run after a conflicted apply writes the conflict-marked
files to the workspace (the apply itself left the workspace
untouched) and fails again so they can be hand-edited. Once every
file's markers are gone, a further run finishes the apply.`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolVarP(&resolveAssumeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runResolve(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	lock, err := lockfile.Acquire(ws.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	state, err := resume.Load(ws)
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("no apply is currently paused")
		return nil
	}

	if !resolveAssumeYes {
		confirmed := false
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("resume apply tracking %d file(s)?", len(state.Files))).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed)
		if err := confirm.Run(); err != nil {
			return fmt.Errorf("confirmation prompt failed: %w", err)
		}
		if !confirmed {
			fmt.Println("aborted")
			return nil
		}
	}

	st, err := openStore(ws)
	if err != nil {
		return err
	}

	p := buildPipeline(ws, st)

	report, err := p.Resolve(cmd.Context())
	if err != nil {
		return err
	}

	printApplyReport(report)
	return nil
}
