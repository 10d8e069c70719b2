package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jinconf/jin/internal/lockfile"
	"github.com/jinconf/jin/internal/staging"
	"github.com/jinconf/jin/pkg/log"
)

var commitMessage string

var commitCmd = &cobra.Command{
	Use:   "commit -m <message>",
	Short: "Commit the staging index into their target layers",
	Long: `Group every staged file by target layer coordinate, write a new
commit per layer on top of its previous commit, and clear the
committed entries from the staging index.`,
	RunE: runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	//nolint:errcheck // cobra MarkFlagRequired only fails if flag doesn't exist
	commitCmd.MarkFlagRequired("message")
}

func runCommit(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	lock, err := lockfile.Acquire(ws.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	idx, err := staging.LoadIndex(ws)
	if err != nil {
		return err
	}
	if len(idx.Entries) == 0 {
		log.Info("nothing staged")
		return nil
	}

	st, err := openStore(ws)
	if err != nil {
		return err
	}

	committed := len(idx.Entries)
	if err := staging.Commit(idx, st, commitMessage); err != nil {
		return err
	}

	if err := staging.SaveIndex(ws, idx); err != nil {
		return err
	}

	log.WithField("count", committed).Info("committed")

	return nil
}
