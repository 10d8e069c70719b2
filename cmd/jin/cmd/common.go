package cmd

import (
	"fmt"

	"github.com/jinconf/jin/internal/store"
	"github.com/jinconf/jin/internal/workspace"
)

// openWorkspace resolves the workspace root, letting the loaded
// configuration's workspace.root override the --workdir flag's
// default (the current working directory) when the flag itself was
// left at that default.
func openWorkspace() (*workspace.Workspace, error) {
	root := workDir
	if cfg != nil && cfg.Workspace.Root != "" && !rootCmd.PersistentFlags().Changed("workdir") {
		root = cfg.Workspace.Root
	}
	ws, err := workspace.Open(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, nil
}

// openStore opens the object/ref store rooted at the workspace root
// (its files land in the workspace's metadata directory), honoring
// store.path's override of that root.
func openStore(ws *workspace.Workspace) (store.Store, error) {
	dir := ws.Root
	if cfg != nil && cfg.Store.Path != "" {
		dir = cfg.Store.Path
	}
	st, err := store.OpenGitStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}
	return st, nil
}
