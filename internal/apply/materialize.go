package apply

import (
	"os"
	"path/filepath"

	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/workspace"
)

// writeFileAtomicText is workspace.WriteFileAtomic for string content, shared by
// gitignore.go's managed-block rewrite.
func writeFileAtomicText(path, content string) error {
	return workspace.WriteFileAtomic(path, []byte(content), 0o644)
}

// materializeFiles writes every result's content under ws.Root,
// creating parent directories as needed.
func materializeFiles(ws *workspace.Workspace, results []fileMergeResult) error {
	for _, r := range results {
		full := filepath.Join(ws.Root, r.Path)
		if err := workspace.WriteFileAtomic(full, r.Content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// deleteStalePaths removes files that were tracked by the previous
// apply but are absent from the new candidate set. Per DESIGN.md's
// Open Question decision 2, emptied parent directories are left in
// place rather than pruned.
func deleteStalePaths(ws *workspace.Workspace, oldPaths map[string]bool, newPaths map[string]bool) ([]string, error) {
	var deleted []string
	for path := range oldPaths {
		if newPaths[path] {
			continue
		}
		full := filepath.Join(ws.Root, path)
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return nil, jerr.Storage(err)
		}
		deleted = append(deleted, path)
	}
	return deleted, nil
}
