// Package workspace defines the on-disk layout of spec.md §6.2: the
// metadata directory under a workspace root, and the atomic file
// write/read helpers every other package builds on.
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/jinconf/jin/internal/jerr"
)

// MetadataDirName is the name of the metadata directory at the
// workspace root (analogous to a VCS's own dotdir).
const MetadataDirName = ".jin"

// Workspace locates a working copy: its root directory (where managed
// files are written) and its metadata directory.
type Workspace struct {
	Root string
}

// Open returns a Workspace rooted at root. It does not require the
// metadata directory to already exist; callers create it on first
// Init/Apply.
func Open(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, jerr.Storage(err)
	}
	return &Workspace{Root: abs}, nil
}

// MetadataDir is the metadata directory path.
func (w *Workspace) MetadataDir() string {
	return filepath.Join(w.Root, MetadataDirName)
}

// ObjectsDir is where the object/ref store (internal/store) persists.
func (w *Workspace) ObjectsDir() string {
	return w.MetadataDir()
}

// ContextPath is the active-context file (§6.2 "context").
func (w *Workspace) ContextPath() string {
	return filepath.Join(w.MetadataDir(), "context")
}

// StagingIndexPath is the staging index file (§6.2 "staging/index").
func (w *Workspace) StagingIndexPath() string {
	return filepath.Join(w.MetadataDir(), "staging", "index")
}

// LastAppliedPath is the post-apply metadata file (§6.2
// "workspace/last_applied").
func (w *Workspace) LastAppliedPath() string {
	return filepath.Join(w.MetadataDir(), "workspace", "last_applied")
}

// PausedApplyPath is present only when an apply is suspended at
// conflicts (§6.2 "paused_apply").
func (w *Workspace) PausedApplyPath() string {
	return filepath.Join(w.MetadataDir(), "paused_apply")
}

// LockPath is the advisory lock file (§6.2 "lock").
func (w *Workspace) LockPath() string {
	return filepath.Join(w.MetadataDir(), "lock")
}

// EnsureLayout creates the metadata directory and its subdirectories
// if they do not already exist.
func (w *Workspace) EnsureLayout() error {
	dirs := []string{
		w.MetadataDir(),
		filepath.Join(w.MetadataDir(), "staging"),
		filepath.Join(w.MetadataDir(), "workspace"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return jerr.Storage(err)
		}
	}
	return nil
}

// WriteFileAtomic writes data to path via a temp-suffix-then-rename,
// per spec.md §4.6's atomicity requirement: the file under path either
// has its old content or its new content, never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return jerr.Storage(err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return jerr.Storage(err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return jerr.Storage(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return jerr.Storage(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return jerr.Storage(err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return jerr.Storage(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return jerr.Storage(err)
	}
	return nil
}

// HashFile returns the hex-encoded SHA-256 of path's content, used by
// the dirty check (§4.6 phase 1) to detect out-of-band edits.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes returns the hex-encoded SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
