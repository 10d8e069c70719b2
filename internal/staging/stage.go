package staging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/store"
	"github.com/jinconf/jin/internal/workspace"
)

const (
	regularMode    = "100644"
	executableMode = "100755"
)

// Stage implements the per-file staging operation of §4.7: reject
// invalid inputs, blob the rest, and update the staging index in
// place (the caller is responsible for SaveIndex).
func Stage(paths []string, coord layer.Coordinate, ws *workspace.Workspace, st store.Store, det Detector, idx *Index) error {
	for _, path := range paths {
		rel, mode, err := checkFile(ws.Root, path, det)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return jerr.Storage(err)
		}
		blob, err := st.CreateBlob(data)
		if err != nil {
			return err
		}

		idx.Entries[rel] = Entry{Coordinate: coord, Blob: blob.String(), Mode: mode}
	}
	return nil
}

// checkFile implements §4.7's five rejections and returns the path's
// workspace-relative form and git-style mode string.
func checkFile(root, path string, det Detector) (rel string, mode string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", jerr.Storage(err)
	}
	rel, err = filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", jerr.InvalidRouting("path %q is outside the workspace root", path)
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return "", "", jerr.Storage(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return "", "", jerr.InvalidRouting("path %q is a symlink, stage its target directly", path)
	}
	if info.IsDir() {
		return "", "", jerr.InvalidRouting("path %q is a directory, stage individual files", path)
	}
	if !info.Mode().IsRegular() {
		return "", "", jerr.InvalidRouting("path %q is not a regular file", path)
	}
	if det.Tracked(root, rel) {
		return "", "", jerr.InvalidRouting("path %q is tracked by the host project's VCS", path)
	}

	mode = regularMode
	if info.Mode()&0o111 != 0 {
		mode = executableMode
	}
	return filepath.ToSlash(rel), mode, nil
}
