// Package e2e drives Jin's internal packages the way the cmd/jin
// commands wire them together, exercising full init -> add -> commit
// -> activate -> apply sequences without shelling out to the built
// binary.
package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jinconf/jin/internal/apply"
	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/merge"
	"github.com/jinconf/jin/internal/staging"
	"github.com/jinconf/jin/internal/store"
	"github.com/jinconf/jin/internal/textmerge"
	"github.com/jinconf/jin/internal/workspace"
)

// fakeDetector reports every path as untracked, the same stance
// internal/staging's own tests take for a VCS-less workspace.
type fakeDetector struct{}

func (fakeDetector) Tracked(string, string) bool { return false }

// newWorkspace mirrors "jin init": an empty workspace directory with
// its metadata layout laid down.
func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.Open(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.Open() error = %v", err)
	}
	if err := ws.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout() error = %v", err)
	}
	return ws
}

// writeWorkspaceFile drops a file directly under the workspace root,
// the thing a user edits before "jin add".
func writeWorkspaceFile(t *testing.T, ws *workspace.Workspace, rel, content string) string {
	t.Helper()
	full := filepath.Join(ws.Root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return full
}

// addAndCommit mirrors "jin add <paths> --<routing flags>" followed by
// "jin commit -m <message>": stage every path under coord, then commit
// the staging index to that layer's ref.
func addAndCommit(t *testing.T, ws *workspace.Workspace, st store.Store, coord layer.Coordinate, message string, paths ...string) {
	t.Helper()
	idx, err := staging.LoadIndex(ws)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if err := staging.Stage(paths, coord, ws, st, fakeDetector{}, idx); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if err := staging.SaveIndex(ws, idx); err != nil {
		t.Fatalf("SaveIndex() error = %v", err)
	}

	idx, err = staging.LoadIndex(ws)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if err := staging.Commit(idx, st, message); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := staging.SaveIndex(ws, idx); err != nil {
		t.Fatalf("SaveIndex() error = %v", err)
	}
}

// newPipeline mirrors buildPipeline in cmd/jin/cmd/apply.go with
// every config left at its default.
func newPipeline(ws *workspace.Workspace, st store.Store) *apply.Pipeline {
	return &apply.Pipeline{
		WS:              ws,
		Store:           st,
		MergeConfig:     merge.DefaultConfig(),
		TextMergeConfig: textmerge.DefaultConfig(),
	}
}

// activate mirrors "jin activate <component> <name>".
func activate(t *testing.T, ws *workspace.Workspace, component jctx.Component, name string) jctx.Context {
	t.Helper()
	ctx, err := jctx.Activate(ws, component, name)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	return ctx
}
