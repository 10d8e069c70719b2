package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jinconf/jin/internal/apply"
	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/store"
)

// TestFullSequence_GlobalModeProjectPrecedence runs init -> add -> commit
// -> activate -> apply across three precedence layers and checks the
// final materialized content reflects §4.3's highest-precedence-wins
// deep merge.
func TestFullSequence_GlobalModeProjectPrecedence(t *testing.T) {
	ws := newWorkspace(t)
	st := store.NewMemStore()

	global := writeWorkspaceFile(t, ws, "app.yaml", "name: app\nlevel: info\nregion: us\n")
	addAndCommit(t, ws, st, layer.Coordinate{Kind: layer.GlobalBase}, "global base", global)
	os.Remove(global)

	mode := writeWorkspaceFile(t, ws, "app.yaml", "level: debug\n")
	addAndCommit(t, ws, st, layer.Coordinate{Kind: layer.ModeBase, Mode: "staging"}, "staging overrides", mode)
	os.Remove(mode)

	activate(t, ws, jctx.ComponentMode, "staging")

	project := writeWorkspaceFile(t, ws, "app.yaml", "region: eu\n")
	addAndCommit(t, ws, st, layer.Coordinate{Kind: layer.ModeProject, Mode: "staging", Project: "checkout"}, "checkout project", project)
	os.Remove(project)

	activate(t, ws, jctx.ComponentProject, "checkout")

	p := newPipeline(ws, st)
	report, err := p.Run(context.Background(), apply.Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Written) != 1 || report.Written[0] != "app.yaml" {
		t.Fatalf("Written = %v, want [app.yaml]", report.Written)
	}

	got, err := os.ReadFile(filepath.Join(ws.Root, "app.yaml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "name: app\nlevel: debug\nregion: eu\n"
	if string(got) != want {
		t.Errorf("app.yaml = %q, want %q", got, want)
	}

	meta, err := jctx.LoadMetadata(ws)
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if meta == nil || len(meta.AppliedLayers) != 3 {
		t.Fatalf("AppliedLayers = %v, want 3 entries", meta)
	}
}

// TestFullSequence_ReapplyAfterStagingMoreFiles checks that a second
// commit to an already-applied layer, followed by a second apply,
// picks up the new path alongside the first without disturbing it.
func TestFullSequence_ReapplyAfterStagingMoreFiles(t *testing.T) {
	ws := newWorkspace(t)
	st := store.NewMemStore()

	first := writeWorkspaceFile(t, ws, "a.json", `{"k":"v"}`)
	addAndCommit(t, ws, st, layer.Coordinate{Kind: layer.GlobalBase}, "first", first)
	os.Remove(first)

	p := newPipeline(ws, st)
	if _, err := p.Run(context.Background(), apply.Options{}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	second := writeWorkspaceFile(t, ws, "b.json", `{"k":"v2"}`)
	addAndCommit(t, ws, st, layer.Coordinate{Kind: layer.GlobalBase}, "second", second)
	os.Remove(second)

	report, err := p.Run(context.Background(), apply.Options{})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if len(report.Written) != 2 {
		t.Fatalf("Written = %v, want 2 entries", report.Written)
	}
	if _, err := os.Stat(filepath.Join(ws.Root, "a.json")); err != nil {
		t.Errorf("a.json missing after second apply: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ws.Root, "b.json")); err != nil {
		t.Errorf("b.json missing after second apply: %v", err)
	}
}
