package jctx

import (
	"testing"

	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/workspace"
)

func newTestWorkspace(t *testing.T) *workspace.Workspace {
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

func TestLoadSave_RoundTrip(t *testing.T) {
	ws := newTestWorkspace(t)

	got, err := Load(ws)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != (Context{}) {
		t.Fatalf("Load() on fresh workspace = %+v, want zero value", got)
	}

	want := Context{Mode: "ci", Scope: "backend"}
	if err := Save(ws, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err = Load(ws)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestActivate_NoOpLeavesMetadataAlone(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := Save(ws, Context{Mode: "ci"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	meta := &Metadata{
		AppliedLayers:   []AppliedCoordinate{{Coordinate: layer.Coordinate{Kind: layer.ModeBase, Mode: "ci"}, Commit: "abc"}},
		ContextSnapshot: Context{Mode: "ci"},
		FileHashes:      map[string]string{},
	}
	if err := SaveMetadata(ws, meta); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}

	if _, err := Activate(ws, ComponentMode, "ci"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	got, err := LoadMetadata(ws)
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if got == nil {
		t.Fatalf("metadata cleared on no-op activation")
	}
}

func TestActivate_ChangeWithDependentCoordinateClears(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := Save(ws, Context{Mode: "ci"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	meta := &Metadata{
		AppliedLayers: []AppliedCoordinate{
			{Coordinate: layer.Coordinate{Kind: layer.ModeBase, Mode: "ci"}, Commit: "abc"},
		},
		ContextSnapshot: Context{Mode: "ci"},
		FileHashes:      map[string]string{},
	}
	if err := SaveMetadata(ws, meta); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}

	ctx, err := Activate(ws, ComponentMode, "prod")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if ctx.Mode != "prod" {
		t.Errorf("ctx.Mode = %q, want %q", ctx.Mode, "prod")
	}

	got, err := LoadMetadata(ws)
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if got != nil {
		t.Fatalf("metadata = %+v, want cleared after mode change with dependent coordinate", got)
	}
}

func TestActivate_ChangeWithoutDependentCoordinateKeepsMetadata(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := Save(ws, Context{Mode: "ci", Scope: "backend"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Only a GlobalBase coordinate was applied: it never depends on scope.
	meta := &Metadata{
		AppliedLayers: []AppliedCoordinate{
			{Coordinate: layer.Coordinate{Kind: layer.GlobalBase}, Commit: "abc"},
		},
		ContextSnapshot: Context{Mode: "ci", Scope: "backend"},
		FileHashes:      map[string]string{},
	}
	if err := SaveMetadata(ws, meta); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}

	if _, err := Activate(ws, ComponentScope, "frontend"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	got, err := LoadMetadata(ws)
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if got == nil {
		t.Fatalf("metadata cleared even though no applied coordinate depended on scope")
	}
}
