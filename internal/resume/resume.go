// Package resume implements the paused-apply state of spec.md §4.10:
// when the apply pipeline's conflict gate fires, the conflict-marked
// content is persisted here so a later "resolve" can pick up editing
// from exactly where the pipeline stopped.
package resume

import (
	"encoding/json"
	"os"

	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/workspace"
)

// FileState is one path's paused state: the merged-with-markers
// content, how many conflict regions it carries, and the layer stack
// that contributed to it (for diagnostics in `status`/`resolve`).
type FileState struct {
	Content       []byte            `json:"content"`
	ConflictCount int               `json:"conflict_count"`
	SourceLayers  []layer.Coordinate `json:"source_layers"`
}

// State is the full paused-apply record.
type State struct {
	FormatVersion int                  `json:"format_version"`
	Context       jctx.Context         `json:"context"`
	Files         map[string]FileState `json:"files"`
}

const currentFormatVersion = 1

// Save atomically persists a paused-apply state.
func Save(ws *workspace.Workspace, s *State) error {
	s.FormatVersion = currentFormatVersion
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return jerr.Storage(err)
	}
	return workspace.WriteFileAtomic(ws.PausedApplyPath(), data, 0o644)
}

// Load reads the paused-apply state. Returns (nil, nil) if no apply is
// currently paused.
func Load(ws *workspace.Workspace) (*State, error) {
	data, err := os.ReadFile(ws.PausedApplyPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, jerr.Storage(err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, jerr.Parse("json", err.Error())
	}
	return &s, nil
}

// Clear removes the paused-apply state, e.g. after a successful
// resolve. Not an error if already absent.
func Clear(ws *workspace.Workspace) error {
	err := os.Remove(ws.PausedApplyPath())
	if err != nil && !os.IsNotExist(err) {
		return jerr.Storage(err)
	}
	return nil
}

// HasConflicts reports whether s has at least one conflicted file.
func (s *State) HasConflicts() bool {
	for _, f := range s.Files {
		if f.ConflictCount > 0 {
			return true
		}
	}
	return false
}
