// Package jctx implements the active-context record and last-applied
// metadata of spec.md §4.9: which (mode, scope, project) is currently
// selected, and the side effect of changing it.
package jctx

import (
	"encoding/json"
	"os"

	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/workspace"
)

// Context is the active context record: mode/scope/project are empty
// when unset.
type Context struct {
	Mode    string `json:"mode,omitempty"`
	Scope   string `json:"scope,omitempty"`
	Project string `json:"project,omitempty"`
}

// ToLayerContext converts to the layer package's Context shape for
// Applicable/Route.
func (c Context) ToLayerContext() layer.Context {
	return layer.Context{Mode: c.Mode, Scope: c.Scope, Project: c.Project}
}

// AppliedCoordinate pairs a layer coordinate with the commit id it was
// applied from, so later runs can detect that a layer moved since.
type AppliedCoordinate struct {
	Coordinate layer.Coordinate `json:"coordinate"`
	Commit     string           `json:"commit"`
}

// Metadata is the last-applied record written at the end of a
// successful apply (§4.6 phase 6).
type Metadata struct {
	FormatVersion   int                 `json:"format_version"`
	AppliedLayers   []AppliedCoordinate `json:"applied_layers"`
	FileHashes      map[string]string   `json:"file_hashes"`
	ContextSnapshot Context             `json:"context_snapshot"`
}

const currentFormatVersion = 1

// Load reads the active context file, returning the zero Context if
// none has ever been written.
func Load(ws *workspace.Workspace) (Context, error) {
	data, err := os.ReadFile(ws.ContextPath())
	if os.IsNotExist(err) {
		return Context{}, nil
	}
	if err != nil {
		return Context{}, jerr.Storage(err)
	}
	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return Context{}, jerr.Parse("json", err.Error())
	}
	return ctx, nil
}

// Save atomically writes ctx as the active context.
func Save(ws *workspace.Workspace, ctx Context) error {
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return jerr.Storage(err)
	}
	return workspace.WriteFileAtomic(ws.ContextPath(), data, 0o644)
}

// LoadMetadata reads the last-applied metadata, returning (nil, nil)
// if no apply has ever completed (a "fresh" workspace).
func LoadMetadata(ws *workspace.Workspace) (*Metadata, error) {
	data, err := os.ReadFile(ws.LastAppliedPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, jerr.Storage(err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, jerr.Parse("json", err.Error())
	}
	return &m, nil
}

// SaveMetadata atomically writes the last-applied metadata.
func SaveMetadata(ws *workspace.Workspace, m *Metadata) error {
	m.FormatVersion = currentFormatVersion
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return jerr.Storage(err)
	}
	return workspace.WriteFileAtomic(ws.LastAppliedPath(), data, 0o644)
}

// ClearMetadata removes the last-applied metadata file, forcing the
// next apply to treat the workspace as fresh. Not an error if absent.
func ClearMetadata(ws *workspace.Workspace) error {
	err := os.Remove(ws.LastAppliedPath())
	if err != nil && !os.IsNotExist(err) {
		return jerr.Storage(err)
	}
	return nil
}
