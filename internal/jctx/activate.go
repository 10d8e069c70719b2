package jctx

import (
	"github.com/jinconf/jin/internal/workspace"
)

// Component identifies which part of the context Activate changes.
type Component int

const (
	ComponentMode Component = iota
	ComponentScope
	ComponentProject
)

// Activate sets one context component to name (empty string clears
// it), saving the context atomically. Per spec.md §4.9, if this
// changes the component's value from what the last apply's metadata
// recorded AND at least one applied layer coordinate's kind actually
// depends on that component, the last-applied metadata is cleared so
// the next apply treats the workspace as fresh. A no-op activation
// (same value) never clears metadata, even if some applied coordinate
// depends on the component.
func Activate(ws *workspace.Workspace, component Component, name string) (Context, error) {
	ctx, err := Load(ws)
	if err != nil {
		return Context{}, err
	}

	old := componentValue(ctx, component)
	if old == name {
		return ctx, nil
	}

	switch component {
	case ComponentMode:
		ctx.Mode = name
	case ComponentScope:
		ctx.Scope = name
	case ComponentProject:
		ctx.Project = name
	}

	if err := Save(ws, ctx); err != nil {
		return Context{}, err
	}

	meta, err := LoadMetadata(ws)
	if err != nil {
		return Context{}, err
	}
	if meta == nil {
		return ctx, nil
	}

	snapshotValue := componentValue(meta.ContextSnapshot, component)
	if snapshotValue == name {
		return ctx, nil
	}
	if !anyCoordinateDependsOn(meta.AppliedLayers, component) {
		return ctx, nil
	}

	if err := ClearMetadata(ws); err != nil {
		return Context{}, err
	}
	return ctx, nil
}

func componentValue(ctx Context, component Component) string {
	switch component {
	case ComponentMode:
		return ctx.Mode
	case ComponentScope:
		return ctx.Scope
	case ComponentProject:
		return ctx.Project
	default:
		return ""
	}
}

func anyCoordinateDependsOn(applied []AppliedCoordinate, component Component) bool {
	for _, a := range applied {
		switch component {
		case ComponentMode:
			if a.Coordinate.BelongsToMode() {
				return true
			}
		case ComponentScope:
			if a.Coordinate.BelongsToScope() {
				return true
			}
		case ComponentProject:
			if a.Coordinate.BelongsToProject() {
				return true
			}
		}
	}
	return false
}
