// Package attach implements the Attachment Validator of spec.md §4.8:
// is this workspace still consistent with the layers and metadata it
// claims to have been built from?
package attach

import (
	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/store"
	"github.com/jinconf/jin/internal/workspace"
)

// Status is the validator's result.
type Status struct {
	Attached bool
	Detached *jerr.Error // non-nil DetachedWorkspace error when !Attached
}

// Validate checks the three conditions of §4.8 in priority order. A
// fresh workspace (no last-applied metadata) is never detached.
func Validate(ws *workspace.Workspace, st store.Store) (*Status, error) {
	meta, err := jctx.LoadMetadata(ws)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return &Status{Attached: true}, nil
	}

	if details, ok := checkFileMismatch(ws, meta); !ok {
		return detachedStatus(details, "reapply"), nil
	}

	if details, ok := checkLayerRefs(st, meta); !ok {
		return detachedStatus(details, "repair-refs"), nil
	}

	ctx, err := jctx.Load(ws)
	if err != nil {
		return nil, err
	}
	if details, ok := checkActiveContext(st, ctx); !ok {
		return detachedStatus(details, "reactivate"), nil
	}

	return &Status{Attached: true}, nil
}

// ValidateStructure checks only conditions 2 and 3 (missing layer
// refs, invalid active context), skipping the file-mismatch check.
// A forced apply already accepts a dirty working tree by design; what
// it cannot safely proceed past is the layer stack itself having
// rotted out from under the metadata it recorded.
func ValidateStructure(ws *workspace.Workspace, st store.Store) (*Status, error) {
	meta, err := jctx.LoadMetadata(ws)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return &Status{Attached: true}, nil
	}

	if details, ok := checkLayerRefs(st, meta); !ok {
		return detachedStatus(details, "repair-refs"), nil
	}

	ctx, err := jctx.Load(ws)
	if err != nil {
		return nil, err
	}
	if details, ok := checkActiveContext(st, ctx); !ok {
		return detachedStatus(details, "reactivate"), nil
	}

	return &Status{Attached: true}, nil
}

func detachedStatus(details []string, hint string) *Status {
	jerrErr := jerr.DetachedWorkspace(details, hint)
	asErr, _ := jerrErr.(*jerr.Error)
	return &Status{Attached: false, Detached: asErr}
}

// checkFileMismatch implements condition 1: a metadata-tracked path
// whose current hash differs, or is missing entirely.
func checkFileMismatch(ws *workspace.Workspace, meta *jctx.Metadata) ([]string, bool) {
	var offending []string
	for path, wantHash := range meta.FileHashes {
		full := ws.Root + "/" + path
		gotHash, err := workspace.HashFile(full)
		if err != nil {
			offending = append(offending, path)
			continue
		}
		if gotHash != wantHash {
			offending = append(offending, path)
		}
	}
	return offending, len(offending) == 0
}

// checkLayerRefs implements condition 2: an applied layer coordinate
// whose ref no longer resolves.
func checkLayerRefs(st store.Store, meta *jctx.Metadata) ([]string, bool) {
	var offending []string
	for _, applied := range meta.AppliedLayers {
		ref := layer.RefName(applied.Coordinate)
		exists, err := st.RefExists(ref)
		if err != nil || !exists {
			offending = append(offending, ref)
		}
	}
	return offending, len(offending) == 0
}

// checkActiveContext implements condition 3: the active mode/scope/
// project must each name an existing layer ref, if set.
func checkActiveContext(st store.Store, ctx jctx.Context) ([]string, bool) {
	var offending []string
	check := func(coord layer.Coordinate) {
		ref := layer.RefName(coord)
		exists, err := st.RefExists(ref)
		if err != nil || !exists {
			offending = append(offending, ref)
		}
	}
	if ctx.Mode != "" {
		check(layer.Coordinate{Kind: layer.ModeBase, Mode: ctx.Mode})
	}
	if ctx.Scope != "" {
		check(layer.Coordinate{Kind: layer.ScopeBase, Scope: ctx.Scope})
	}
	if ctx.Project != "" {
		check(layer.Coordinate{Kind: layer.ProjectBase, Project: ctx.Project})
	}
	return offending, len(offending) == 0
}
