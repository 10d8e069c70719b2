// Package staging implements the staging index and routing of spec.md
// §4.7: deciding which layer coordinate a staged file targets, and the
// reject/blob/commit pipeline that gets it there.
package staging

import (
	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
)

// RouteOptions mirrors the flag surface of `jin add`: the named
// mode/scope/project/global/local targeting flags of §4.7's table.
type RouteOptions struct {
	Mode    bool
	Scope   string // empty means "no scope flag given"
	Project bool
	Global  bool
	Local   bool
}

// Route implements §4.7's routing table and mutual-exclusion
// validation, failing jerr.InvalidRouting before any store write.
func Route(opts RouteOptions, ctx jctx.Context) (layer.Coordinate, error) {
	if err := validate(opts, ctx); err != nil {
		return layer.Coordinate{}, err
	}

	switch {
	case opts.Global:
		return layer.Coordinate{Kind: layer.GlobalBase}, nil
	case opts.Local:
		return layer.Coordinate{Kind: layer.UserLocal}, nil
	case opts.Mode && opts.Scope != "" && opts.Project:
		return layer.Coordinate{Kind: layer.ModeScopeProject, Mode: ctx.Mode, Scope: opts.Scope, Project: ctx.Project}, nil
	case opts.Mode && opts.Scope != "":
		return layer.Coordinate{Kind: layer.ModeScope, Mode: ctx.Mode, Scope: opts.Scope}, nil
	case opts.Mode && opts.Project:
		return layer.Coordinate{Kind: layer.ModeProject, Mode: ctx.Mode, Project: ctx.Project}, nil
	case opts.Mode:
		return layer.Coordinate{Kind: layer.ModeBase, Mode: ctx.Mode}, nil
	case opts.Scope != "":
		return layer.Coordinate{Kind: layer.ScopeBase, Scope: opts.Scope}, nil
	case opts.Project:
		return layer.Coordinate{Kind: layer.ProjectBase, Project: ctx.Project}, nil
	default:
		return layer.Coordinate{Kind: layer.ProjectBase, Project: ctx.Project}, nil
	}
}

// validate implements §4.7's rejection rules in full, before Route
// picks a coordinate.
func validate(opts RouteOptions, ctx jctx.Context) error {
	if opts.Global && (opts.Local || opts.Mode || opts.Scope != "" || opts.Project) {
		return jerr.InvalidRouting("global is mutually exclusive with every other routing flag")
	}
	if opts.Local && (opts.Global || opts.Mode || opts.Scope != "" || opts.Project) {
		return jerr.InvalidRouting("local is mutually exclusive with every other routing flag")
	}
	if opts.Mode && ctx.Mode == "" {
		return jerr.InvalidRouting("mode flag requires an active mode context")
	}

	// The implicit no-flags default routes to ProjectBase just like an
	// explicit project flag does, so both need an active project.
	impliesProject := opts.Project || (!opts.Global && !opts.Local && !opts.Mode && opts.Scope == "")
	if impliesProject && ctx.Project == "" {
		return jerr.InvalidRouting("project flag requires an active project context")
	}
	// An empty opts.Scope means "no scope flag", so a scope flag given
	// an empty value is routed exactly as if it were absent.
	return nil
}
