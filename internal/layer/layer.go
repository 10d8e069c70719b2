// Package layer implements the nine-kind precedence model of spec.md
// §3/§4.5/§6.1: which configuration layers exist, how they order, and
// which ones apply to a given (mode, scope, project) context.
package layer

import (
	"sort"
	"strings"
)

// Kind identifies one of the nine layer kinds. Precedence() gives its
// fixed rank, 1 (lowest) through 9 (highest).
type Kind int

const (
	GlobalBase Kind = iota + 1
	ModeBase
	ModeScope
	ModeScopeProject
	ModeProject
	ScopeBase
	ProjectBase
	UserLocal
	WorkspaceActive
)

// Precedence returns the kind's fixed rank, 1 through 9. Merge order is
// ascending precedence: lower ranks merge first, higher ranks win
// conflicts.
func (k Kind) Precedence() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case GlobalBase:
		return "GlobalBase"
	case ModeBase:
		return "ModeBase"
	case ModeScope:
		return "ModeScope"
	case ModeScopeProject:
		return "ModeScopeProject"
	case ModeProject:
		return "ModeProject"
	case ScopeBase:
		return "ScopeBase"
	case ProjectBase:
		return "ProjectBase"
	case UserLocal:
		return "UserLocal"
	case WorkspaceActive:
		return "WorkspaceActive"
	default:
		return "Unknown"
	}
}

// Coordinate identifies a single layer: its Kind plus whichever of
// Mode/Scope/Project that Kind carries. Unused fields are empty.
type Coordinate struct {
	Kind    Kind
	Mode    string
	Scope   string
	Project string
}

// String renders a human-readable coordinate, e.g. "ModeScope(mode=ci,
// scope=backend)", used in reports and error messages.
func (c Coordinate) String() string {
	var parts []string
	if c.Mode != "" {
		parts = append(parts, "mode="+c.Mode)
	}
	if c.Scope != "" {
		parts = append(parts, "scope="+c.Scope)
	}
	if c.Project != "" {
		parts = append(parts, "project="+c.Project)
	}
	if len(parts) == 0 {
		return c.Kind.String()
	}
	return c.Kind.String() + "(" + strings.Join(parts, ", ") + ")"
}

// BelongsToScope reports whether a coordinate's metadata should clear
// on a scope change: per DESIGN.md's resolved Open Question, this is
// true for every Kind that carries a Scope component.
func (c Coordinate) BelongsToScope() bool {
	switch c.Kind {
	case ScopeBase, ModeScope, ModeScopeProject:
		return true
	default:
		return false
	}
}

// BelongsToMode reports whether a coordinate carries a Mode component.
func (c Coordinate) BelongsToMode() bool {
	switch c.Kind {
	case ModeBase, ModeScope, ModeProject, ModeScopeProject:
		return true
	default:
		return false
	}
}

// BelongsToProject reports whether a coordinate carries a Project
// component.
func (c Coordinate) BelongsToProject() bool {
	switch c.Kind {
	case ProjectBase, ModeProject, ModeScopeProject:
		return true
	default:
		return false
	}
}

// Context is the active (mode, scope, project) selection driving
// Applicable and Route. Empty string means "not set".
type Context struct {
	Mode    string
	Scope   string
	Project string
}

// Applicable implements spec.md §4.5's seven inclusion rules, returning
// coordinates sorted by ascending precedence (lowest first, matching
// merge order). WorkspaceActive is never included here (rule 8), and
// no package in this module constructs a WorkspaceActive coordinate.
func Applicable(ctx Context) []Coordinate {
	var coords []Coordinate

	coords = append(coords, Coordinate{Kind: GlobalBase})
	coords = append(coords, Coordinate{Kind: UserLocal})

	if ctx.Mode != "" {
		coords = append(coords, Coordinate{Kind: ModeBase, Mode: ctx.Mode})
	}
	if ctx.Scope != "" {
		coords = append(coords, Coordinate{Kind: ScopeBase, Scope: ctx.Scope})
	}
	if ctx.Project != "" {
		coords = append(coords, Coordinate{Kind: ProjectBase, Project: ctx.Project})
	}
	if ctx.Mode != "" && ctx.Scope != "" {
		coords = append(coords, Coordinate{Kind: ModeScope, Mode: ctx.Mode, Scope: ctx.Scope})
	}
	if ctx.Mode != "" && ctx.Project != "" {
		coords = append(coords, Coordinate{Kind: ModeProject, Mode: ctx.Mode, Project: ctx.Project})
	}
	if ctx.Mode != "" && ctx.Scope != "" && ctx.Project != "" {
		coords = append(coords, Coordinate{Kind: ModeScopeProject, Mode: ctx.Mode, Scope: ctx.Scope, Project: ctx.Project})
	}

	sort.SliceStable(coords, func(i, j int) bool {
		return coords[i].Kind.Precedence() < coords[j].Kind.Precedence()
	})
	return coords
}

// RefName implements the §6.1 naming table, mapping a coordinate to
// its ref path under the store's refs/layers namespace.
func RefName(c Coordinate) string {
	switch c.Kind {
	case GlobalBase:
		return "refs/layers/global"
	case UserLocal:
		return "refs/layers/local"
	case ModeBase:
		return "refs/layers/mode/" + c.Mode
	case ScopeBase:
		return "refs/layers/scope/" + c.Scope
	case ProjectBase:
		return "refs/layers/project/" + c.Project
	case ModeScope:
		return "refs/layers/mode/" + c.Mode + "/scope/" + c.Scope
	case ModeProject:
		return "refs/layers/mode/" + c.Mode + "/project/" + c.Project
	case ModeScopeProject:
		return "refs/layers/mode/" + c.Mode + "/scope/" + c.Scope + "/project/" + c.Project
	case WorkspaceActive:
		return "refs/layers/workspace/active"
	default:
		return ""
	}
}
