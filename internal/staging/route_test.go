package staging

import (
	"testing"

	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
)

func TestRoute_Table(t *testing.T) {
	ctx := jctx.Context{Mode: "ci", Project: "web"}

	tests := []struct {
		name string
		opts RouteOptions
		want layer.Coordinate
	}{
		{"none", RouteOptions{}, layer.Coordinate{Kind: layer.ProjectBase, Project: "web"}},
		{"mode", RouteOptions{Mode: true}, layer.Coordinate{Kind: layer.ModeBase, Mode: "ci"}},
		{"mode+project", RouteOptions{Mode: true, Project: true}, layer.Coordinate{Kind: layer.ModeProject, Mode: "ci", Project: "web"}},
		{"scope", RouteOptions{Scope: "backend"}, layer.Coordinate{Kind: layer.ScopeBase, Scope: "backend"}},
		{"mode+scope", RouteOptions{Mode: true, Scope: "backend"}, layer.Coordinate{Kind: layer.ModeScope, Mode: "ci", Scope: "backend"}},
		{"mode+scope+project", RouteOptions{Mode: true, Scope: "backend", Project: true}, layer.Coordinate{Kind: layer.ModeScopeProject, Mode: "ci", Scope: "backend", Project: "web"}},
		{"global", RouteOptions{Global: true}, layer.Coordinate{Kind: layer.GlobalBase}},
		{"local", RouteOptions{Local: true}, layer.Coordinate{Kind: layer.UserLocal}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Route(tt.opts, ctx)
			if err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Route() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoute_RejectsModeWithoutActiveMode(t *testing.T) {
	_, err := Route(RouteOptions{Mode: true}, jctx.Context{})
	assertInvalidRouting(t, err)
}

func TestRoute_RejectsProjectWithoutActiveProject(t *testing.T) {
	_, err := Route(RouteOptions{}, jctx.Context{})
	assertInvalidRouting(t, err)
}

func TestRoute_RejectsGlobalCombinedWithOthers(t *testing.T) {
	_, err := Route(RouteOptions{Global: true, Mode: true}, jctx.Context{Mode: "ci"})
	assertInvalidRouting(t, err)
}

func TestRoute_RejectsLocalCombinedWithOthers(t *testing.T) {
	_, err := Route(RouteOptions{Local: true, Scope: "backend"}, jctx.Context{})
	assertInvalidRouting(t, err)
}

func assertInvalidRouting(t *testing.T, err error) {
	t.Helper()
	kind, ok := jerr.KindOf(err)
	if !ok || kind != jerr.KindInvalidRouting {
		t.Fatalf("err kind = %v, ok=%v, want KindInvalidRouting", kind, ok)
	}
}
