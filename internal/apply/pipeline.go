// Package apply implements the apply pipeline of spec.md §4.6: resolve
// the applicable layer stack, merge every candidate path across it,
// gate on unresolved text conflicts, and materialize the result onto
// the workspace root.
package apply

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jinconf/jin/internal/attach"
	"github.com/jinconf/jin/internal/jctx"
	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/merge"
	"github.com/jinconf/jin/internal/resume"
	"github.com/jinconf/jin/internal/store"
	"github.com/jinconf/jin/internal/textmerge"
	"github.com/jinconf/jin/internal/value"
	"github.com/jinconf/jin/internal/workspace"
)

// Pipeline runs applies and resolves against one workspace and store.
type Pipeline struct {
	WS              *workspace.Workspace
	Store           store.Store
	MergeConfig     merge.Config
	TextMergeConfig textmerge.Config
}

// Options controls a single Run.
type Options struct {
	// DryRun computes the merge and reports what would change without
	// writing anything.
	DryRun bool
	// Force skips the dirty-workspace check (§4.6 phase 1), applying
	// even though tracked files changed since the last apply.
	Force bool
}

// FileDiff describes one candidate path's effect in a dry run.
type FileDiff struct {
	Path   string
	Action string // "create", "update", or "unchanged"
}

// Report summarizes one Run. On a conflict, Run returns a
// jerr.KindMergeConflict error (carrying the conflicted paths) instead
// of a Report. ID is a fresh run identifier, useful for correlating a
// single apply's log lines.
type Report struct {
	ID      string
	DryRun  bool
	Diff    []FileDiff
	Written []string
	Deleted []string
}

// Run implements §4.6's seven phases.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	activeCtx, err := jctx.Load(p.WS)
	if err != nil {
		return nil, err
	}
	meta, err := jctx.LoadMetadata(p.WS)
	if err != nil {
		return nil, err
	}

	// Phase 1: without force, dirty-check against the last successful
	// apply's recorded file hashes. Force accepts a dirty working tree
	// by design, but still runs the Attachment Validator's structural
	// checks (§4.8 conditions 2-3: missing layer refs, invalid active
	// context) — force overrides file drift, not a rotted layer stack.
	if meta != nil {
		if !opts.Force {
			modified, deleted := p.dirtyCheck(meta)
			if len(modified) > 0 || len(deleted) > 0 {
				return nil, jerr.DirtyWorkspace(modified, deleted)
			}
		} else {
			status, err := attach.ValidateStructure(p.WS, p.Store)
			if err != nil {
				return nil, err
			}
			if !status.Attached {
				return nil, status.Detached
			}
		}
	}

	// Phase 2: layer materialization.
	layers, candidatePaths, err := resolveLayers(p.Store, activeCtx.ToLayerContext())
	if err != nil {
		return nil, err
	}

	// Phase 3: per-file merge, bounded by CPU count.
	results, err := p.mergeAll(ctx, layers, candidatePaths)
	if err != nil {
		return nil, err
	}

	// Phase 4: conflict gate. No workspace writes occur here — only the
	// paused-apply state is persisted. "jin resolve" is what first
	// materializes the conflict-marked content, giving the user
	// something to edit.
	var conflicted []string
	for _, r := range results {
		if r.ConflictCount > 0 {
			conflicted = append(conflicted, r.Path)
		}
	}
	if len(conflicted) > 0 {
		if !opts.DryRun {
			if err := saveResumeState(p.WS, activeCtx, results); err != nil {
				return nil, err
			}
		}
		return nil, jerr.MergeConflict(conflicted)
	}

	// Phase 7 (dry-run short-circuit): report without writing.
	if opts.DryRun {
		return &Report{ID: uuid.NewString(), DryRun: true, Diff: p.buildDiffs(results)}, nil
	}

	return p.finish(activeCtx, meta, layers, candidatePaths, results)
}

// Resolve implements §4.10: materialize any still-paused conflict
// content that the workspace hasn't seen yet (the first legitimate
// write of conflict markers to disk — phase 4 makes none), re-read
// each conflicted file's current on-disk content as the user's
// resolution, and finish the apply that was gated at phase 4. It lives
// here rather than in package resume to avoid an apply<->resume import
// cycle (Run already depends on resume to persist the paused state).
//
// A file absent from disk is one the user hasn't gotten to yet: its
// paused content (conflict markers and all) is written now so there's
// something to edit, and the path is reported conflicted again. A file
// present but still marker-laden is left untouched — it may be a
// partial edit in progress — and is likewise reported conflicted. Only
// once a path's on-disk content is marker-free does it count as
// resolved.
func (p *Pipeline) Resolve(ctx context.Context) (*Report, error) {
	state, err := resume.Load(p.WS)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, jerr.InvalidRouting("no apply is currently paused")
	}

	paths := make([]string, 0, len(state.Files))
	for path := range state.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var stillConflicted []string
	results := make([]fileMergeResult, 0, len(paths))
	for _, path := range paths {
		fs := state.Files[path]
		if fs.ConflictCount == 0 {
			results = append(results, fileMergeResult{Path: path, Content: fs.Content, SourceLayers: fs.SourceLayers})
			continue
		}
		full := filepath.Join(p.WS.Root, path)
		data, readErr := os.ReadFile(full)
		if readErr != nil {
			if !os.IsNotExist(readErr) {
				return nil, jerr.Storage(readErr)
			}
			if err := workspace.WriteFileAtomic(full, fs.Content, 0o644); err != nil {
				return nil, err
			}
			data = fs.Content
		}
		if textmerge.HasConflictMarkers(data) {
			stillConflicted = append(stillConflicted, path)
			continue
		}
		results = append(results, fileMergeResult{
			Path:         path,
			Content:      data,
			SourceLayers: fs.SourceLayers,
		})
	}
	if len(stillConflicted) > 0 {
		return nil, jerr.MergeConflict(stillConflicted)
	}

	layers, candidatePaths, err := resolveLayers(p.Store, state.Context.ToLayerContext())
	if err != nil {
		return nil, err
	}

	meta, err := jctx.LoadMetadata(p.WS)
	if err != nil {
		return nil, err
	}

	report, err := p.finish(state.Context, meta, layers, candidatePaths, results)
	if err != nil {
		return nil, err
	}
	if err := resume.Clear(p.WS); err != nil {
		return nil, err
	}
	return report, nil
}

// finish implements phases 5 and 6: materialize clean results, delete
// stale tracked paths, and record new metadata + the managed
// .gitignore block.
func (p *Pipeline) finish(activeCtx jctx.Context, meta *jctx.Metadata, layers []resolvedLayer, candidatePaths []string, results []fileMergeResult) (*Report, error) {
	if err := materializeFiles(p.WS, results); err != nil {
		return nil, err
	}

	oldPaths := map[string]bool{}
	if meta != nil {
		for path := range meta.FileHashes {
			oldPaths[path] = true
		}
	}
	newPaths := map[string]bool{}
	for _, path := range candidatePaths {
		newPaths[path] = true
	}
	deleted, err := deleteStalePaths(p.WS, oldPaths, newPaths)
	if err != nil {
		return nil, err
	}

	fileHashes := make(map[string]string, len(results))
	written := make([]string, 0, len(results))
	for _, r := range results {
		fileHashes[r.Path] = workspace.HashBytes(r.Content)
		written = append(written, r.Path)
	}

	appliedLayers := make([]jctx.AppliedCoordinate, 0, len(layers))
	for _, l := range layers {
		appliedLayers = append(appliedLayers, jctx.AppliedCoordinate{
			Coordinate: l.Coordinate,
			Commit:     l.Commit.String(),
		})
	}

	newMeta := &jctx.Metadata{
		AppliedLayers:   appliedLayers,
		FileHashes:      fileHashes,
		ContextSnapshot: activeCtx,
	}
	if err := jctx.SaveMetadata(p.WS, newMeta); err != nil {
		return nil, err
	}

	if err := updateManagedGitignore(p.WS.Root, candidatePaths); err != nil {
		return nil, err
	}

	return &Report{ID: uuid.NewString(), Written: written, Deleted: deleted}, nil
}

// dirtyCheck compares every tracked path's current hash against the
// last apply's recorded hash, per §4.6 phase 1.
func (p *Pipeline) dirtyCheck(meta *jctx.Metadata) (modified, deleted []string) {
	for path, wantHash := range meta.FileHashes {
		full := filepath.Join(p.WS.Root, path)
		gotHash, err := workspace.HashFile(full)
		if err != nil {
			deleted = append(deleted, path)
			continue
		}
		if gotHash != wantHash {
			modified = append(modified, path)
		}
	}
	sort.Strings(modified)
	sort.Strings(deleted)
	return modified, deleted
}

// resolveLayers implements phase 2: resolve every applicable
// coordinate's ref (skipping ones never committed to), and union their
// tree paths into a sorted candidate set.
func resolveLayers(st store.Store, ctx layer.Context) ([]resolvedLayer, []string, error) {
	coords := layer.Applicable(ctx)

	var layers []resolvedLayer
	pathSet := map[string]bool{}
	for _, coord := range coords {
		ref := layer.RefName(coord)
		exists, err := st.RefExists(ref)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			continue
		}
		commit, err := st.ResolveRef(ref)
		if err != nil {
			return nil, nil, err
		}
		paths, err := st.ListTree(commit)
		if err != nil {
			return nil, nil, err
		}
		pathMap := make(map[string]bool, len(paths))
		for _, path := range paths {
			pathMap[path] = true
			pathSet[path] = true
		}
		layers = append(layers, resolvedLayer{Coordinate: coord, Commit: commit, Paths: pathMap})
	}

	candidatePaths := make([]string, 0, len(pathSet))
	for path := range pathSet {
		candidatePaths = append(candidatePaths, path)
	}
	sort.Strings(candidatePaths)

	return layers, candidatePaths, nil
}

// mergeAll implements phase 3: merge every candidate path
// concurrently, each goroutine owning a distinct slice index so no
// locking is needed.
func (p *Pipeline) mergeAll(ctx context.Context, layers []resolvedLayer, candidatePaths []string) ([]fileMergeResult, error) {
	results := make([]fileMergeResult, len(candidatePaths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range candidatePaths {
		i, path := i, path
		g.Go(func() error {
			format := value.DetectFormat(path)
			var (
				res fileMergeResult
				err error
			)
			if format == value.FormatText {
				res, err = mergeTextPath(p.Store, layers, path, p.TextMergeConfig)
			} else {
				res, err = mergeStructuredPath(p.Store, layers, path, format, p.MergeConfig)
			}
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildDiffs classifies each merge result against what currently sits
// on disk, for the dry-run report.
func (p *Pipeline) buildDiffs(results []fileMergeResult) []FileDiff {
	diffs := make([]FileDiff, 0, len(results))
	for _, r := range results {
		full := filepath.Join(p.WS.Root, r.Path)
		current, err := os.ReadFile(full)
		switch {
		case os.IsNotExist(err):
			diffs = append(diffs, FileDiff{Path: r.Path, Action: "create"})
		case err != nil:
			diffs = append(diffs, FileDiff{Path: r.Path, Action: "update"})
		case workspace.HashBytes(current) == workspace.HashBytes(r.Content):
			diffs = append(diffs, FileDiff{Path: r.Path, Action: "unchanged"})
		default:
			diffs = append(diffs, FileDiff{Path: r.Path, Action: "update"})
		}
	}
	return diffs
}

// saveResumeState persists every result (clean and conflicted alike)
// so Resolve can finish materializing once the conflicted ones are
// fixed up on disk.
func saveResumeState(ws *workspace.Workspace, ctx jctx.Context, results []fileMergeResult) error {
	files := make(map[string]resume.FileState, len(results))
	for _, r := range results {
		files[r.Path] = resume.FileState{
			Content:       r.Content,
			ConflictCount: r.ConflictCount,
			SourceLayers:  r.SourceLayers,
		}
	}
	return resume.Save(ws, &resume.State{Context: ctx, Files: files})
}
