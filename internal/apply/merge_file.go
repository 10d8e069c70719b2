package apply

import (
	"unicode/utf8"

	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/merge"
	"github.com/jinconf/jin/internal/store"
	"github.com/jinconf/jin/internal/textmerge"
	"github.com/jinconf/jin/internal/value"
)

// resolvedLayer is one applicable coordinate resolved against the
// store: the commit its ref currently points at, and the set of paths
// its tree contains, used to decide which layers actually contribute
// to a given candidate path.
type resolvedLayer struct {
	Coordinate layer.Coordinate
	Commit     store.CommitID
	Paths      map[string]bool
}

// fileMergeResult is one candidate path's outcome after phase 3 of
// §4.6: either clean content ready to write, or conflict-marked
// content pending resolution.
type fileMergeResult struct {
	Path          string
	Content       []byte
	ConflictCount int
	SourceLayers  []layer.Coordinate
}

// contributingLayers filters layers down to those whose tree actually
// contains path, preserving ascending-precedence order.
func contributingLayers(layers []resolvedLayer, path string) []resolvedLayer {
	var out []resolvedLayer
	for _, l := range layers {
		if l.Paths[path] {
			out = append(out, l)
		}
	}
	return out
}

// mergeStructuredPath implements §4.3's format-aware deep merge,
// sequentially folding every contributing layer's parsed value into an
// accumulator with merge.Merge, lowest precedence first.
func mergeStructuredPath(st store.Store, layers []resolvedLayer, path string, format value.Format, cfg merge.Config) (fileMergeResult, error) {
	contributing := contributingLayers(layers, path)

	var acc value.Value
	var sourceLayers []layer.Coordinate
	for i, l := range contributing {
		data, err := st.ReadBlobAt(l.Commit, path)
		if err != nil {
			return fileMergeResult{}, err
		}
		v, err := value.Parse(format, data)
		if err != nil {
			return fileMergeResult{}, err
		}
		sourceLayers = append(sourceLayers, l.Coordinate)
		if i == 0 {
			acc = v
			continue
		}
		acc = merge.Merge(acc, v, cfg)
	}

	out, err := value.Serialize(format, acc)
	if err != nil {
		return fileMergeResult{}, err
	}
	return fileMergeResult{Path: path, Content: out, SourceLayers: sourceLayers}, nil
}

// mergeTextPath implements §4.4's chained 3-way text merge for opaque
// files: each contributing layer beyond the first is folded in as
// Merge(origin, accumulated, layer), where origin is the lowest
// contributing layer's raw content, held fixed for the whole chain.
// "accumulated" is the running composition (carrying conflict markers
// verbatim once a step has produced any, per Open Question decision
// 1); "origin" is every later layer's common point of comparison, the
// same role base plays in an ordinary single 3-way merge. Pinning
// origin to the lowest layer rather than re-basing it onto each
// intermediate result is what lets two higher layers that
// independently edit the same region away from origin actually
// conflict with each other — rebasing base onto the immediately
// preceding layer at every step would make ours equal base on every
// step that hadn't already conflicted, so two such edits could never
// be detected as overlapping.
func mergeTextPath(st store.Store, layers []resolvedLayer, path string, cfg textmerge.Config) (fileMergeResult, error) {
	contributing := contributingLayers(layers, path)

	var accumulated []byte
	var origin []byte
	var sourceLayers []layer.Coordinate
	conflictCount := 0

	for i, l := range contributing {
		data, err := st.ReadBlobAt(l.Commit, path)
		if err != nil {
			return fileMergeResult{}, err
		}
		sourceLayers = append(sourceLayers, l.Coordinate)

		if i == 0 {
			accumulated = data
			origin = data
			continue
		}

		if !utf8.Valid(data) || !utf8.Valid(accumulated) {
			// Binary content is never line-merged: the higher layer
			// replaces it whole.
			accumulated = data
			conflictCount = 0
			continue
		}

		result, err := textmerge.Merge(origin, accumulated, data, cfg)
		if err != nil {
			return fileMergeResult{}, err
		}
		accumulated = []byte(result.Content)
		conflictCount += result.ConflictCount
	}

	return fileMergeResult{
		Path:          path,
		Content:       accumulated,
		ConflictCount: conflictCount,
		SourceLayers:  sourceLayers,
	}, nil
}
