package staging

import (
	"encoding/json"
	"os"

	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/workspace"
)

// Entry is one staged file: its target layer, the blob it was stored
// as, and the file mode to materialize it with on apply.
type Entry struct {
	Coordinate layer.Coordinate `json:"coordinate"`
	Blob       string           `json:"blob"`
	Mode       string           `json:"mode"`
}

// Index is the staging index of §6.2 ("staging/index"): every staged
// path not yet committed to a layer ref, keyed by workspace-relative
// path.
type Index struct {
	Entries map[string]Entry `json:"entries"`
}

// LoadIndex reads the staging index, returning an empty Index if none
// has ever been written.
func LoadIndex(ws *workspace.Workspace) (*Index, error) {
	data, err := os.ReadFile(ws.StagingIndexPath())
	if os.IsNotExist(err) {
		return &Index{Entries: map[string]Entry{}}, nil
	}
	if err != nil {
		return nil, jerr.Storage(err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, jerr.Parse("json", err.Error())
	}
	if idx.Entries == nil {
		idx.Entries = map[string]Entry{}
	}
	return &idx, nil
}

// SaveIndex atomically persists idx.
func SaveIndex(ws *workspace.Workspace, idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return jerr.Storage(err)
	}
	return workspace.WriteFileAtomic(ws.StagingIndexPath(), data, 0o644)
}
