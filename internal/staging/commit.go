package staging

import (
	"encoding/hex"
	"fmt"

	"github.com/jinconf/jin/internal/jerr"
	"github.com/jinconf/jin/internal/layer"
	"github.com/jinconf/jin/internal/store"
)

// Commit implements §4.7's commit operation: group staged entries by
// target layer coordinate, assemble a tree from the previous commit's
// tree overlaid with the newly staged blobs, commit it, and update the
// ref. Entries belonging to a successfully committed group are
// removed from idx; the caller is responsible for SaveIndex.
func Commit(idx *Index, st store.Store, message string) error {
	groups := map[string][]string{} // RefName -> paths
	for path, entry := range idx.Entries {
		ref := layer.RefName(entry.Coordinate)
		groups[ref] = append(groups[ref], path)
	}

	for ref, paths := range groups {
		tree := store.NewTree()

		var parent store.CommitID
		exists, err := st.RefExists(ref)
		if err != nil {
			return err
		}
		if exists {
			parent, err = st.ResolveRef(ref)
			if err != nil {
				return err
			}
			existingPaths, err := st.ListTree(parent)
			if err != nil {
				return err
			}
			for _, p := range existingPaths {
				data, err := st.ReadBlobAt(parent, p)
				if err != nil {
					return err
				}
				blob, err := st.CreateBlob(data)
				if err != nil {
					return err
				}
				tree.Add(p, blob)
			}
		}

		for _, path := range paths {
			entry := idx.Entries[path]
			blob, err := parseBlobID(entry.Blob)
			if err != nil {
				return err
			}
			tree.Add(path, blob)
		}

		commit, err := st.CreateCommit(parent, tree, message)
		if err != nil {
			return err
		}
		if err := st.SetRef(ref, commit, message); err != nil {
			return err
		}

		for _, path := range paths {
			delete(idx.Entries, path)
		}
	}

	return nil
}

func parseBlobID(s string) (store.BlobID, error) {
	var id store.BlobID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(id) {
		return id, jerr.Parse("blob-id", fmt.Sprintf("malformed blob id %q", s))
	}
	copy(id[:], b)
	return id, nil
}
