package store

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/storer"
	"github.com/go-git/go-git/v6/storage/filesystem"

	"github.com/jinconf/jin/internal/jerr"
)

// GitStore is the production Store, backed by go-git's filesystem
// object storage rooted at <metadataDir>/objects and refs, the same
// on-disk shape a bare git repository uses (minus the working tree and
// index git itself would also keep).
type GitStore struct {
	storer storer.Storer
}

// OpenGitStore opens (creating if absent) a GitStore rooted at dir.
func OpenGitStore(dir string) (*GitStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, jerr.Storage(err)
	}
	dotGit := osfs.New(filepath.Join(dir, ".jin"))
	sto := filesystem.NewStorage(dotGit, cache.NewObjectLRUDefault())
	return &GitStore{storer: sto}, nil
}

func (g *GitStore) writeObj(objType string, content []byte) ([20]byte, error) {
	var ptype plumbing.ObjectType
	switch objType {
	case "blob":
		ptype = plumbing.BlobObject
	case "tree":
		ptype = plumbing.TreeObject
	case "commit":
		ptype = plumbing.CommitObject
	}

	obj := g.storer.NewEncodedObject()
	obj.SetType(ptype)
	obj.SetSize(int64(len(content)))
	w, err := obj.Writer()
	if err != nil {
		return [20]byte{}, jerr.Storage(err)
	}
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return [20]byte{}, jerr.Storage(err)
	}
	if err := w.Close(); err != nil {
		return [20]byte{}, jerr.Storage(err)
	}

	hash, err := g.storer.SetEncodedObject(obj)
	if err != nil {
		return [20]byte{}, jerr.Storage(err)
	}
	return [20]byte(hash), nil
}

func (g *GitStore) readObj(id [20]byte) ([]byte, error) {
	o, err := g.storer.EncodedObject(plumbing.AnyObject, plumbing.Hash(id))
	if err != nil {
		return nil, jerr.Storage(err)
	}
	r, err := o.Reader()
	if err != nil {
		return nil, jerr.Storage(err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (g *GitStore) CreateBlob(data []byte) (BlobID, error) {
	id, err := g.writeObj("blob", data)
	if err != nil {
		return BlobID{}, err
	}
	return BlobID(id), nil
}

func (g *GitStore) RefExists(name string) (bool, error) {
	_, err := g.storer.Reference(plumbing.ReferenceName(name))
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	if err != nil {
		return false, jerr.Storage(err)
	}
	return true, nil
}

func (g *GitStore) ResolveRef(name string) (CommitID, error) {
	ref, err := g.storer.Reference(plumbing.ReferenceName(name))
	if err == plumbing.ErrReferenceNotFound {
		return CommitID{}, jerr.NotFound("ref", name)
	}
	if err != nil {
		return CommitID{}, jerr.Storage(err)
	}
	return CommitID(ref.Hash()), nil
}

func (g *GitStore) SetRef(name string, commit CommitID, note string) error {
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.Hash(commit))
	if err := g.storer.SetReference(ref); err != nil {
		return jerr.Storage(err)
	}
	return nil
}

func (g *GitStore) DeleteRef(name string) error {
	if err := g.storer.RemoveReference(plumbing.ReferenceName(name)); err != nil {
		return jerr.Storage(err)
	}
	return nil
}

func (g *GitStore) loadTreeEntries(treeID [20]byte) ([]decodedTreeEntry, error) {
	content, err := g.readObj(treeID)
	if err != nil {
		return nil, err
	}
	return decodeTree(content)
}

func (g *GitStore) ListTree(commit CommitID) ([]string, error) {
	var paths []string
	err := g.Walk(commit, func(path string, _ BlobID) error {
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func (g *GitStore) ReadBlobAt(commit CommitID, path string) ([]byte, error) {
	blob, ok, err := g.findBlob(commit, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, jerr.NotFound("path", path)
	}
	return g.readObj([20]byte(blob))
}

func (g *GitStore) findBlob(commit CommitID, path string) (BlobID, bool, error) {
	var found BlobID
	var ok bool
	err := g.Walk(commit, func(p string, blob BlobID) error {
		if p == path {
			found = blob
			ok = true
		}
		return nil
	})
	return found, ok, err
}

func (g *GitStore) CreateCommit(parent CommitID, tree *Tree, message string) (CommitID, error) {
	root := buildTreeNode(tree.entries)
	treeID, err := encodeTreeNode(root, g.writeObj)
	if err != nil {
		return CommitID{}, err
	}
	content := commitContent(treeID, parent, message, time.Now().Unix())
	id, err := g.writeObj("commit", content)
	if err != nil {
		return CommitID{}, err
	}
	return CommitID(id), nil
}

func (g *GitStore) Walk(commit CommitID, fn WalkFunc) error {
	commitBytes, err := g.readObj([20]byte(commit))
	if err != nil {
		return err
	}
	treeID, _, err := parseCommitTree(commitBytes)
	if err != nil {
		return jerr.Storage(err)
	}
	return g.walkTree(treeID, "", fn)
}

func (g *GitStore) walkTree(treeID [20]byte, prefix string, fn WalkFunc) error {
	entries, err := g.loadTreeEntries(treeID)
	if err != nil {
		return err
	}
	// decodeTree returns entries in on-disk (sorted) order already.
	for _, e := range entries {
		path := e.name
		if prefix != "" {
			path = prefix + "/" + e.name
		}
		if e.dir {
			if err := g.walkTree(e.id, path, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(path, BlobID(e.id)); err != nil {
			return err
		}
	}
	return nil
}
