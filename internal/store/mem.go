package store

import (
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/jinconf/jin/internal/jerr"
)

// MemStore is an in-memory Store, for tests that want a real store
// without touching disk.
type MemStore struct {
	mu      sync.Mutex
	objects map[[20]byte][]byte
	refs    map[string]CommitID
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[[20]byte][]byte),
		refs:    make(map[string]CommitID),
	}
}

func (m *MemStore) writeObj(objType string, content []byte) ([20]byte, error) {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", objType, len(content))
	h.Write(content)
	var id [20]byte
	copy(id[:], h.Sum(nil))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[id] = content
	return id, nil
}

func (m *MemStore) readObj(id [20]byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.objects[id]
	if !ok {
		return nil, jerr.NotFound("object", hexID(id))
	}
	return content, nil
}

func (m *MemStore) CreateBlob(data []byte) (BlobID, error) {
	id, err := m.writeObj("blob", data)
	return BlobID(id), err
}

func (m *MemStore) RefExists(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.refs[name]
	return ok, nil
}

func (m *MemStore) ResolveRef(name string) (CommitID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.refs[name]
	if !ok {
		return CommitID{}, jerr.NotFound("ref", name)
	}
	return c, nil
}

func (m *MemStore) SetRef(name string, commit CommitID, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[name] = commit
	return nil
}

func (m *MemStore) DeleteRef(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refs, name)
	return nil
}

func (m *MemStore) ListTree(commit CommitID) ([]string, error) {
	var paths []string
	err := m.Walk(commit, func(path string, _ BlobID) error {
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func (m *MemStore) ReadBlobAt(commit CommitID, path string) ([]byte, error) {
	var found BlobID
	var ok bool
	if err := m.Walk(commit, func(p string, blob BlobID) error {
		if p == path {
			found, ok = blob, true
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if !ok {
		return nil, jerr.NotFound("path", path)
	}
	return m.readObj([20]byte(found))
}

func (m *MemStore) CreateCommit(parent CommitID, tree *Tree, message string) (CommitID, error) {
	root := buildTreeNode(tree.entries)
	treeID, err := encodeTreeNode(root, m.writeObj)
	if err != nil {
		return CommitID{}, err
	}
	content := commitContent(treeID, parent, message, time.Now().Unix())
	id, err := m.writeObj("commit", content)
	return CommitID(id), err
}

func (m *MemStore) Walk(commit CommitID, fn WalkFunc) error {
	commitBytes, err := m.readObj([20]byte(commit))
	if err != nil {
		return err
	}
	treeID, _, err := parseCommitTree(commitBytes)
	if err != nil {
		return err
	}
	return m.walkTree(treeID, "", fn)
}

func (m *MemStore) walkTree(treeID [20]byte, prefix string, fn WalkFunc) error {
	content, err := m.readObj(treeID)
	if err != nil {
		return err
	}
	entries, err := decodeTree(content)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := e.name
		if prefix != "" {
			path = prefix + "/" + e.name
		}
		if e.dir {
			if err := m.walkTree(e.id, path, fn); err != nil {
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
