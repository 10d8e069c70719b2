// Package store implements the object/ref store adapter of spec.md
// §4.1: an immutable, content-addressed blob/tree/commit store plus a
// ref namespace, modeled directly on git's own object model. GitStore
// persists onto a go-git/go-billy filesystem backend; MemStore is an
// in-memory fake for tests.
package store

import (
	"encoding/hex"
	"errors"
)

// BlobID and CommitID are opaque content addresses: the SHA-1 of the
// object's canonical git-style encoding ("<type> <len>\0<content>").
// Both share a representation so a commit's tree root can be addressed
// the same way a blob is.
type BlobID [20]byte

// CommitID identifies a commit object.
type CommitID [20]byte

// ZeroCommit is the sentinel "no parent" value.
var ZeroCommit CommitID

func (id BlobID) String() string   { return hex.EncodeToString(id[:]) }
func (id CommitID) String() string { return hex.EncodeToString(id[:]) }

// IsZero reports whether id is the zero value (no commit).
func (id CommitID) IsZero() bool { return id == ZeroCommit }

// ParseCommitID parses a 40-character hex commit id.
func ParseCommitID(s string) (CommitID, error) {
	var id CommitID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(id) {
		return id, errors.New("store: malformed commit id " + s)
	}
	copy(id[:], b)
	return id, nil
}

// WalkFunc is called once per blob path during a pre-order Walk, in
// deterministic (lexical) tree order.
type WalkFunc func(path string, blob BlobID) error

// Store is the minimal capability set of spec.md §4.1. All operations
// fail with a jerr.Storage-wrapped error on backing-store failure
// unless otherwise noted.
type Store interface {
	// CreateBlob inserts immutable bytes, idempotent on content.
	CreateBlob(data []byte) (BlobID, error)

	// RefExists reports whether name currently resolves.
	RefExists(name string) (bool, error)
	// ResolveRef resolves name to its commit id. Fails jerr.NotFound if
	// absent; callers that treat absence as "may be unset" must call
	// RefExists first.
	ResolveRef(name string) (CommitID, error)
	// SetRef points name at commit, recording note as the reflog-style
	// annotation (the on-disk commit message already carries this, so
	// GitStore treats note as informational only).
	SetRef(name string, commit CommitID, note string) error
	// DeleteRef removes name. Not an error if name was already absent.
	DeleteRef(name string) error

	// ListTree returns every blob path reachable from commit's tree, in
	// deterministic (lexically sorted, pre-order) order.
	ListTree(commit CommitID) ([]string, error)
	// ReadBlobAt reads the blob at path within commit's tree. Fails
	// jerr.NotFound if path is absent.
	ReadBlobAt(commit CommitID, path string) ([]byte, error)

	// CreateCommit writes tree's entries as a tree object, then a
	// commit object pointing at it with the given parent (ZeroCommit
	// for none) and message.
	CreateCommit(parent CommitID, tree *Tree, message string) (CommitID, error)
	// Walk performs a pre-order traversal of commit's tree, invoking fn
	// once per blob.
	Walk(commit CommitID, fn WalkFunc) error
}

var (
	_ Store = (*GitStore)(nil)
	_ Store = (*MemStore)(nil)
)
