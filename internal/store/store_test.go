package store

import (
	"sort"
	"testing"
)

func testRoundTrip(t *testing.T, s Store) {
	t.Helper()

	blobA, err := s.CreateBlob([]byte("content-a"))
	if err != nil {
		t.Fatalf("CreateBlob() error = %v", err)
	}
	blobB, err := s.CreateBlob([]byte("content-b"))
	if err != nil {
		t.Fatalf("CreateBlob() error = %v", err)
	}

	// Idempotent on content.
	blobADup, err := s.CreateBlob([]byte("content-a"))
	if err != nil {
		t.Fatalf("CreateBlob() error = %v", err)
	}
	if blobA != blobADup {
		t.Errorf("CreateBlob() not idempotent: %v != %v", blobA, blobADup)
	}

	tree := NewTree()
	tree.Add("a.txt", blobA)
	tree.Add("dir/b.txt", blobB)

	commit, err := s.CreateCommit(ZeroCommit, tree, "initial")
	if err != nil {
		t.Fatalf("CreateCommit() error = %v", err)
	}

	paths, err := s.ListTree(commit)
	if err != nil {
		t.Fatalf("ListTree() error = %v", err)
	}
	sort.Strings(paths)
	wantPaths := []string{"a.txt", "dir/b.txt"}
	if len(paths) != len(wantPaths) {
		t.Fatalf("ListTree() = %v, want %v", paths, wantPaths)
	}
	for i := range wantPaths {
		if paths[i] != wantPaths[i] {
			t.Errorf("ListTree()[%d] = %q, want %q", i, paths[i], wantPaths[i])
		}
	}

	got, err := s.ReadBlobAt(commit, "a.txt")
	if err != nil {
		t.Fatalf("ReadBlobAt() error = %v", err)
	}
	if string(got) != "content-a" {
		t.Errorf("ReadBlobAt(a.txt) = %q, want %q", got, "content-a")
	}

	got, err = s.ReadBlobAt(commit, "dir/b.txt")
	if err != nil {
		t.Fatalf("ReadBlobAt() error = %v", err)
	}
	if string(got) != "content-b" {
		t.Errorf("ReadBlobAt(dir/b.txt) = %q, want %q", got, "content-b")
	}

	if _, err := s.ReadBlobAt(commit, "missing.txt"); err == nil {
		t.Errorf("ReadBlobAt(missing.txt) error = nil, want NotFound")
	}

	var walked []string
	err = s.Walk(commit, func(path string, _ BlobID) error {
		walked = append(walked, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(walked) != 2 {
		t.Fatalf("Walk() visited %d paths, want 2", len(walked))
	}

	// Ref lifecycle.
	const ref = "refs/layers/global"
	if exists, _ := s.RefExists(ref); exists {
		t.Fatalf("RefExists(%q) = true before SetRef", ref)
	}
	if err := s.SetRef(ref, commit, "test"); err != nil {
		t.Fatalf("SetRef() error = %v", err)
	}
	if exists, err := s.RefExists(ref); err != nil || !exists {
		t.Fatalf("RefExists(%q) = %v, %v, want true, nil", ref, exists, err)
	}
	resolved, err := s.ResolveRef(ref)
	if err != nil {
		t.Fatalf("ResolveRef() error = %v", err)
	}
	if resolved != commit {
		t.Errorf("ResolveRef() = %v, want %v", resolved, commit)
	}
	if err := s.DeleteRef(ref); err != nil {
		t.Fatalf("DeleteRef() error = %v", err)
	}
	if exists, _ := s.RefExists(ref); exists {
		t.Errorf("RefExists(%q) = true after DeleteRef", ref)
	}
}

func TestMemStore_RoundTrip(t *testing.T) {
	testRoundTrip(t, NewMemStore())
}

func TestGitStore_RoundTrip(t *testing.T) {
	s, err := OpenGitStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenGitStore() error = %v", err)
	}
	testRoundTrip(t, s)
}

func TestResolveRef_NotFoundBeforeExists(t *testing.T) {
	s := NewMemStore()
	if _, err := s.ResolveRef("refs/layers/global"); err == nil {
		t.Fatalf("ResolveRef() error = nil, want NotFound for absent ref")
	}
}

func TestCreateCommit_ParentChain(t *testing.T) {
	s := NewMemStore()
	blob, _ := s.CreateBlob([]byte("v1"))
	tree1 := NewTree()
	tree1.Add("f.txt", blob)
	c1, err := s.CreateCommit(ZeroCommit, tree1, "first")
	if err != nil {
		t.Fatalf("CreateCommit() error = %v", err)
	}

	blob2, _ := s.CreateBlob([]byte("v2"))
	tree2 := NewTree()
	tree2.Add("f.txt", blob2)
	c2, err := s.CreateCommit(c1, tree2, "second")
	if err != nil {
		t.Fatalf("CreateCommit() error = %v", err)
	}
	if c1 == c2 {
		t.Fatalf("expected distinct commit ids for distinct trees")
	}

	got, err := s.ReadBlobAt(c2, "f.txt")
	if err != nil {
		t.Fatalf("ReadBlobAt() error = %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("ReadBlobAt() = %q, want %q", got, "v2")
	}
}
