package apply

import (
	"os"
	"sort"
	"strings"

	"github.com/jinconf/jin/internal/jerr"
)

const (
	gitignoreStartMarker = "# --- JIN MANAGED START ---"
	gitignoreEndMarker   = "# --- JIN MANAGED END ---"
)

// updateManagedGitignore rewrites the managed block of <root>/.gitignore
// to list paths (sorted, unique), preserving any content outside the
// markers byte-for-byte (spec.md §6.4). Idempotent: rewriting with the
// same paths against its own prior output is a no-op (property P6).
func updateManagedGitignore(root string, paths []string) error {
	path := root + "/.gitignore"

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return jerr.Storage(err)
	}

	before, after := splitManagedBlock(string(existing))

	unique := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		unique[p] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for p := range unique {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var block strings.Builder
	block.WriteString(gitignoreStartMarker)
	block.WriteByte('\n')
	for _, p := range sorted {
		block.WriteString(p)
		block.WriteByte('\n')
	}
	block.WriteString(gitignoreEndMarker)
	block.WriteByte('\n')

	var out strings.Builder
	out.WriteString(before)
	out.WriteString(block.String())
	out.WriteString(after)

	return writeFileAtomicText(path, out.String())
}

// splitManagedBlock locates the managed markers in content, returning
// the text before the start marker and after the end marker. If the
// markers are absent, the whole content is returned as "before" (so
// the managed block gets appended) and "after" is empty.
func splitManagedBlock(content string) (before, after string) {
	startIdx := strings.Index(content, gitignoreStartMarker)
	if startIdx < 0 {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content, ""
	}

	endMarkerIdx := strings.Index(content[startIdx:], gitignoreEndMarker)
	if endMarkerIdx < 0 {
		// Malformed: no end marker. Treat everything from start as
		// replaceable.
		return content[:startIdx], ""
	}
	endIdx := startIdx + endMarkerIdx + len(gitignoreEndMarker)
	after = content[endIdx:]
	after = strings.TrimPrefix(after, "\n")
	return content[:startIdx], after
}
