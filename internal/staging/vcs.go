package staging

import (
	"os/exec"
)

// Detector answers whether the host project's own VCS already tracks
// a path. The host VCS is arbitrary and may not be git at all, so this
// stays an interface rather than a hard go-git dependency; gitCLI is
// the default, shelling out the same way the teacher's git.Client
// does for its own diff detection.
type Detector interface {
	// Tracked reports whether path (relative to dir) is tracked by the
	// host VCS. A non-git (or VCS-less) directory always reports false.
	Tracked(dir, path string) bool
}

// gitCLI shells out to the git binary, mirroring the subprocess-client
// idiom: one exec.Command per query, cmd.Dir set to the target
// directory, errors treated as "not applicable" rather than fatal.
type gitCLI struct{}

// NewDetector returns the default VCS detector.
func NewDetector() Detector {
	return gitCLI{}
}

func (gitCLI) Tracked(dir, path string) bool {
	if !isGitRepo(dir) {
		return false
	}
	cmd := exec.Command("git", "ls-files", "--error-unmatch", "--", path)
	cmd.Dir = dir
	return cmd.Run() == nil
}

func isGitRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}
