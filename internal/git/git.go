package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Status describes how git treats a plaintext file svault read secrets from.
type Status struct {
	IsRepo  bool
	Path    string
	Tracked bool // committed or staged: the secret may already be in history
	Ignored bool // covered by a .gitignore rule
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckFile inspects the git state of path, relative to the repository that
// contains it. Outside a work tree only IsRepo=false is reported. A missing
// git binary is treated the same way.
func CheckFile(path string) *Status {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	dir, base := filepath.Split(abs)

	status := &Status{Path: path}
	if !IsGitRepo(dir) {
		return status
	}
	status.IsRepo = true
	status.Tracked = IsTracked(dir, base)
	status.Ignored = IsIgnored(dir, base)
	return status
}

// Warnings returns the problems to show the user, one per line. Empty when
// the file is outside git or properly ignored and untracked.
func (s *Status) Warnings() []string {
	if !s.IsRepo {
		return nil
	}

	var out []string
	if s.Tracked {
		out = append(out, fmt.Sprintf("%s is tracked by git (run: git rm --cached %s)", s.Path, s.Path))
	}
	if !s.Ignored && !s.Tracked {
		out = append(out, fmt.Sprintf("%s not in .gitignore (add to .gitignore)", s.Path))
	}
	return out
}
