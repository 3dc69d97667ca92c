package pipeline

import (
	git "github.com/go-git/go-git/v5"
)

// headCommit returns the short hash of the workspace HEAD, or "" when the
// project directory is not a git repository. Best-effort only; build reports
// carry the commit when available but never fail without one.
func headCommit(projectDir string) string {
	repo, err := git.PlainOpenWithOptions(projectDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	h := ref.Hash().String()
	if len(h) >= 8 {
		return h[:8]
	}
	return h
}
