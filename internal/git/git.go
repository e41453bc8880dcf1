// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git restores augmented files to their committed content so a run
// can start again from a clean slate.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/petar-djukic/dts-augment/internal/fsutil"
)

// ErrNoGit is returned when the working directory is not inside a git
// repository.
var ErrNoGit = errors.New("not a git repository")

// Config configures repository access.
type Config struct {
	WorkDir string // Directory inside the repository work tree
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
	root string
}

// Open opens the git repository containing the configured work directory,
// searching upward for the .git directory. Returns ErrNoGit when there is
// none.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(cfg.WorkDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	return &Repo{repo: r, root: wt.Filesystem.Root()}, nil
}

// RestoreFiles rewrites each path with its blob from the HEAD commit and
// returns the paths actually restored. A path missing from HEAD or outside
// the work tree yields a per-file error and does not stop the remaining
// restores; the joined error carries every failure.
func (r *Repo) RestoreFiles(paths []string) ([]string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD tree: %w", err)
	}

	var restored []string
	var errs []error
	for _, path := range paths {
		if err := r.restoreOne(tree, path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		restored = append(restored, path)
	}
	return restored, errors.Join(errs...)
}

// restoreOne writes the HEAD blob for path back into the work tree.
func (r *Repo) restoreOne(tree *object.Tree, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("outside the repository work tree")
	}

	file, err := tree.File(filepath.ToSlash(rel))
	if err != nil {
		return fmt.Errorf("not in HEAD: %w", err)
	}
	content, err := file.Contents()
	if err != nil {
		return fmt.Errorf("reading blob: %w", err)
	}
	return fsutil.AtomicWrite(abs, []byte(content))
}
