package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/syou6162/diffchunk/internal/engine"
	"github.com/syou6162/diffchunk/internal/logger"
)

// GitSource compares the HEAD commit of a repository with its working tree
type GitSource struct {
	repo   *git.Repository
	root   string
	logger *logger.Logger

	// IncludeUntracked diffs untracked files as new files
	IncludeUntracked bool
}

// OpenGitSource opens the repository containing path
func OpenGitSource(path string, log *logger.Logger) (*GitSource, error) {
	if path == "" {
		path = "."
	}
	if log == nil {
		log = logger.NewFromEnv()
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &GitSource{
		repo:   repo,
		root:   worktree.Filesystem.Root(),
		logger: log.Named("git"),
	}, nil
}

// Root returns the top directory of the working tree
func (s *GitSource) Root() string {
	return s.root
}

// ChangedPaths lists the files that differ between HEAD and the working
// tree, sorted. Paths are relative to the root and use forward slashes.
// Non-empty filters keep only the files equal to or below one of them.
func (s *GitSource) ChangedPaths(filters ...string) ([]string, error) {
	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var paths []string
	for path, fileStatus := range status {
		if fileStatus.Staging == git.Untracked && !s.IncludeUntracked {
			continue
		}
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		if !matchesFilter(path, filters) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func matchesFilter(path string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		f = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(f)), "/")
		if f == "." || path == f || strings.HasPrefix(path, f+"/") {
			return true
		}
	}
	return false
}

// WorktreeInputs reads HEAD and working tree versions of every changed file
func (s *GitSource) WorktreeInputs(ctx context.Context, filters ...string) ([]engine.FileInput, error) {
	paths, err := s.ChangedPaths(filters...)
	if err != nil {
		return nil, err
	}
	tree, err := s.headTree()
	if err != nil {
		return nil, err
	}

	inputs := make([]engine.FileInput, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		left, err := s.headSide(tree, path)
		if err != nil {
			return nil, err
		}
		right, err := s.worktreeSide(path)
		if err != nil {
			return nil, err
		}
		if !left.Exists && !right.Exists {
			continue
		}
		s.logger.Debug("read %s", path)
		inputs = append(inputs, NewInput(left, right))
	}
	return inputs, nil
}

// headTree returns nil before the first commit
func (s *GitSource) headTree() (*object.Tree, error) {
	head, err := s.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD tree: %w", err)
	}
	return tree, nil
}

func (s *GitSource) headSide(tree *object.Tree, path string) (Side, error) {
	if tree == nil {
		return Missing(path), nil
	}
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return Missing(path), nil
	}
	if err != nil {
		return Side{}, fmt.Errorf("failed to read %s at HEAD: %w", path, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return Side{}, fmt.Errorf("failed to read %s at HEAD: %w", path, err)
	}
	return Side{
		Path:    path,
		Content: []byte(contents),
		Mode:    formatMode(f.Mode),
		Hash:    f.Hash,
		Exists:  true,
	}, nil
}

func (s *GitSource) worktreeSide(path string) (Side, error) {
	side, err := ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if errors.Is(err, os.ErrNotExist) {
		return Missing(path), nil
	}
	if err != nil {
		return Side{}, err
	}
	side.Path = path
	return side, nil
}
