package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var alwaysSkippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

type gitignoreScope struct {
	dir     string
	matcher *ignore.GitIgnore
}

func loadGitignore(dir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(DenormalizePathForOS(dir), ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// ignoredByGitignore checks path against every .gitignore found between the
// walk root and the path's directory, each relative to its own directory.
func ignoredByGitignore(path string, isDir bool, scopes []gitignoreScope) bool {
	for _, scope := range scopes {
		rel := RelativeToRoot(path, scope.dir)
		if rel == "." || rel == path {
			continue
		}
		if isDir {
			rel += "/"
		}
		if scope.matcher.MatchesPath(rel) {
			return true
		}
	}
	return false
}

// SelectFiles walks root and returns, in lexical order, every file that is
// selected by include (all files when include is empty), not matched by
// exclude and, when respectGitignore is set, not ignored by git.
// node_modules and .git directories are never entered.
func SelectFiles(root string, include []string, exclude []string, respectGitignore bool) ([]string, error) {
	rootNorm := NormalizePathForInternal(root)
	info, err := os.Stat(DenormalizePathForOS(rootNorm))
	if err != nil {
		return nil, fmt.Errorf("cannot read project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", rootNorm)
	}

	includeMatchers, err := CreateGlobMatchers(include, rootNorm)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	excludeMatchers, err := CreateGlobMatchers(exclude, rootNorm)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}

	gitignores := map[string]*ignore.GitIgnore{}
	files := []string{}

	err = filepath.WalkDir(DenormalizePathForOS(rootNorm), func(osPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		path := NormalizePathForInternal(osPath)

		if entry.IsDir() {
			if path != rootNorm && alwaysSkippedDirs[entry.Name()] {
				return filepath.SkipDir
			}
			if respectGitignore {
				if path != rootNorm && ignoredByGitignore(path, true, activeGitignores(path, rootNorm, gitignores)) {
					return filepath.SkipDir
				}
				if gi := loadGitignore(path); gi != nil {
					gitignores[path] = gi
				}
			}
			return nil
		}

		if respectGitignore && ignoredByGitignore(path, false, activeGitignores(path, rootNorm, gitignores)) {
			return nil
		}
		if len(includeMatchers) > 0 && !SelectedByGlobMatchers(path, includeMatchers) {
			return nil
		}
		if MatchesAnyGlobMatcher(path, excludeMatchers) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// activeGitignores collects the .gitignore matchers of every ancestor of path
// up to and including root.
func activeGitignores(path string, root string, gitignores map[string]*ignore.GitIgnore) []gitignoreScope {
	scopes := []gitignoreScope{}
	dir := parentDir(path)
	for {
		if gi, ok := gitignores[dir]; ok {
			scopes = append(scopes, gitignoreScope{dir: dir, matcher: gi})
		}
		if dir == root || !strings.HasPrefix(dir, root) {
			break
		}
		next := parentDir(dir)
		if next == dir {
			break
		}
		dir = next
	}
	return scopes
}

func parentDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}
