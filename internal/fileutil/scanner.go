package fileutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the paths of all accepted regular files, sorted
	Files []string
	// Errors contains any errors encountered during scanning
	Errors []error
}

// ScanDirectory walks root sequentially and returns every regular file the
// filter accepts. Symlinks are not followed. Unreadable directories are
// recorded in Errors and skipped. A root that is a regular file yields itself.
//
// This is the single-threaded reference traversal; the concurrent walkers
// must visit exactly the same set of files.
func ScanDirectory(root string, filter *Filter) (*ScanResult, error) {
	kind, walkRoot, err := ResolveRoot(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root: %w", err)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	switch kind {
	case KindFile:
		result.Files = append(result.Files, root)
		return result, nil
	case KindSkip:
		return result, nil
	}
	root = walkRoot

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}

		if path == root {
			return nil
		}

		switch Classify(d) {
		case KindDir:
			if !filter.AcceptDir(d.Name()) {
				return filepath.SkipDir
			}
		case KindFile:
			if filter.AcceptFile(Rel(root, path)) {
				result.Files = append(result.Files, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort files for consistent output
	sort.Strings(result.Files)

	return result, nil
}
