package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mattn/go-zglob"
)

// EntryKind classifies a directory entry for traversal.
type EntryKind int

const (
	// KindSkip marks symlinks, sockets, devices and FIFOs. They are never
	// followed or opened.
	KindSkip EntryKind = iota
	// KindDir marks a real directory.
	KindDir
	// KindFile marks a regular file.
	KindFile
)

// FilterOptions configures which entries a traversal visits.
type FilterOptions struct {
	// FilenamePattern is a regex matched against the base name of files
	FilenamePattern string
	// Globs restrict files to those matching at least one pattern ("**" supported)
	Globs []string
	// ExcludeDirs lists directory names that are never listed (e.g. ".git")
	ExcludeDirs []string
	// SkipHidden skips files and directories whose name starts with "."
	SkipHidden bool
}

// Filter is the compiled form of FilterOptions. It is immutable and safe for
// concurrent use.
type Filter struct {
	filename   *regexp.Regexp
	globs      []string
	excluded   map[string]bool
	skipHidden bool
}

// NewFilter compiles opts. An invalid filename regex or glob is an error.
func NewFilter(opts FilterOptions) (*Filter, error) {
	f := &Filter{
		excluded:   make(map[string]bool, len(opts.ExcludeDirs)),
		skipHidden: opts.SkipHidden,
	}

	if opts.FilenamePattern != "" {
		re, err := regexp.Compile(opts.FilenamePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filename pattern: %w", err)
		}
		f.filename = re
	}

	for _, g := range opts.Globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, err := zglob.Match(g, "probe"); err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", g, err)
		}
		f.globs = append(f.globs, filepath.ToSlash(g))
	}

	for _, dir := range opts.ExcludeDirs {
		f.excluded[dir] = true
	}

	return f, nil
}

// Classify maps a directory entry to the traversal action for it.
func Classify(d fs.DirEntry) EntryKind {
	t := d.Type()
	switch {
	case t&fs.ModeSymlink != 0:
		return KindSkip
	case t.IsDir():
		return KindDir
	case t.IsRegular():
		return KindFile
	default:
		return KindSkip
	}
}

// IsHidden reports whether name is a dot-file or dot-directory.
func IsHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

// AcceptDir reports whether a directory called name should be listed.
// A nil Filter accepts everything.
func (f *Filter) AcceptDir(name string) bool {
	if f == nil {
		return true
	}
	if f.skipHidden && IsHidden(name) {
		return false
	}
	return !f.excluded[name]
}

// AcceptFile reports whether a file should be scanned. rel is the path
// relative to the search root and is used for glob matching.
func (f *Filter) AcceptFile(rel string) bool {
	if f == nil {
		return true
	}

	name := filepath.Base(rel)
	if f.skipHidden && IsHidden(name) {
		return false
	}
	if f.filename != nil && !f.filename.MatchString(name) {
		return false
	}
	if len(f.globs) == 0 {
		return true
	}

	slashed := filepath.ToSlash(rel)
	for _, g := range f.globs {
		if ok, _ := zglob.Match(g, slashed); ok {
			return true
		}
		if ok, _ := zglob.Match(g, name); ok {
			return true
		}
	}
	return false
}

// Rel returns path relative to root, falling back to path itself.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// ResolveRoot classifies the search root. Unlike nested entries, a root that
// is a symlink is followed, so a linked directory can still be searched. The
// returned path is the one to traverse: a symlinked directory gets a trailing
// separator so that directory walkers descend into it.
func ResolveRoot(root string) (EntryKind, string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return KindSkip, root, err
	}

	switch {
	case info.IsDir():
		if l, err := os.Lstat(root); err == nil && l.Mode()&fs.ModeSymlink != 0 {
			return KindDir, root + string(filepath.Separator), nil
		}
		return KindDir, root, nil
	case info.Mode().IsRegular():
		return KindFile, root, nil
	default:
		return KindSkip, root, nil
	}
}
