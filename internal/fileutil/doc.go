// Package fileutil holds the file selection rules shared by every traversal.
//
// # Filtering
//
// Filter is compiled once from FilterOptions and consulted for every entry:
//
//	filter, err := fileutil.NewFilter(fileutil.FilterOptions{
//	    FilenamePattern: `\.go$`,
//	    Globs:           []string{"internal/**/*.go"},
//	    ExcludeDirs:     []string{".git", "vendor"},
//	    SkipHidden:      true,
//	})
//
// FilenamePattern is matched against the base name. Globs use zglob syntax and
// are matched against the slash-separated path relative to the search root and
// against the base name; a file passes when any glob matches. ExcludeDirs and
// SkipHidden prune whole directories before they are listed.
//
// # Entry classification
//
// Classify decides what a traversal does with a directory entry. Symbolic
// links are never followed and never searched, so link cycles cannot cause
// infinite traversal. Sockets, FIFOs and devices are skipped as well: opening a
// FIFO would block a worker forever.
//
// # Reference scan
//
// ScanDirectory is a plain sequential filepath.WalkDir traversal using the
// same Filter and Classify rules. It collects non-fatal errors (for example a
// permission-denied subdirectory) and keeps going, and returns sorted paths.
// Tests use it as the oracle for the concurrent walkers.
package fileutil
