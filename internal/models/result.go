package models

import "time"

// Mode selects how workers scan files. It is fixed for the lifetime of a run.
type Mode int

const (
	// ModeContent reports every matching line under a path header.
	ModeContent Mode = iota
	// ModeFilesOnly reports only the paths of matching files and stops
	// scanning a file at its first match.
	ModeFilesOnly
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeContent:
		return "content"
	case ModeFilesOnly:
		return "files-only"
	default:
		return "unknown"
	}
}

// MatchResult is everything a worker found in one file. It is built by a
// single worker and never mutated after it has been sent.
type MatchResult struct {
	Path  string   // File the lines come from
	Lines []string // Matching lines in file order (empty in files-only mode)
}

// Records returns the ordered output sequence: the path first, then every line.
func (r MatchResult) Records() []string {
	records := make([]string, 0, len(r.Lines)+1)
	records = append(records, r.Path)
	return append(records, r.Lines...)
}

// RunSummary is the diagnostic summary of a finished search.
type RunSummary struct {
	Workers         int           // Number of workers in the pool
	DirsListed      int64         // Directories successfully listed
	DirsSkipped     int64         // Directories that could not be listed
	FilesDiscovered int64         // Files handed to the pipeline
	FilesScanned    int64         // Files opened and read by workers
	FilesSkipped    int64         // Files that could not be opened or read
	FilesMatched    int64         // Files that produced a result
	LinesMatched    int64         // Lines reported in content mode
	Duration        time.Duration // Wall-clock time of the run
}
