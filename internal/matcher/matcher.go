// Package matcher decides which lines of a file match a search query.
//
// A Matcher is stateless and safe for concurrent use; the whole worker pool
// shares a single instance.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPattern is returned when the query has no pattern.
	ErrEmptyPattern = errors.New("search pattern cannot be empty")

	// ErrInvalidPattern wraps regular expression compile errors.
	ErrInvalidPattern = errors.New("invalid search pattern")
)

// Matcher tests single lines of text.
type Matcher interface {
	// MatchLine reports whether line contains a match.
	MatchLine(line string) bool

	// Indexes returns the byte ranges of every non-overlapping match in line.
	Indexes(line string) [][]int

	// String describes the matcher for diagnostics.
	String() string
}

// Query describes what to search for.
type Query struct {
	Pattern    string // Literal text or regular expression
	Regex      bool   // Treat Pattern as a regular expression
	IgnoreCase bool   // Case-insensitive matching
}

// Compile builds the Matcher for q. Case-sensitive literals use a plain
// substring search; everything else goes through regexp.
func Compile(q Query) (Matcher, error) {
	if q.Pattern == "" {
		return nil, ErrEmptyPattern
	}

	if !q.Regex && !q.IgnoreCase {
		return NewLiteral(q.Pattern), nil
	}

	pattern := q.Pattern
	if !q.Regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if q.IgnoreCase {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &Regex{re: re, source: q.Pattern}, nil
}

// Literal matches a fixed substring.
type Literal struct {
	needle string
}

// NewLiteral returns a case-sensitive substring matcher.
func NewLiteral(needle string) *Literal {
	return &Literal{needle: needle}
}

// MatchLine reports whether line contains the literal.
func (l *Literal) MatchLine(line string) bool {
	return strings.Contains(line, l.needle)
}

// Indexes returns the positions of every occurrence of the literal.
func (l *Literal) Indexes(line string) [][]int {
	if l.needle == "" {
		return nil
	}

	var out [][]int
	offset := 0
	for {
		i := strings.Index(line[offset:], l.needle)
		if i < 0 {
			return out
		}
		start := offset + i
		end := start + len(l.needle)
		out = append(out, []int{start, end})
		offset = end
	}
}

func (l *Literal) String() string {
	return fmt.Sprintf("literal %q", l.needle)
}

// Regex matches a compiled regular expression.
type Regex struct {
	re     *regexp.Regexp
	source string
}

// MatchLine reports whether the expression matches anywhere in line.
func (r *Regex) MatchLine(line string) bool {
	return r.re.MatchString(line)
}

// Indexes returns the positions of every match in line.
func (r *Regex) Indexes(line string) [][]int {
	return r.re.FindAllStringIndex(line, -1)
}

func (r *Regex) String() string {
	return fmt.Sprintf("regex %q", r.re.String())
}
