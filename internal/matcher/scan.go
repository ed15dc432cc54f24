package matcher

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/harrison/rr/internal/models"
)

// DefaultMaxLineBytes is the longest line Scan accepts (1MB).
const DefaultMaxLineBytes = 1024 * 1024

// initialBufferBytes is the starting size of the line buffer.
const initialBufferBytes = 64 * 1024

var (
	// ErrInvalidUTF8 reports that scanning stopped at a line that is not valid
	// UTF-8. Matches found before that line are still returned.
	ErrInvalidUTF8 = errors.New("line is not valid UTF-8")

	// ErrLineTooLong reports that scanning stopped at a line longer than the
	// configured limit. Matches found before that line are still returned.
	ErrLineTooLong = errors.New("line exceeds maximum length")
)

// Truncated reports whether err ended a scan early but left a usable partial
// result, as opposed to a read failure.
func Truncated(err error) bool {
	return errors.Is(err, ErrInvalidUTF8) || errors.Is(err, ErrLineTooLong)
}

// Scan reads r line by line and applies m.
//
// In content mode every line is tested and all matching lines are returned in
// file order. In files-only mode scanning stops at the first match and no lines
// are returned. matched reports whether any line matched.
//
// A line that is not valid UTF-8, or that exceeds maxLineBytes, stops the
// scan; the lines matched so far are returned together with ErrInvalidUTF8 or
// ErrLineTooLong. Any other error is a read failure.
func Scan(r io.Reader, m Matcher, mode models.Mode, maxLineBytes int) (lines []string, matched bool, err error) {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	initial := initialBufferBytes
	if initial > maxLineBytes {
		initial = maxLineBytes
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initial), maxLineBytes)

	for scanner.Scan() {
		raw := scanner.Bytes()
		if !utf8.Valid(raw) {
			return lines, matched, ErrInvalidUTF8
		}

		line := string(raw)
		if !m.MatchLine(line) {
			continue
		}

		matched = true
		if mode == models.ModeFilesOnly {
			return nil, true, nil
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return lines, matched, ErrLineTooLong
		}
		return lines, matched, err
	}
	return lines, matched, nil
}
