package display

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/rr/internal/matcher"
	"github.com/harrison/rr/internal/models"
)

// ResultPrinter writes match results. Each result is emitted with a single
// Write so records from one result are never split. It is used by one
// goroutine (the aggregator) and is not safe for concurrent use.
type ResultPrinter struct {
	out     io.Writer
	mode    models.Mode
	matcher matcher.Matcher
	colored bool
	path    *color.Color
	match   *color.Color
}

// NewResultPrinter creates a printer for mode. m is used to locate the spans
// to highlight and may be nil when colored is false.
func NewResultPrinter(out io.Writer, mode models.Mode, m matcher.Matcher, colored bool) *ResultPrinter {
	return &ResultPrinter{
		out:     out,
		mode:    mode,
		matcher: m,
		colored: colored && m != nil,
		path:    paint(color.FgMagenta, color.Bold),
		match:   paint(color.FgRed, color.Bold),
	}
}

// Print writes one result.
func (p *ResultPrinter) Print(result models.MatchResult) error {
	records := result.Records()
	if p.mode == models.ModeFilesOnly {
		records = records[:1]
	}

	var b strings.Builder
	for i, record := range records {
		if i == 0 {
			p.writePath(&b, record)
			continue
		}
		p.writeLine(&b, record)
	}

	_, err := io.WriteString(p.out, b.String())
	return err
}

func (p *ResultPrinter) writePath(b *strings.Builder, path string) {
	if p.colored {
		b.WriteString(p.path.Sprint(path))
	} else {
		b.WriteString(path)
	}
	b.WriteByte('\n')
}

func (p *ResultPrinter) writeLine(b *strings.Builder, line string) {
	if !p.colored {
		b.WriteString(line)
		b.WriteByte('\n')
		return
	}

	last := 0
	for _, span := range p.matcher.Indexes(line) {
		start, end := span[0], span[1]
		if start < last || end <= start {
			continue
		}
		b.WriteString(line[last:start])
		b.WriteString(p.match.Sprint(line[start:end]))
		last = end
	}
	b.WriteString(line[last:])
	b.WriteByte('\n')
}
