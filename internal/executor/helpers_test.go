package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/harrison/rr/internal/models"
)

// captureLogger records formatted messages per level. Safe for concurrent use.
type captureLogger struct {
	mu     sync.Mutex
	debugs []string
	infos  []string
	warns  []string
	errors []string
}

func (l *captureLogger) Tracef(format string, args ...interface{}) {}

func (l *captureLogger) Debugf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func (l *captureLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

func (l *captureLogger) debugContains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.debugs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// collectingPrinter keeps every printed result in arrival order.
type collectingPrinter struct {
	mu      sync.Mutex
	results []models.MatchResult
	failAt  int // fail on the n-th call (1-based); 0 never fails
	calls   int
	onPrint func(call int, result models.MatchResult) // runs before the result is recorded
}

func (p *collectingPrinter) Print(result models.MatchResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.onPrint != nil {
		p.onPrint(p.calls, result)
	}
	if p.failAt > 0 && p.calls >= p.failAt {
		return fmt.Errorf("write /dev/stdout: broken pipe")
	}
	p.results = append(p.results, result)
	return nil
}

// paths returns the printed paths, sorted.
func (p *collectingPrinter) paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.results))
	for _, r := range p.results {
		out = append(out, r.Path)
	}
	sort.Strings(out)
	return out
}

// byPath returns the printed results keyed by path.
func (p *collectingPrinter) byPath() map[string]models.MatchResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]models.MatchResult, len(p.results))
	for _, r := range p.results {
		out[r.Path] = r
	}
	return out
}

// writeFiles creates files (relative path -> content) under root.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}
