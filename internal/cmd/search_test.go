package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// user or project config leaks into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RR_CONFIG", "")
	t.Setenv("NO_COLOR", "")
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	sort.Strings(lines)
	return lines
}

func TestSearch_ArgumentErrors(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{"a.txt": "hello\n"})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no pattern", []string{"-d", root}, "one of --string or --regex is required"},
		{"both patterns", []string{"-s", "a", "-e", "b", "-d", root}, "mutually exclusive"},
		{"empty literal", []string{"-s", "", "-d", root}, "cannot be empty"},
		{"empty regex", []string{"-e", "", "-d", root}, "cannot be empty"},
		{"bad regex", []string{"-e", "(", "-d", root}, "invalid search pattern"},
		{"bad filename regex", []string{"-s", "a", "--filename-regex", "[", "-d", root}, "invalid filename pattern"},
		{"bad walker", []string{"-s", "a", "--walker", "dfs", "-d", root}, "invalid walker"},
		{"bad distribution", []string{"-s", "a", "--distribution", "random", "-d", root}, "invalid distribution"},
		{"bad color", []string{"-s", "a", "--color", "rainbow", "-d", root}, "invalid color"},
		{"bad log level", []string{"-s", "a", "--log-level", "loud", "-d", root}, "invalid log_level"},
		{"zero multiplier", []string{"-s", "a", "--concurrency-multiplier", "0", "-d", root}, "concurrency_multiplier"},
		{"missing config", []string{"-s", "a", "--config", filepath.Join(root, "nope.yaml"), "-d", root}, "--config"},
		{"positional args", []string{"-s", "a", "extra", "-d", root}, `unexpected argument "extra"`},
		{"too many args", []string{"-s", "a", "-l", "true", "extra"}, "accepts at most 1 arg"},
		{"bad files-only value", []string{"-s", "a", "--matching-files-only", "maybe", "-d", root}, "invalid value"},
		{"unknown flag", []string{"-s", "a", "--frobnicate"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, stdout)
		})
	}
}

func TestSearch_MatchingFilesOnly(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{
		"a.txt":     "hello world\n",
		"b.txt":     "goodbye\n",
		"sub/c.txt": "say hello\nhello again\n",
	})

	for _, distribution := range []string{"round-robin", "shared"} {
		for _, walker := range []string{"queue", "recursive"} {
			t.Run(distribution+"/"+walker, func(t *testing.T) {
				stdout, stderr, err := execute(t, "-s", "hello", "-l", "-d", root,
					"--distribution", distribution, "--walker", walker)
				require.NoError(t, err)
				assert.Empty(t, stderr)
				assert.Equal(t, []string{
					filepath.Join(root, "a.txt"),
					filepath.Join(root, "sub", "c.txt"),
				}, sortedLines(stdout))
			})
		}
	}
}

func TestSearch_MatchingFilesOnlyExplicitValue(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{
		"one.txt":       "needle\n",
		"two.txt":       "hay\n",
		"three.txt":     "a needle here\n",
		"deep/four.txt": "hay\nhay\n",
		"deep/five.txt": "needle at last\n",
	})

	stdout, _, err := execute(t, "--string", "needle", "--directory", root, "--matching-files-only", "true")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "deep", "five.txt"),
		filepath.Join(root, "one.txt"),
		filepath.Join(root, "three.txt"),
	}, sortedLines(stdout))

	stdout, _, err = execute(t, "--string", "needle", "--directory", root, "--matching-files-only", "false")
	require.NoError(t, err)
	assert.Contains(t, stdout, "a needle here\n")
	assert.Contains(t, stdout, "needle at last\n")
}

func TestSearch_ContentMode(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{
		"x.txt": "foo1\nbar\nfoo2\n",
	})

	stdout, _, err := execute(t, "-e", "foo[0-9]", "-d", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "x.txt")+"\nfoo1\nfoo2\n", stdout)
}

func TestSearch_NoMatchesIsSuccess(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{"a.txt": "nothing here\n"})

	stdout, _, err := execute(t, "-s", "absent", "-d", root)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestSearch_EmptyDirectory(t *testing.T) {
	isolate(t)

	stdout, stderr, err := execute(t, "-s", "x", "-d", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestSearch_MissingDirectoryWarns(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "missing")

	stdout, stderr, err := execute(t, "-s", "x", "-d", missing)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "[WARN]")
	assert.Contains(t, stderr, missing)
}

func TestSearch_UnreadableFileSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	isolate(t)
	root := writeTree(t, map[string]string{
		"ok.txt":     "needle\n",
		"secret.txt": "needle\n",
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "secret.txt"), 0o000))

	stdout, stderr, err := execute(t, "-s", "needle", "-l", "-d", root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "ok.txt")}, sortedLines(stdout))
	assert.Contains(t, stderr, "secret.txt")
}

func TestSearch_IgnoreCase(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{"a.txt": "Hello\n"})

	stdout, _, err := execute(t, "-s", "hello", "-d", root)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	stdout, _, err = execute(t, "-s", "hello", "-i", "-d", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.txt")+"\nHello\n", stdout)
}

func TestSearch_Filters(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{
		"main.go":         "needle\n",
		"notes.md":        "needle\n",
		"pkg/util.go":     "needle\n",
		".hidden/x.go":    "needle\n",
		"vendor/dep/z.go": "needle\n",
		".rr/config.yaml": "exclude_dirs: [vendor]\n",
	})

	t.Run("glob", func(t *testing.T) {
		stdout, _, err := execute(t, "-s", "needle", "-l", "-d", root, "--glob", "*.go", "--skip-hidden",
			"--config", filepath.Join(root, ".rr", "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "main.go"),
			filepath.Join(root, "pkg", "util.go"),
		}, sortedLines(stdout))
	})

	t.Run("filename regex", func(t *testing.T) {
		stdout, _, err := execute(t, "-s", "needle", "-l", "-d", root, "--filename-regex", `\.md$`)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "notes.md")}, sortedLines(stdout))
	})
}

func TestSearch_ConfigFromEnvironment(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{"a.txt": "needle\n"})
	cfgPath := filepath.Join(t.TempDir(), "rr.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("walker: sideways\n"), 0o644))
	t.Setenv("RR_CONFIG", cfgPath)

	_, _, err := execute(t, "-s", "needle", "-d", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid walker")

	// Flags override the file.
	stdout, _, err := execute(t, "-s", "needle", "-d", root, "--walker", "recursive")
	require.NoError(t, err)
	assert.Contains(t, stdout, "needle")
}

func TestSearch_Stats(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{"a.txt": "needle\nneedle\n", "b.txt": "hay\n"})

	_, stderr, err := execute(t, "-s", "needle", "-d", root, "--stats", "--concurrency-multiplier", "2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "=== Search Summary ===")
	assert.Contains(t, stderr, "Files: 2 discovered, 2 scanned, 0 skipped")
	assert.Contains(t, stderr, "Matches: 1 files, 2 lines")

	_, stderr, err = execute(t, "-s", "needle", "-d", root)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Search Summary")
}

func TestSearch_LogFile(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{"a.txt": "needle\n"})
	logPath := filepath.Join(t.TempDir(), "logs", "rr.log")

	_, stderr, err := execute(t, "-s", "needle", "-d", root, "--log-file", logPath, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[DEBUG]")
	assert.Contains(t, stderr, "appending diagnostics to "+logPath)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== rr run ")
	assert.Contains(t, string(data), "[DEBUG]")
}

func TestSearch_ColorAlways(t *testing.T) {
	isolate(t)
	root := writeTree(t, map[string]string{"a.txt": "a needle here\n"})

	stdout, _, err := execute(t, "-s", "needle", "-d", root, "--color", "always")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\x1b[")
	assert.Contains(t, stdout, "needle")

	stdout, _, err = execute(t, "-s", "needle", "-d", root, "--color", "never")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "\x1b[")
}

func TestSearch_HomeDirectoryExpanded(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	require.NoError(t, os.MkdirAll(filepath.Join(home, "proj"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "proj", "f.txt"), []byte("needle\n"), 0o644))

	stdout, _, err := execute(t, "-s", "needle", "-l", "-d", "~/proj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "proj", "f.txt")+"\n", stdout)
}
