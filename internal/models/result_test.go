package models

import (
	"reflect"
	"testing"
)

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeContent, "content"},
		{ModeFilesOnly, "files-only"},
		{Mode(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestMatchResult_Records(t *testing.T) {
	t.Run("content mode", func(t *testing.T) {
		r := MatchResult{Path: "a.txt", Lines: []string{"one hello", "two hello"}}
		want := []string{"a.txt", "one hello", "two hello"}
		if got := r.Records(); !reflect.DeepEqual(got, want) {
			t.Errorf("Records() = %v, want %v", got, want)
		}
	})

	t.Run("files-only mode", func(t *testing.T) {
		r := MatchResult{Path: "a.txt"}
		want := []string{"a.txt"}
		if got := r.Records(); !reflect.DeepEqual(got, want) {
			t.Errorf("Records() = %v, want %v", got, want)
		}
	})

	t.Run("records do not alias lines", func(t *testing.T) {
		lines := []string{"x"}
		r := MatchResult{Path: "p", Lines: lines}
		rec := r.Records()
		rec[1] = "changed"
		if lines[0] != "x" {
			t.Error("Records() must not share storage with Lines")
		}
	})
}
