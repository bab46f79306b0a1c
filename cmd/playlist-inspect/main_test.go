package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"playlist-browser/internal/logging"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-logo="http://logo/bbc.png" group-title="News",BBC News
http://stream/bbc
#EXTINF:-1 group-title="News",Sky News
http://stream/sky
#EXTINF:-1 group-title="Sports",ESPN
http://stream/espn
`

func writePlaylist(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playlist.m3u")
	if err := os.WriteFile(path, []byte(samplePlaylist), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)
	if !strings.Contains(buf.String(), "Usage: playlist-inspect [-v]") {
		t.Errorf("usage text missing: %q", buf.String())
	}
}

func TestLogLevelFromArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantArgs  []string
		wantLevel logging.LogLevel
	}{
		{"no flag", []string{"stats"}, []string{"stats"}, logging.LevelWarn},
		{"short flag", []string{"-v", "stats"}, []string{"stats"}, logging.LevelDebug},
		{"long flag", []string{"--verbose", "search", "-v"}, []string{"search", "-v"}, logging.LevelDebug},
		{"flag only", []string{"-v"}, []string{}, logging.LevelDebug},
		{"empty", nil, nil, logging.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, level := logLevelFromArgs(tt.args)
			if level != tt.wantLevel {
				t.Errorf("level = %v, want %v", level, tt.wantLevel)
			}
			if strings.Join(args, " ") != strings.Join(tt.wantArgs, " ") || len(args) != len(tt.wantArgs) {
				t.Errorf("args = %q, want %q", args, tt.wantArgs)
			}
		})
	}
}

func TestRun(t *testing.T) {
	source := writePlaylist(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  []string
		wantErr  string
	}{
		{"stats", []string{"stats"}, 0, []string{"Channels:            3", "Categories:          2"}, ""},
		{"categories", []string{"categories"}, 0, []string{"2  News", "1  Sports"}, ""},
		{"category", []string{"category", "News"}, 0, []string{"News (page 1 of 1, 2 channels)", "BBC News", "http://stream/sky"}, ""},
		{"unknown category", []string{"category", "Weather"}, 1, nil, `Category "Weather" not found`},
		{"category without name", []string{"category"}, 1, nil, "requires a name"},
		{"search", []string{"search", "news"}, 0, []string{"2 matches", "[News]", "Sky News"}, ""},
		{"search past last page", []string{"search", "news", "5"}, 0, []string{"page 5 of 1"}, ""},
		{"unknown command", []string{"rm\n-rf"}, 1, nil, "Unknown command: rm_-rf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(context.Background(), source, tt.args, &out, &errOut, 80)

			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, errOut.String())
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, out.String())
				}
			}
			if tt.wantErr != "" && !strings.Contains(errOut.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestRunMissingPlaylist(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), filepath.Join(t.TempDir(), "missing.m3u"), []string{"stats"}, &out, &errOut, 80)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "PLAYLIST_PATH") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"search", "search"},
		{"my-cmd_1", "my-cmd_1"},
		{"a b", "a_b"},
		{"\x1b[31m", "__31m"},
	}
	for _, tt := range tests {
		if got := sanitizeCommand(tt.input); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"ÄÖÜäöüßÄÖÜ+", 10, "ÄÖÜäöüß..."},
		{"tiny width", 3, "tiny width"},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestPageArg(t *testing.T) {
	args := []string{"search", "x", "3", "-1", "abc"}
	if got := pageArg(args, 2); got != 3 {
		t.Errorf("pageArg = %d, want 3", got)
	}
	if got := pageArg(args, 3); got != 1 {
		t.Errorf("negative page = %d, want 1", got)
	}
	if got := pageArg(args, 4); got != 1 {
		t.Errorf("invalid page = %d, want 1", got)
	}
	if got := pageArg(args, 9); got != 1 {
		t.Errorf("missing page = %d, want 1", got)
	}
}
