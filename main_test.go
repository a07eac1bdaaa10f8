package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/llehouerou/tracksearch/internal/state"
	"github.com/llehouerou/tracksearch/internal/track"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"year=2001", "year=2001", false},
		{"genres=Rock", "genres=Rock", false},
		{"year", "", true},
		{"year=", "", true},
		{"keywords=foo", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := parseFilter(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseFilter(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFilter(%q) error: %v", tt.in, err)
			}
			got := ""
			if f != nil {
				got = f.Field + "=" + f.Value
			}
			if got != tt.want {
				t.Errorf("parseFilter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrintTracks(t *testing.T) {
	var buf bytes.Buffer
	err := printTracks(&buf, []track.Record{
		{ID: "t1", Year: 2001, ArtistName: "Artist A", AlbumName: "Album X", Index: 1, Name: "Song 1"},
		{ID: "t2", ArtistName: "Artist B", AlbumName: "Album Y", Index: 2, Name: "Song 2"},
	})
	if err != nil {
		t.Fatalf("printTracks error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and total, got %q", buf.String())
	}
	if !strings.Contains(lines[1], "2001") || !strings.Contains(lines[2], " - ") {
		t.Errorf("unexpected rows: %q", lines[1:3])
	}
	if lines[3] != "2 tracks" {
		t.Errorf("total line = %q", lines[3])
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"index", "search", "shuffle", "album", "track", "genres", "years"} {
		if c, _, err := cmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q missing", name)
		}
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	err := printHistory(&buf, []state.IndexState{
		{LastIndexed: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), Version: "v1.1.0"},
		{LastIndexed: time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), Version: "v1.0.0"},
	})
	if err != nil {
		t.Fatalf("printHistory error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "2024-03-02 10:00:00") || !strings.HasSuffix(lines[1], "v1.1.0") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "v1.0.0") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestIndexCommandHistoryFlag(t *testing.T) {
	cmd := newIndexCommand()
	if cmd.Flags().Lookup("history") == nil {
		t.Error("index command has no --history flag")
	}
}
