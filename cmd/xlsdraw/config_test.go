package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/aggregate"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xlsdraw.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestApplyConfig(t *testing.T) {
	path := writeConfig(t, `
[output]
format = "msgpack"
pretty = true

[inspect]
verify = true
placement = "interleaved"
jobs = 3
range = "B2:D8"
`)

	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"--jobs", "2"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	s := settings{Format: formatJSON, Placement: "appended", Jobs: 2}
	if err := applyConfig(path, &s, cmd.Flags()); err != nil {
		t.Fatalf("applyConfig failed: %v", err)
	}

	expected := settings{Format: formatMsgpack, Pretty: true, Verify: true, Placement: "interleaved", Jobs: 2, Range: "B2:D8"}
	if s != expected {
		t.Errorf("settings = %+v, expected %+v", s, expected)
	}
}

func TestApplyConfigKeepsUndefinedKeys(t *testing.T) {
	path := writeConfig(t, "[inspect]\nstrict = true\n")
	s := settings{Format: formatJSON, Placement: "appended", Verify: true}
	if err := applyConfig(path, &s, newRootCmd().Flags()); err != nil {
		t.Fatalf("applyConfig failed: %v", err)
	}
	if !s.Strict || !s.Verify || s.Format != formatJSON {
		t.Errorf("settings = %+v", s)
	}
}

func TestApplyConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"syntax", "[output\nformat = 1", "failed to parse TOML"},
		{"wrong type", "[inspect]\njobs = \"four\"", "failed to parse TOML"},
		{"unknown key", "[output]\ncolour = true", "unknown key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s settings
			err := applyConfig(writeConfig(t, tt.content), &s, newRootCmd().Flags())
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("err = %v, expected %q", err, tt.errPart)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name      string
		s         settings
		wantErr   bool
		placement aggregate.Placement
	}{
		{"defaults", settings{Format: formatJSON, Placement: "appended"}, false, aggregate.PlacementAppended},
		{"interleaved", settings{Format: formatMsgpack, Placement: "interleaved"}, false, aggregate.PlacementInterleaved},
		{"bad format", settings{Format: "yaml"}, true, 0},
		{"bad placement", settings{Format: formatJSON, Placement: "inline"}, true, 0},
		{"negative jobs", settings{Format: formatJSON, Jobs: -1}, true, 0},
		{"range", settings{Format: formatJSON, Range: "$A$1:$F$20"}, false, aggregate.PlacementAppended},
		{"bad range", settings{Format: formatJSON, Range: "A1:B2:C3"}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.s.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.Placement != tt.placement {
				t.Errorf("Placement = %v, expected %v", opts.Placement, tt.placement)
			}
		})
	}
}

func TestSettingsJobs(t *testing.T) {
	tests := []struct {
		jobs, files, expected int
	}{
		{4, 2, 2},
		{2, 5, 2},
		{1, 1, 1},
		{3, 0, 1},
	}
	for _, tt := range tests {
		if got := (settings{Jobs: tt.jobs}).jobs(tt.files); got != tt.expected {
			t.Errorf("jobs(%d) with %d = %d, expected %d", tt.files, tt.jobs, got, tt.expected)
		}
	}
	if got := (settings{}).jobs(100); got < 1 {
		t.Errorf("default jobs = %d", got)
	}
}
