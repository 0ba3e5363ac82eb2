package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

// flags mirrors the parts of the matte command the resolver has to fill.
type flags struct {
	InputDir   string `default:"${input_dir}"`
	OutputDir  string `default:"${output_dir}"`
	Threshold  int    `default:"${threshold}"`
	Chroma     string `default:"${chroma}"`
	Metric     string `default:"${metric}"`
	Suffix     string `default:"${suffix}"`
	Workers    int    `default:"${workers}"`
	AutoOrient bool
	Strict     bool
	LogLevel   string `default:"${log_level}"`
	LogFormat  string `default:"${log_format}"`
}

func parse(t *testing.T, doc string, args ...string) flags {
	t.Helper()
	resolver, err := YAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}

	var f flags
	parser, err := kong.New(&f, Vars(), kong.Resolvers(resolver))
	if err != nil {
		t.Fatalf("kong.New failed: %v", err)
	}
	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return f
}

func TestDefaultsMatchFlags(t *testing.T) {
	got := parse(t, "")
	want := Default()

	if got.InputDir != want.InputDir || got.OutputDir != want.OutputDir ||
		got.Threshold != want.Threshold || got.Chroma != want.Chroma ||
		got.Metric != want.Metric || got.Suffix != want.Suffix ||
		got.Workers != want.Workers || got.AutoOrient || got.Strict ||
		got.LogLevel != want.LogLevel || got.LogFormat != want.LogFormat {
		t.Fatalf("flag defaults %+v differ from config defaults %+v", got, *want)
	}
}

func TestResolverFillsFlags(t *testing.T) {
	doc := `
input_dir: /data/in
threshold: 42
chroma: "#ff00ff"
workers: 0
auto_orient: true
log_level: debug
`
	got := parse(t, doc)

	if got.InputDir != "/data/in" {
		t.Errorf("expected input dir from config, got %q", got.InputDir)
	}
	if got.Threshold != 42 {
		t.Errorf("expected threshold 42, got %d", got.Threshold)
	}
	if got.Chroma != "#ff00ff" {
		t.Errorf("expected chroma from config, got %q", got.Chroma)
	}
	if got.Workers != 0 {
		t.Errorf("expected 0 workers, got %d", got.Workers)
	}
	if !got.AutoOrient {
		t.Error("expected auto orient from config")
	}
	if got.LogLevel != "debug" {
		t.Errorf("expected log level from config, got %q", got.LogLevel)
	}
	if got.OutputDir != DefaultOutputDir {
		t.Errorf("expected default output dir, got %q", got.OutputDir)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	got := parse(t, "threshold: 42\n", "--threshold=7")
	if got.Threshold != 7 {
		t.Fatalf("expected command line to win, got %d", got.Threshold)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "treshold: 10\n"},
		{"wrong type", "threshold: lots\n"},
		{"not a mapping", "- a\n- b\n"},
		{"unquoted color", "chroma: #ff00ff\n"},
		{"empty value", "input_dir:\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.doc)); err == nil {
				t.Errorf("expected error for %q", tt.doc)
			}
		})
	}
}

func TestSaveThenParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	if err := Save(Default(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not open saved config: %v", err)
	}
	defer f.Close()

	values, err := Parse(f)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if values["input_dir"] != DefaultInputDir {
		t.Errorf("expected input_dir %q, got %v", DefaultInputDir, values["input_dir"])
	}
	if values["threshold"] != DefaultThreshold {
		t.Errorf("expected threshold %d, got %v", DefaultThreshold, values["threshold"])
	}
}

func TestParseExplainsUnquotedColor(t *testing.T) {
	_, err := Parse(strings.NewReader("threshold: 10\nchroma: #ff00ff\n"))
	if err == nil {
		t.Fatal("expected error for an unquoted color")
	}
	if !strings.Contains(err.Error(), "chroma") || !strings.Contains(err.Error(), "quote") {
		t.Errorf("error %q should name the key and suggest quoting", err)
	}
}
