package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chromamatte/matte"

	"github.com/alecthomas/kong"
)

// CLICmd is the matte command: it keys out the background of every image in
// InputDir. Validate resolves the folders and builds Filter before Run.
type CLICmd struct {
	InputDir   string       `help:"Folder scanned for png and jpeg images" default:"${input_dir}"`
	OutputDir  string       `help:"Folder receiving the transparent PNGs, created if missing" default:"${output_dir}"`
	Threshold  int          `help:"Largest color distance from a corner still treated as background" default:"${threshold}"`
	Chroma     string       `help:"Temporary marker color (#RGB or #RRGGBB). Foreground pixels of exactly this color turn transparent too" default:"${chroma}"`
	Metric     string       `help:"Color distance: sum or max of the per-channel differences" enum:"sum,max" default:"${metric}"`
	Suffix     string       `help:"Appended to the source file name stem" default:"${suffix}"`
	Workers    int          `help:"Images processed at once, 0 for one per CPU" default:"${workers}"`
	AutoOrient bool         `help:"Apply the EXIF orientation of JPEG files before keying"`
	Strict     bool         `help:"Exit with an error if any image failed"`
	Filter     matte.Filter `kong:"-"`
}

// Validate is called by kong after parsing.
func (c *CLICmd) Validate(kctx *kong.Context) error {
	inputDir, err := filepath.Abs(c.InputDir)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(inputDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid input path %q: %w", c.InputDir, err)
	}
	c.InputDir = inputDir

	if c.OutputDir, err = filepath.Abs(c.OutputDir); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	if c.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}

	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("invalid suffix %q: must not contain path separators", c.Suffix)
	}

	chroma, err := matte.ParseColor(c.Chroma)
	if err != nil {
		return err
	}
	metric, err := matte.MetricByName(c.Metric)
	if err != nil {
		return err
	}
	c.Filter = matte.Filter{
		Chroma:    chroma,
		Threshold: c.Threshold,
		Metric:    metric,
	}
	return c.Filter.Validate()
}

// Run processes the folder. With Strict, failed images make it return an error.
func (c *CLICmd) Run(logger *slog.Logger) error {
	runner := &Runner{
		InputDir:   c.InputDir,
		OutputDir:  c.OutputDir,
		Suffix:     c.Suffix,
		Filter:     c.Filter,
		Workers:    c.Workers,
		AutoOrient: c.AutoOrient,
		Logger:     logger,
	}

	report, err := runner.Run()
	if err != nil {
		return err
	}

	if failed := report.Failed(); c.Strict && failed > 0 {
		return fmt.Errorf("error processing %d files", failed)
	}
	return nil
}
