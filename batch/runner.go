// Package batch keys out the background of every image in a folder.
package batch

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"chromamatte/matte"
	"chromamatte/parallel"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Runner applies Filter to each image found in InputDir and writes the results
// to OutputDir as PNG.
type Runner struct {
	InputDir  string
	OutputDir string
	// Suffix is appended to the source stem, see OutputName.
	Suffix string
	Filter matte.Filter
	// Workers is the number of images processed at once; 1 is sequential and
	// 0 means one per CPU.
	Workers int
	// AutoOrient rotates images according to their EXIF orientation tag.
	AutoOrient bool
	Logger     *slog.Logger
}

// Run processes the whole folder. Failures of individual images are logged and
// recorded in the report; only setup failures are returned as errors.
func (r *Runner) Run() (*Report, error) {
	logger := r.logger()

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create destination folder %q: %w", r.OutputDir, err)
	}

	files, err := Discover(r.InputDir)
	if err != nil {
		return nil, err
	}

	report := &Report{Results: make([]Result, len(files))}
	if len(files) == 0 {
		logger.Warn("no images found", "dir", r.InputDir)
		return report, nil
	}

	logger.Info("processing", "input", r.InputDir, "output", r.OutputDir, "images", len(files),
		"threshold", r.Filter.Threshold, "chroma", matte.FormatColor(r.Filter.Chroma))

	// sources sharing an output name run in one job, in discovery order, so the
	// last of them is the one left on disk whatever the worker count
	var jobs [][]int
	byOutput := map[string]int{}
	for i, fileName := range files {
		outName := OutputName(fileName, r.Suffix)
		job, seen := byOutput[outName]
		if !seen {
			byOutput[outName] = len(jobs)
			jobs = append(jobs, []int{i})
			continue
		}
		prev := files[jobs[job][len(jobs[job])-1]]
		logger.Warn("output name collision, later file overwrites earlier one",
			"output", outName, "earlier", prev, "later", fileName)
		jobs[job] = append(jobs[job], i)
	}

	pool := parallel.Start(r.Workers)
	for _, job := range jobs {
		pool.Do(func() {
			for _, i := range job {
				report.Results[i] = r.process(files[i])
			}
		})
	}
	pool.Wait()

	processed, errors := report.Succeeded(), report.Failed()
	logger.Info("stats", "processed", processed, "errors", errors, "total", processed+errors)

	return report, nil
}

func (r *Runner) process(fileName string) Result {
	src := filepath.Join(r.InputDir, fileName)
	res := Result{Source: src}
	logger := r.logger().With("file", src)

	img, stage, err := r.load(logger, src)
	if err != nil {
		res.Stage, res.Err = stage, err
		logger.Error("could not "+string(stage)+" image", "error", err)
		return res
	}

	out, stats := r.Filter.Apply(img)
	res.Stats = stats

	dest := filepath.Join(r.OutputDir, OutputName(fileName, r.Suffix))
	if err := savePNG(out, dest); err != nil {
		res.Stage, res.Err = StageSave, err
		logger.Error("could not save image", "dir", r.OutputDir, "error", err)
		return res
	}

	res.Output = dest
	logger.Info("saved", "output", dest, "filled", stats.Filled, "cleared", stats.Cleared)
	return res
}

func (r *Runner) load(logger *slog.Logger, src string) (image.Image, Stage, error) {
	imgFile, err := os.Open(src)
	if err != nil {
		return nil, StageOpen, fmt.Errorf("could not open source file %q: %w", src, err)
	}
	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			logger.Error("could not close source file", "error", closeErr)
		}
	}()

	img, err := imaging.Decode(imgFile, imaging.AutoOrientation(r.AutoOrient))
	if err != nil {
		return nil, StageDecode, fmt.Errorf("could not decode %q: %w", src, err)
	}
	return img, "", nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
