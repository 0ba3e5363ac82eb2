package batch

import (
	"chromamatte/matte"
)

// Stage names the step of the per-image pipeline where a failure happened.
type Stage string

const (
	StageOpen   Stage = "open"
	StageDecode Stage = "decode"
	StageSave   Stage = "save"
)

// Result is the outcome for one source image. Err is nil on success.
type Result struct {
	Source string
	Output string
	Stage  Stage
	Err    error
	Stats  matte.Stats
}

// OK reports whether the image was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report lists one Result per discovered image, in discovery order.
type Report struct {
	Results []Result
}

// Succeeded counts the images written to the output folder.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed counts the images that could not be opened, decoded or saved.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Failures returns the results that carry an error.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}
