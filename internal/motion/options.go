// Package motion implements the frame-differencing motion detector: it
// turns a video file into a list of active-play time ranges by sampling
// downscaled grayscale frames, scoring consecutive-frame difference,
// smoothing that signal, and thresholding/padding/merging it into
// segments.
package motion

import (
	"math"

	"github.com/courtcut/courtcut/internal/courterr"
)

// FrameWidth and FrameHeight are the fixed dimensions the raw frame
// extractor downscales to before grayscale scoring. Frame size is
// always exactly FrameWidth*FrameHeight bytes (one byte per pixel).
const (
	FrameWidth  = 160
	FrameHeight = 90
	FrameSize   = FrameWidth * FrameHeight
)

// Options configures the detector. All fields must be finite and
// non-negative; DefaultOptions supplies the documented defaults.
type Options struct {
	SampleFPS        float64 // frames sampled per second of source time
	Threshold        float64 // minimum per-frame score in [0,1] to count active
	MinSegmentLength float64 // seconds; raw segments shorter than this are dropped
	PreRoll          float64 // seconds of padding before a surviving segment
	PostRoll         float64 // seconds of padding after a surviving segment
	SmoothingWindow  int     // rolling-average window size, in samples
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		SampleFPS:        2,
		Threshold:        0.02,
		MinSegmentLength: 3,
		PreRoll:          1,
		PostRoll:         1,
		SmoothingWindow:  3,
	}
}

// Validate rejects options outside their accepted ranges. Detector.Detect
// calls it on the options exactly as given, before probing or extracting
// anything.
func (o Options) Validate() error {
	switch {
	case !isFiniteNonNegative(o.SampleFPS) || o.SampleFPS <= 0:
		return &courterr.ConfigError{Field: "sampleFps", Message: "must be a positive finite number"}
	case !isFiniteNonNegative(o.Threshold) || o.Threshold < 0 || o.Threshold > 1:
		return &courterr.ConfigError{Field: "threshold", Message: "must be in [0,1]"}
	case !isFiniteNonNegative(o.MinSegmentLength):
		return &courterr.ConfigError{Field: "minSegmentLength", Message: "must be finite and non-negative"}
	case !isFiniteNonNegative(o.PreRoll):
		return &courterr.ConfigError{Field: "preRoll", Message: "must be finite and non-negative"}
	case !isFiniteNonNegative(o.PostRoll):
		return &courterr.ConfigError{Field: "postRoll", Message: "must be finite and non-negative"}
	case o.SmoothingWindow <= 0:
		return &courterr.ConfigError{Field: "smoothingWindow", Message: "must be a positive integer"}
	}
	return nil
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// WithDefaults fills zero, negative, or NaN fields of o from DefaultOptions. This
// is the "parse float, default on NaN-or-zero" coercion rule for the
// untyped options payload, kept at the adapter boundary rather than
// inside the detector.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.SampleFPS <= 0 || math.IsNaN(o.SampleFPS) {
		o.SampleFPS = d.SampleFPS
	}
	if o.Threshold <= 0 || math.IsNaN(o.Threshold) {
		o.Threshold = d.Threshold
	}
	if o.MinSegmentLength <= 0 || math.IsNaN(o.MinSegmentLength) {
		o.MinSegmentLength = d.MinSegmentLength
	}
	if o.PreRoll <= 0 || math.IsNaN(o.PreRoll) {
		o.PreRoll = d.PreRoll
	}
	if o.PostRoll <= 0 || math.IsNaN(o.PostRoll) {
		o.PostRoll = d.PostRoll
	}
	if o.SmoothingWindow <= 0 {
		o.SmoothingWindow = d.SmoothingWindow
	}
	return o
}

// TimeRange is a [Start, End) range in source-video seconds.
type TimeRange struct {
	Start float64
	End   float64
}
