package motion

import (
	"context"
	"os"

	"github.com/courtcut/courtcut/internal/courterr"
	"github.com/courtcut/courtcut/internal/ffmpeg"
)

// Detector runs the full motion-detection pipeline: extract downscaled
// grayscale frames, score consecutive-frame difference, smooth the
// score series, and segment it into padded, merged active-play ranges.
type Detector struct {
	exec *ffmpeg.Executor
}

// NewDetector builds a Detector around an already-constructed ffmpeg
// executor, reusing its resolved ffmpeg/ffprobe paths and logger.
func NewDetector(exec *ffmpeg.Executor) *Detector {
	return &Detector{exec: exec}
}

// Detect returns the merged, padded time ranges of a video that contain
// above-threshold frame-to-frame motion. It returns a *courterr.NoSegmentsError
// when every candidate run is filtered out, never an empty non-nil slice.
// Coercing untyped option payloads is the adapter's job (WithDefaults);
// Detect validates the options exactly as given and rejects out-of-range
// values with a *courterr.ConfigError.
func (d *Detector) Detect(ctx context.Context, path string, opts Options) ([]TimeRange, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	info, err := d.exec.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}

	scratch, err := extractFrames(ctx, d.exec, path, opts)
	if err != nil {
		return nil, err
	}
	defer os.Remove(scratch)

	raw, err := os.ReadFile(scratch)
	if err != nil {
		return nil, &courterr.ExtractionError{Path: path, Summary: "reading scratch file", Err: err}
	}

	rawScores := score(raw)
	smoothed := smooth(rawScores, opts.SmoothingWindow)
	ranges := segment(smoothed, opts.SampleFPS, info.Duration.Seconds(), opts)

	if len(ranges) == 0 {
		return nil, &courterr.NoSegmentsError{}
	}

	logger := d.exec.Logger()
	logger.Info().
		Str("path", path).
		Int("segments", len(ranges)).
		Msg("motion detection complete")

	return ranges, nil
}
