package pipeline

import (
	"github.com/courtcut/courtcut/internal/motion"
	"github.com/courtcut/courtcut/internal/storage"
)

// Result is the outcome of a single Run: the detected active-play
// segments plus descriptors of whatever got persisted along the way.
type Result struct {
	Segments     []motion.TimeRange
	StoredInput  *storage.StoredVideo
	StoredOutput storage.StoredVideo
}

// RunParams is the single entry point's argument struct. Exactly one of
// VideoPath or VideoURL should be set; if both are empty the run fails
// with a DownloadError.
type RunParams struct {
	VideoPath      string
	VideoURL       string
	MotionOptions  motion.Options
	MaxBytes       int64
	OutputFilename string
}
