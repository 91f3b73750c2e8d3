package motion

import (
	"context"
	"fmt"
	"os"

	"github.com/courtcut/courtcut/internal/courterr"
	"github.com/courtcut/courtcut/internal/ffmpeg"
	"github.com/courtcut/courtcut/pkg/util"
)

// extractFrames decodes input at opts.SampleFPS into downscaled
// grayscale rawvideo and writes it to a scratch file, returning its
// path. The caller owns cleanup of the returned path.
func extractFrames(ctx context.Context, exec *ffmpeg.Executor, input string, opts Options) (path string, err error) {
	f, err := util.TempFile("", "courtcut-frames-", ".gray")
	if err != nil {
		return "", &courterr.ExtractionError{Path: input, Summary: "creating scratch file", Err: err}
	}
	scratch := f.Name()
	f.Close()

	filter := ffmpeg.NewFilterBuilder().
		FPS(opts.SampleFPS).
		Scale(FrameWidth, FrameHeight).
		Gray().
		Build()

	runOpts := ffmpeg.RunOptions{
		Args: []string{
			"-i", input,
			"-vf", filter,
			"-f", "rawvideo",
			"-pix_fmt", "gray",
			scratch,
		},
		LogHandler: func(line string) {
			logger := exec.Logger()
			logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := exec.Run(ctx, runOpts); err != nil {
		os.Remove(scratch)
		return "", &courterr.ExtractionError{Path: input, Summary: "ffmpeg frame extraction failed", Err: err}
	}

	info, err := os.Stat(scratch)
	if err != nil {
		os.Remove(scratch)
		return "", &courterr.ExtractionError{Path: input, Summary: "stat scratch file", Err: err}
	}

	if info.Size() < FrameSize {
		os.Remove(scratch)
		return "", &courterr.ExtractionError{Path: input, Summary: fmt.Sprintf("no frames extracted at %.2f fps", opts.SampleFPS)}
	}

	return scratch, nil
}
