package ffmpeg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtcut/courtcut/internal/courterr"
)

// TrimSegment is one [start, end) range, in source-video seconds, to
// keep in the muxed output.
type TrimSegment struct {
	Start time.Duration
	End   time.Duration
}

// Trim drives ffmpeg with a single filter_complex graph that trims each
// segment and concatenates the results into one re-encoded output,
// mapping an audio track only when the source has one. A single pass
// avoids intermediate files and codec-timestamp discontinuities at the
// cut points, and re-encoding lets segments join cleanly even when cuts
// don't fall on a keyframe.
func (e *Executor) Trim(ctx context.Context, input string, segments []TrimSegment, output string) error {
	if len(segments) == 0 {
		return &courterr.EmptyInputError{}
	}
	if output == "" {
		return &courterr.MuxError{Summary: "output path is required"}
	}

	info, err := e.ProbeVideo(ctx, input)
	if err != nil {
		return &courterr.MuxError{Summary: "probing input for audio presence", Err: err}
	}

	filter := buildTrimConcatFilter(segments, info.HasAudio)

	args := []string{
		"-i", input,
		"-filter_complex", filter,
		"-map", "[outv]",
	}
	if info.HasAudio {
		args = append(args, "-map", "[outa]")
	}
	args = append(args,
		"-c:v", DefaultVideoCodec,
		"-crf", fmt.Sprintf("%d", DefaultCRF),
		"-preset", DefaultPreset,
	)
	if info.HasAudio {
		args = append(args, "-c:a", DefaultAudioCodec)
	}
	args = append(args, output)

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("trim/concat")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return &courterr.MuxError{Summary: "ffmpeg trim/concat failed", Err: err}
	}

	e.logger.Info().
		Str("output", output).
		Int("segments", len(segments)).
		Bool("has_audio", info.HasAudio).
		Msg("trim/concat complete")

	return nil
}

// buildTrimConcatFilter builds the filter_complex graph shaped like:
//
//	[0:v]trim=start=s_i:end=e_i,setpts=PTS-STARTPTS[v_i]; ...
//	[0:a]atrim=start=s_i:end=e_i,asetpts=PTS-STARTPTS[a_i]; ... (audio only)
//	[v_0][a_0?]...[v_n][a_n?]concat=n=N:v=1:a=A[outv][outa?]
func buildTrimConcatFilter(segments []TrimSegment, hasAudio bool) string {
	var stages []string
	var concatInputs strings.Builder

	for i, seg := range segments {
		vLabel := fmt.Sprintf("v%d", i)
		stages = append(stages, fmt.Sprintf(
			"[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[%s]",
			formatSeconds(seg.Start), formatSeconds(seg.End), vLabel,
		))
		concatInputs.WriteString("[" + vLabel + "]")

		if hasAudio {
			aLabel := fmt.Sprintf("a%d", i)
			stages = append(stages, fmt.Sprintf(
				"[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[%s]",
				formatSeconds(seg.Start), formatSeconds(seg.End), aLabel,
			))
			concatInputs.WriteString("[" + aLabel + "]")
		}
	}

	audioFlag := 0
	if hasAudio {
		audioFlag = 1
	}
	stages = append(stages, fmt.Sprintf(
		"%sconcat=n=%d:v=1:a=%d[outv]%s",
		concatInputs.String(), len(segments), audioFlag, outaLabel(hasAudio),
	))

	return strings.Join(stages, ";")
}

func outaLabel(hasAudio bool) string {
	if hasAudio {
		return "[outa]"
	}
	return ""
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
