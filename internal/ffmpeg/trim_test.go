package ffmpeg

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// generateTestPattern renders a silent moving test pattern of the given
// duration so the round-trip test doesn't depend on a checked-in fixture.
func generateTestPattern(t *testing.T, exec *Executor, duration float64) string {
	t.Helper()

	src := filepath.Join(t.TempDir(), "pattern.mp4")
	err := exec.Run(context.Background(), RunOptions{
		Args: []string{
			"-f", "lavfi",
			"-i", "testsrc=duration=" + formatSeconds(time.Duration(duration*float64(time.Second))) + ":size=320x240:rate=24",
			"-pix_fmt", "yuv420p",
			src,
		},
	})
	require.NoError(t, err, "failed to generate test pattern")
	return src
}

func TestTrimRoundTripDuration(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, "", 2)
	require.NoError(t, err)

	src := generateTestPattern(t, exec, 20)

	segments := []TrimSegment{
		{Start: 2 * time.Second, End: 7 * time.Second},
		{Start: 12 * time.Second, End: 17 * time.Second},
	}
	output := filepath.Join(t.TempDir(), "trimmed.mp4")

	require.NoError(t, exec.Trim(context.Background(), src, segments, output))

	info, err := exec.ProbeVideo(context.Background(), output)
	require.NoError(t, err)

	var want float64
	for _, s := range segments {
		want += (s.End - s.Start).Seconds()
	}
	got := info.Duration.Seconds()
	tolerance := 0.5 * float64(len(segments))
	require.LessOrEqual(t, math.Abs(got-want), tolerance,
		"output duration %.3fs should be within %.1fs of %.1fs", got, tolerance, want)
}

func TestTrimSingleSegmentNoAudio(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, "", 2)
	require.NoError(t, err)

	src := generateTestPattern(t, exec, 6)

	output := filepath.Join(t.TempDir(), "single.mp4")
	segments := []TrimSegment{{Start: 1 * time.Second, End: 4 * time.Second}}

	require.NoError(t, exec.Trim(context.Background(), src, segments, output))

	info, err := exec.ProbeVideo(context.Background(), output)
	require.NoError(t, err)
	require.False(t, info.HasAudio, "testsrc input has no audio track; output should not either")
	require.InDelta(t, 3.0, info.Duration.Seconds(), 0.5)
}
