package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// getTestDataPath returns the path to testdata from project root.
func getTestDataPath(filename string) string {
	return filepath.Join("..", "..", "testdata", filename)
}

// skipIfNoFFmpeg skips the test if ffmpeg is not available.
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, "", 4)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if exec.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if exec.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
}

func TestProbeVideo(t *testing.T) {
	skipIfNoFFmpeg(t)

	testVideoPath := getTestDataPath("test.mp4")
	if _, err := os.Stat(testVideoPath); os.IsNotExist(err) {
		t.Skipf("test video not found at %s", testVideoPath)
	}

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, "", 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	info, err := exec.ProbeVideo(ctx, testVideoPath)
	if err != nil {
		t.Fatalf("ProbeVideo failed: %v", err)
	}

	if info.Duration == 0 {
		t.Error("duration is zero")
	}
	if info.Width == 0 || info.Height == 0 {
		t.Error("expected a non-zero resolution")
	}

	t.Logf("video info: %dx%d, %.2f fps, duration: %v, has_audio=%v",
		info.Width, info.Height, info.FPS, info.Duration, info.HasAudio)
}

func TestProbeVideoInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, "", 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()

	if _, err := exec.ProbeVideo(ctx, "nonexistent.mp4"); err == nil {
		t.Error("ProbeVideo should fail for a non-existent file")
	}

	invalidPath := getTestDataPath("invalid.txt")
	_ = os.MkdirAll(filepath.Dir(invalidPath), 0755)
	_ = os.WriteFile(invalidPath, []byte("not a video"), 0644)
	defer os.Remove(invalidPath)

	if _, err := exec.ProbeVideo(ctx, invalidPath); err == nil {
		t.Error("ProbeVideo should fail for an invalid video file")
	}
}

func TestFilterBuilder(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.FPS(2).Scale(160, 90).Gray().Build()

	expected := "fps=2.000000,scale=160:90,format=gray"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestFilterBuilderEmpty(t *testing.T) {
	fb := NewFilterBuilder()
	if filter := fb.Build(); filter != "" {
		t.Errorf("expected empty string, got %q", filter)
	}
}

func TestBuildTrimConcatFilter(t *testing.T) {
	segments := []TrimSegment{
		{Start: 2 * time.Second, End: 7 * time.Second},
		{Start: 12 * time.Second, End: 17 * time.Second},
	}

	t.Run("with audio", func(t *testing.T) {
		filter := buildTrimConcatFilter(segments, true)
		expected := "[0:v]trim=start=2.000:end=7.000,setpts=PTS-STARTPTS[v0];" +
			"[0:a]atrim=start=2.000:end=7.000,asetpts=PTS-STARTPTS[a0];" +
			"[0:v]trim=start=12.000:end=17.000,setpts=PTS-STARTPTS[v1];" +
			"[0:a]atrim=start=12.000:end=17.000,asetpts=PTS-STARTPTS[a1];" +
			"[v0][a0][v1][a1]concat=n=2:v=1:a=1[outv][outa]"
		if filter != expected {
			t.Errorf("expected:\n%s\ngot:\n%s", expected, filter)
		}
	})

	t.Run("without audio", func(t *testing.T) {
		filter := buildTrimConcatFilter(segments, false)
		expected := "[0:v]trim=start=2.000:end=7.000,setpts=PTS-STARTPTS[v0];" +
			"[0:v]trim=start=12.000:end=17.000,setpts=PTS-STARTPTS[v1];" +
			"[v0][v1]concat=n=2:v=1:a=0[outv]"
		if filter != expected {
			t.Errorf("expected:\n%s\ngot:\n%s", expected, filter)
		}
	})
}

func TestTrimEmptySegments(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, "", 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	err = exec.Trim(context.Background(), "in.mp4", nil, "out.mp4")
	if err == nil {
		t.Fatal("expected an error for empty segments")
	}
}
