package motion

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/courtcut/courtcut/internal/ffmpeg"
	"github.com/rs/zerolog"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestDetectOnSampleVideo(t *testing.T) {
	skipIfNoFFmpeg(t)

	testVideoPath := filepath.Join("..", "..", "testdata", "test.mp4")
	if _, err := os.Stat(testVideoPath); os.IsNotExist(err) {
		t.Skipf("test video not found at %s", testVideoPath)
	}

	exec, err := ffmpeg.New(zerolog.New(os.Stderr), "", 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	d := NewDetector(exec)
	ranges, err := d.Detect(context.Background(), testVideoPath, DefaultOptions())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	for _, r := range ranges {
		if r.End <= r.Start {
			t.Errorf("expected a non-empty range, got [%f, %f)", r.Start, r.End)
		}
	}
}

func TestDetectRejectsInvalidOptions(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec, err := ffmpeg.New(zerolog.New(os.Stderr), "", 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	d := NewDetector(exec)
	_, err = d.Detect(context.Background(), "nonexistent.mp4", Options{Threshold: 1.5}.WithDefaults())
	if err == nil {
		t.Fatal("expected a validation error for an out-of-range threshold")
	}
}
