package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/courtcut/courtcut/internal/config"
	"github.com/rs/zerolog"
)

func newTestLocalSink(t *testing.T) *localSink {
	t.Helper()
	dir := t.TempDir()
	s, err := newLocalSink(config.StorageConfig{UploadsDir: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("newLocalSink failed: %v", err)
	}
	return s
}

func TestLocalSinkCreatesDirectories(t *testing.T) {
	s := newTestLocalSink(t)

	if _, err := os.Stat(s.LocalInputDir()); err != nil {
		t.Errorf("expected input dir to exist: %v", err)
	}
	if _, err := os.Stat(s.LocalOutputDir()); err != nil {
		t.Errorf("expected output dir to exist: %v", err)
	}
}

func TestLocalSinkSaveInputCopiesFile(t *testing.T) {
	s := newTestLocalSink(t)

	src := filepath.Join(t.TempDir(), "source.mp4")
	if err := os.WriteFile(src, []byte("video bytes"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	stored, err := s.SaveInput(context.Background(), src, "source.mp4")
	if err != nil {
		t.Fatalf("SaveInput failed: %v", err)
	}
	if stored.URL != "/uploads/inputs/source.mp4" {
		t.Errorf("unexpected url: %s", stored.URL)
	}
	if stored.Size != int64(len("video bytes")) {
		t.Errorf("unexpected size: %d", stored.Size)
	}

	if _, err := os.Stat(filepath.Join(s.LocalInputDir(), "source.mp4")); err != nil {
		t.Errorf("expected file to be copied into input dir: %v", err)
	}
}

func TestLocalSinkSaveInputSkipsCopyWhenAlreadyInPlace(t *testing.T) {
	s := newTestLocalSink(t)

	target := filepath.Join(s.LocalInputDir(), "already-there.mp4")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := s.SaveInput(context.Background(), target, "already-there.mp4"); err != nil {
		t.Fatalf("SaveInput failed: %v", err)
	}
}

func TestLocalSinkOutputExists(t *testing.T) {
	s := newTestLocalSink(t)

	exists, err := s.OutputExists(context.Background(), "missing.mp4")
	if err != nil {
		t.Fatalf("OutputExists failed: %v", err)
	}
	if exists {
		t.Error("expected missing.mp4 to not exist")
	}

	src := filepath.Join(t.TempDir(), "out.mp4")
	os.WriteFile(src, []byte("data"), 0644)
	if _, err := s.SaveOutput(context.Background(), src, "out.mp4"); err != nil {
		t.Fatalf("SaveOutput failed: %v", err)
	}

	exists, err = s.OutputExists(context.Background(), "out.mp4")
	if err != nil {
		t.Fatalf("OutputExists failed: %v", err)
	}
	if !exists {
		t.Error("expected out.mp4 to exist after SaveOutput")
	}
}

func TestLocalSinkListOutputs(t *testing.T) {
	s := newTestLocalSink(t)

	for _, name := range []string{"b.mp4", "a.mp4"} {
		src := filepath.Join(t.TempDir(), name)
		os.WriteFile(src, []byte("data"), 0644)
		if _, err := s.SaveOutput(context.Background(), src, name); err != nil {
			t.Fatalf("SaveOutput failed: %v", err)
		}
	}

	list, err := s.ListOutputs(context.Background())
	if err != nil {
		t.Fatalf("ListOutputs failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(list))
	}
	if list[0].Name != "a.mp4" || list[1].Name != "b.mp4" {
		t.Errorf("expected outputs sorted by name, got %v", list)
	}
}

func TestGuessContentType(t *testing.T) {
	cases := map[string]string{
		"clip.webm": "video/webm",
		"clip.mov":  "video/quicktime",
		"clip.avi":  "video/x-msvideo",
		"clip.mp4":  "video/mp4",
		"clip":      "video/mp4",
	}
	for name, want := range cases {
		if got := guessContentType(name); got != want {
			t.Errorf("guessContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
