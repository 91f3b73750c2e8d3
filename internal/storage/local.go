package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/courtcut/courtcut/internal/config"
	"github.com/courtcut/courtcut/internal/courterr"
	"github.com/courtcut/courtcut/pkg/util"
	"github.com/rs/zerolog"
)

// localSink persists artifacts under <base>/inputs and <base>/processed,
// returning relative URLs a front-end can serve as static files.
type localSink struct {
	base      string
	inputDir  string
	outputDir string
	logger    zerolog.Logger
}

func newLocalSink(sc config.StorageConfig, logger zerolog.Logger) (*localSink, error) {
	base := sc.UploadsDir
	if base == "" {
		base = "./uploads"
	}

	s := &localSink{
		base:      base,
		inputDir:  filepath.Join(base, "inputs"),
		outputDir: filepath.Join(base, "processed"),
		logger:    logger.With().Str("component", "storage.local").Logger(),
	}

	if err := util.EnsureDir(s.inputDir); err != nil {
		return nil, &courterr.StorageError{Op: "ensure input dir", Err: err}
	}
	if err := util.EnsureDir(s.outputDir); err != nil {
		return nil, &courterr.StorageError{Op: "ensure output dir", Err: err}
	}

	return s, nil
}

func (s *localSink) LocalInputDir() string  { return s.inputDir }
func (s *localSink) LocalOutputDir() string { return s.outputDir }

func (s *localSink) SaveInput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(localPath, name, s.inputDir, "inputs")
}

func (s *localSink) SaveOutput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(localPath, name, s.outputDir, "processed")
}

func (s *localSink) save(localPath, name, dir, urlPrefix string) (StoredVideo, error) {
	target := filepath.Join(dir, name)

	if abs(localPath) != abs(target) {
		if err := copyFile(localPath, target); err != nil {
			return StoredVideo{}, &courterr.StorageError{Op: "copy artifact", Err: err}
		}
	}

	info, err := os.Stat(target)
	if err != nil {
		return StoredVideo{}, &courterr.StorageError{Op: "stat saved artifact", Err: err}
	}

	url := "/uploads/" + urlPrefix + "/" + name
	s.logger.Info().Str("name", name).Str("url", url).Msg("artifact saved")

	return StoredVideo{
		Name:         name,
		URL:          url,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

func (s *localSink) ListInputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(s.inputDir, "inputs")
}

func (s *localSink) ListOutputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(s.outputDir, "processed")
}

func (s *localSink) list(dir, urlPrefix string) ([]StoredVideo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &courterr.StorageError{Op: "list directory", Err: err}
	}

	var out []StoredVideo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, StoredVideo{
			Name:         e.Name(),
			URL:          "/uploads/" + urlPrefix + "/" + e.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *localSink) OutputExists(ctx context.Context, name string) (bool, error) {
	return util.FileExists(filepath.Join(s.outputDir, name)), nil
}

func (s *localSink) GetOutputURL(ctx context.Context, name string, asAttachment bool) (string, error) {
	if !util.FileExists(filepath.Join(s.outputDir, name)) {
		return "", &courterr.StorageError{Op: "get output url", Err: os.ErrNotExist}
	}
	return "/uploads/processed/" + name, nil
}

func abs(path string) string {
	a, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return a
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
