// Package pipeline wires the motion detector, the trim muxer, the
// remote fetcher, and the storage sink into the single Run entry point
// that is this repository's reason to exist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/courtcut/courtcut/internal/config"
	"github.com/courtcut/courtcut/internal/courterr"
	"github.com/courtcut/courtcut/internal/fetch"
	"github.com/courtcut/courtcut/internal/ffmpeg"
	"github.com/courtcut/courtcut/internal/motion"
	"github.com/courtcut/courtcut/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pipeline orchestrates a single trim run end to end: resolve input
// (local path or URL), persist it, detect motion segments, mux the
// trimmed output, persist that, and clean up on any failure.
type Pipeline struct {
	logger   zerolog.Logger
	storage  storage.Sink
	ffmpeg   *ffmpeg.Executor
	fetcher  *fetch.Fetcher
	detector *motion.Detector
}

// New builds a Pipeline around an already-constructed storage sink,
// sharing one ffmpeg executor across however many runs the caller makes.
func New(logger zerolog.Logger, cfg *config.Config, sink storage.Sink) (*Pipeline, error) {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		storage:  sink,
		ffmpeg:   exec,
		fetcher:  fetch.New(logger),
		detector: motion.NewDetector(exec),
	}, nil
}

// FFmpeg exposes the pipeline's shared executor for callers that only
// need to probe a file (e.g. the CLI's probe subcommand) without
// running a full trim.
func (p *Pipeline) FFmpeg() *ffmpeg.Executor {
	return p.ffmpeg
}

// Run resolves the input, detects active-play segments, muxes the
// trimmed output, and persists both artifacts.
func (p *Pipeline) Run(ctx context.Context, params RunParams) (*Result, error) {
	p.logger.Info().
		Str("video_path", params.VideoPath).
		Str("video_url", params.VideoURL).
		Msg("starting pipeline run")

	path := params.VideoPath
	var downloadedPath string

	if path == "" && params.VideoURL != "" {
		stagingDir := p.stagingInputDir()
		downloaded, err := p.fetcher.Fetch(ctx, params.VideoURL, stagingDir, params.MaxBytes)
		if err != nil {
			return nil, err
		}
		path = downloaded
		downloadedPath = downloaded
	}

	if path == "" {
		return nil, courterr.NewDownloadError(courterr.DownloadNetwork, http.StatusBadRequest, "no video provided", nil)
	}

	cleanupOnFailure := func() {
		if downloadedPath != "" {
			os.Remove(downloadedPath)
		}
	}

	storedInput, err := p.storage.SaveInput(ctx, path, filepath.Base(path))
	if err != nil {
		cleanupOnFailure()
		return nil, &courterr.PipelineError{Err: err}
	}
	// The downloaded file is now storage-owned; the orchestrator no
	// longer deletes it itself on later failures.
	downloadedPath = ""

	segments, err := p.detector.Detect(ctx, path, params.MotionOptions)
	if err != nil {
		var noSegs *courterr.NoSegmentsError
		if errors.As(err, &noSegs) {
			return nil, err
		}
		return nil, &courterr.PipelineError{Err: err}
	}

	outputName := params.OutputFilename
	if outputName == "" {
		outputName = fmt.Sprintf("trimmed-%s.mp4", uuid.NewString())
	}
	outputPath := filepath.Join(p.stagingOutputDir(), outputName)

	trimSegments := make([]ffmpeg.TrimSegment, len(segments))
	for i, s := range segments {
		trimSegments[i] = ffmpeg.TrimSegment{
			Start: secondsToDuration(s.Start),
			End:   secondsToDuration(s.End),
		}
	}

	if err := p.ffmpeg.Trim(ctx, path, trimSegments, outputPath); err != nil {
		os.Remove(outputPath)
		return nil, &courterr.PipelineError{Err: err}
	}

	storedOutput, err := p.storage.SaveOutput(ctx, outputPath, outputName)
	if err != nil {
		os.Remove(outputPath)
		return nil, &courterr.PipelineError{Err: err}
	}

	p.logger.Info().
		Int("segments", len(segments)).
		Str("output", storedOutput.Name).
		Msg("pipeline run complete")

	return &Result{
		Segments:     segments,
		StoredInput:  &storedInput,
		StoredOutput: storedOutput,
	}, nil
}

// stagingInputDir returns the directory downloaded/staged input files
// land in before SaveInput takes ownership: the sink's own input
// directory when it has one (local mode), otherwise the OS temp dir
// (blob mode, where SaveInput uploads the file and the staging copy is
// left where it is).
func (p *Pipeline) stagingInputDir() string {
	if dir := p.storage.LocalInputDir(); dir != "" {
		return dir
	}
	return os.TempDir()
}

func (p *Pipeline) stagingOutputDir() string {
	if dir := p.storage.LocalOutputDir(); dir != "" {
		return dir
	}
	return os.TempDir()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
