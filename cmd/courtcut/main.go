package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/courtcut/courtcut/internal/config"
	"github.com/courtcut/courtcut/internal/logging"
	"github.com/courtcut/courtcut/internal/motion"
	"github.com/courtcut/courtcut/internal/pipeline"
	"github.com/courtcut/courtcut/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "courtcut",
	Short: "courtcut - trims idle time out of static-camera sports footage",
	Long:  "Detects motion in static-camera sports footage and produces a single clip covering only the active play.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(trimCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe [input video]",
	Short: "Print media metadata for a video file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		pipe, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		info, err := pipe.FFmpeg().ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("duration: %s\nresolution: %dx%d\nfps: %.3f\nhas_audio: %v\n",
			info.Duration, info.Width, info.Height, info.FPS, info.HasAudio)
		return nil
	},
}

var (
	flagVideoURL         string
	flagSampleFPS        float64
	flagThreshold        float64
	flagMinSegmentLength float64
	flagPreRoll          float64
	flagPostRoll         float64
	flagSmoothingWindow  int
	flagMaxBytes         int64
	flagOutputFilename   string
)

var trimCmd = &cobra.Command{
	Use:   "trim [input video]",
	Short: "Detect motion and produce a trimmed output video",
	Long: "Runs the full pipeline: detect active-play segments by frame " +
		"differencing, then mux a single output covering only those " +
		"segments. Accepts either a local path (positional argument) or " +
		"--url for a remote video.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		pipe, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		var videoPath string
		if len(args) == 1 {
			videoPath = args[0]
		}

		params := pipeline.RunParams{
			VideoPath:      videoPath,
			VideoURL:       flagVideoURL,
			MotionOptions:  optionsFromFlags(cfg),
			MaxBytes:       flagMaxBytes,
			OutputFilename: flagOutputFilename,
		}

		result, err := pipe.Run(cmd.Context(), params)
		if err != nil {
			return err
		}

		log.Info().
			Int("segments", len(result.Segments)).
			Str("output", result.StoredOutput.Name).
			Str("output_url", result.StoredOutput.URL).
			Msg("trim complete")

		return nil
	},
}

func init() {
	trimCmd.Flags().StringVar(&flagVideoURL, "url", "", "remote video URL (alternative to the positional path argument)")
	trimCmd.Flags().Float64Var(&flagSampleFPS, "sample-fps", 0, "frames sampled per second of source time (default from config)")
	trimCmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "minimum per-frame score to count as active (default from config)")
	trimCmd.Flags().Float64Var(&flagMinSegmentLength, "min-segment-length", 0, "seconds; raw segments shorter than this are dropped (default from config)")
	trimCmd.Flags().Float64Var(&flagPreRoll, "pre-roll", 0, "seconds of padding before a surviving segment (default from config)")
	trimCmd.Flags().Float64Var(&flagPostRoll, "post-roll", 0, "seconds of padding after a surviving segment (default from config)")
	trimCmd.Flags().IntVar(&flagSmoothingWindow, "smoothing-window", 0, "rolling-average window size in samples (default from config)")
	trimCmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "maximum bytes to download for --url inputs (default 100 MiB)")
	trimCmd.Flags().StringVar(&flagOutputFilename, "output-filename", "", "output file name (default trimmed-<uuid>.mp4)")
}

// optionsFromFlags coerces the CLI's untyped flag values into
// motion.Options using the "parse float, default on NaN-or-zero" rule:
// a flag left at its zero value falls back to the configured default
// rather than being treated as an explicit zero.
func optionsFromFlags(cfg *config.Config) motion.Options {
	defaults := motion.Options{
		SampleFPS:        cfg.Motion.SampleFPS,
		Threshold:        cfg.Motion.Threshold,
		MinSegmentLength: cfg.Motion.MinSegmentLength,
		PreRoll:          cfg.Motion.PreRoll,
		PostRoll:         cfg.Motion.PostRoll,
		SmoothingWindow:  cfg.Motion.SmoothingWindow,
	}.WithDefaults()

	opts := motion.Options{
		SampleFPS:        coerceOrDefault(flagSampleFPS, defaults.SampleFPS),
		Threshold:        coerceOrDefault(flagThreshold, defaults.Threshold),
		MinSegmentLength: coerceOrDefault(flagMinSegmentLength, defaults.MinSegmentLength),
		PreRoll:          coerceOrDefault(flagPreRoll, defaults.PreRoll),
		PostRoll:         coerceOrDefault(flagPostRoll, defaults.PostRoll),
		SmoothingWindow:  flagSmoothingWindow,
	}
	if opts.SmoothingWindow <= 0 {
		opts.SmoothingWindow = defaults.SmoothingWindow
	}
	return opts
}

func coerceOrDefault(v, fallback float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return fallback
	}
	return v
}

func newPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	sink, err := storage.New(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(log.Logger, cfg, sink)
}
