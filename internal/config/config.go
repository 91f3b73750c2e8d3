package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration: static defaults loaded
// once from YAML, plus the storage configuration read once from the
// environment at startup and carried from then on as a dependency.
type Config struct {
	WorkDir     string `yaml:"work_dir"`
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	FFmpeg FFmpegConfig   `yaml:"ffmpeg"`
	Motion MotionDefaults `yaml:"motion"`

	Storage StorageConfig `yaml:"-"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
}

// MotionDefaults mirrors motion.Options; kept here so a YAML file can
// override detector defaults without the motion package knowing
// anything about file parsing.
type MotionDefaults struct {
	SampleFPS        float64 `yaml:"sample_fps"`
	Threshold        float64 `yaml:"threshold"`
	MinSegmentLength float64 `yaml:"min_segment_length"`
	PreRoll          float64 `yaml:"pre_roll"`
	PostRoll         float64 `yaml:"post_roll"`
	SmoothingWindow  int     `yaml:"smoothing_window"`
}

// StorageConfig is read once from the environment by Load.
type StorageConfig struct {
	AzureConnectionString string
	AzureContainer        string
	AzureInputFolder      string
	AzureOutputFolder     string
	UploadsDir            string
	SignedURLTTL          time.Duration
}

// Load reads configuration from a YAML file (static defaults) and from
// the environment (storage settings), falling back to defaults whenever
// a source is absent.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Storage = loadStorageConfigFromEnv()

	return cfg, nil
}

// Save writes the static (non-environment) part of configuration to file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "./work",
		TempDir:     "",
		Concurrency: 4,
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
		},
		Motion: MotionDefaults{
			SampleFPS:        2,
			Threshold:        0.02,
			MinSegmentLength: 3,
			PreRoll:          1,
			PostRoll:         1,
			SmoothingWindow:  3,
		},
	}
}

func loadStorageConfigFromEnv() StorageConfig {
	sc := StorageConfig{
		AzureConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
		AzureContainer:        getenvDefault("AZURE_STORAGE_CONTAINER", "volleyball-videos"),
		AzureInputFolder:      getenvDefault("AZURE_STORAGE_INPUT_FOLDER", "inputs"),
		AzureOutputFolder:     getenvDefault("AZURE_STORAGE_OUTPUT_FOLDER", "processed"),
		UploadsDir:            getenvDefault("UPLOADS_DIR", "./uploads"),
		SignedURLTTL:          60 * time.Minute,
	}
	if ttl := os.Getenv("AZURE_STORAGE_SIGNED_URL_MINUTES"); ttl != "" {
		if minutes, err := strconv.Atoi(ttl); err == nil && minutes > 0 {
			sc.SignedURLTTL = time.Duration(minutes) * time.Minute
		}
	}
	return sc
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".courtcut", "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// WithConfig stores config in context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context, falling back to defaults.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
