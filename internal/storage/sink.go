// Package storage persists input and output video artifacts, behind one
// interface backed by either a local directory or an Azure Blob
// container, picked once at construction from configuration.
package storage

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/courtcut/courtcut/internal/config"
	"github.com/rs/zerolog"
)

// StoredVideo describes a persisted artifact.
type StoredVideo struct {
	Name         string
	URL          string
	DownloadURL  string
	Size         int64
	LastModified time.Time
}

// Sink is the capability every artifact store must provide. Two
// implementations exist: local disk and Azure Blob; callers depend only
// on this interface.
type Sink interface {
	SaveInput(ctx context.Context, localPath, name string) (StoredVideo, error)
	SaveOutput(ctx context.Context, localPath, name string) (StoredVideo, error)
	ListInputs(ctx context.Context) ([]StoredVideo, error)
	ListOutputs(ctx context.Context) ([]StoredVideo, error)
	OutputExists(ctx context.Context, name string) (bool, error)
	GetOutputURL(ctx context.Context, name string, asAttachment bool) (string, error)
	LocalInputDir() string
	LocalOutputDir() string
}

// New picks the blob sink when an Azure connection string is configured,
// otherwise the local-disk sink, mirroring internal/config.Load's
// read-once-construct-once-pass-down idiom.
func New(cfg *config.Config, logger zerolog.Logger) (Sink, error) {
	sc := cfg.Storage
	if sc.AzureConnectionString != "" {
		return newBlobSink(sc, logger)
	}
	return newLocalSink(sc, logger)
}

// guessContentType maps a file extension to a video MIME type. Shared
// by both sink implementations.
func guessContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "video/mp4"
	}
}
