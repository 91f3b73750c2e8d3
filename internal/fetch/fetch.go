// Package fetch streams a remote video to local disk under strict
// scheme, content-type, redirect, and size limits, the way a caller
// handing the pipeline a videoUrl instead of a local path needs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/courtcut/courtcut/internal/courterr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxBytes is used when Fetch is given a maxBytes of zero or less
// (e.g. RunParams.MaxBytes left unset).
const DefaultMaxBytes = 100 * 1024 * 1024

const maxRedirects = 2

// defaultDialTimeout bounds a single connection attempt; callers that
// need a different value construct a Fetcher with NewWithTimeout.
const defaultDialTimeout = 30 * time.Second

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
}

var allowedContentTypePrefixes = []string{"video/"}

var allowedExactContentTypes = map[string]bool{
	"application/octet-stream": true,
}

// Fetcher downloads remote video files under size, scheme, and content
// type limits.
type Fetcher struct {
	client *http.Client
	logger zerolog.Logger
}

// New builds a Fetcher with the default 30s per-connection timeout.
func New(logger zerolog.Logger) *Fetcher {
	return NewWithTimeout(logger, defaultDialTimeout)
}

// NewWithTimeout builds a Fetcher whose HTTP client will not wait past
// timeout for a single connection, and which refuses to follow more
// than two redirects.
func NewWithTimeout(logger zerolog.Logger, timeout time.Duration) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout}).DialContext
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		logger: logger.With().Str("component", "fetch").Logger(),
	}
}

// Fetch streams rawURL into destDir under a generated filename, rejecting
// any response outside the scheme/type/size rules, and returns the local
// path. On any failure it deletes whatever partial file it created.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, destDir string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", courterr.NewDownloadError(courterr.DownloadScheme, http.StatusBadRequest, "url scheme must be http or https", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", courterr.NewDownloadError(courterr.DownloadNetwork, http.StatusBadRequest, "building request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "stopped after") {
			return "", courterr.NewDownloadError(courterr.DownloadRedirect, http.StatusBadGateway, "too many redirects", err)
		}
		return "", courterr.NewDownloadError(courterr.DownloadNetwork, http.StatusBadGateway, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", courterr.NewDownloadError(courterr.DownloadHTTP, resp.StatusCode, fmt.Sprintf("server returned %d", resp.StatusCode), nil)
	}

	contentType := resp.Header.Get("Content-Type")
	if semi := strings.Index(contentType, ";"); semi >= 0 {
		contentType = contentType[:semi]
	}
	contentType = strings.TrimSpace(contentType)

	ext := extensionFromURL(parsed)
	if !isAllowedContentType(contentType, ext) {
		return "", courterr.NewDownloadError(courterr.DownloadType, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported content type %q", contentType), nil)
	}

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > maxBytes {
			return "", courterr.NewDownloadError(courterr.DownloadSize, http.StatusRequestEntityTooLarge, "declared content-length exceeds limit", nil)
		}
	}

	if ext == "" {
		ext = extensionFromContentType(contentType)
	}

	destPath := filepath.Join(destDir, fmt.Sprintf("remote-%s%s", uuid.NewString(), ext))

	out, err := os.Create(destPath)
	if err != nil {
		return "", courterr.NewDownloadError(courterr.DownloadNetwork, http.StatusInternalServerError, "creating destination file", err)
	}

	written, copyErr := io.Copy(out, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := out.Close()

	if copyErr == nil && written > maxBytes {
		os.Remove(destPath)
		return "", courterr.NewDownloadError(courterr.DownloadSize, http.StatusRequestEntityTooLarge, "response body exceeds limit", nil)
	}
	if copyErr != nil {
		os.Remove(destPath)
		return "", courterr.NewDownloadError(courterr.DownloadNetwork, http.StatusBadGateway, "streaming body", copyErr)
	}
	if closeErr != nil {
		os.Remove(destPath)
		return "", courterr.NewDownloadError(courterr.DownloadNetwork, http.StatusInternalServerError, "closing destination file", closeErr)
	}

	f.logger.Info().
		Str("url", rawURL).
		Str("dest", destPath).
		Int64("bytes", written).
		Msg("download complete")

	return destPath, nil
}

func extensionFromURL(u *url.URL) string {
	ext := strings.ToLower(filepath.Ext(u.Path))
	if allowedExtensions[ext] {
		return ext
	}
	return ""
}

func extensionFromContentType(contentType string) string {
	switch contentType {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "video/x-msvideo":
		return ".avi"
	default:
		return ".mp4"
	}
}

func isAllowedContentType(contentType, urlExt string) bool {
	for _, prefix := range allowedContentTypePrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	if allowedExactContentTypes[contentType] {
		return urlExt != ""
	}
	return false
}
