// Package attachments stores files uploaded with entries, either on the
// local disk or in an S3-compatible bucket.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/google/uuid"
)

// Store persists attachment payloads under storage keys.
type Store interface {
	// Put writes body under key.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	// URL returns a link the browser can follow to download key.
	URL(ctx context.Context, key string) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for keys that could escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// NewKey returns a fresh storage key for a file named filename uploaded at t:
// entries/<yyyy>/<m>/<d>/<uuid><ext>.
func NewKey(filename string, t time.Time) string {
	return fmt.Sprintf("entries/%d/%d/%d/%v%s", t.Year(), t.Month(), t.Day(), uuid.New(), cleanExt(filename))
}

func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// ValidKey reports whether key is a relative, clean, slash-separated path.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	if path.Clean(key) != key {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return false
		}
	}
	return true
}

// New builds the store selected by cfg.AttachmentBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.AttachmentBackend {
	case config.AttachmentsDisk:
		return NewDiskStore(cfg.UploadDir, "/files/")
	case config.AttachmentsS3:
		return NewS3Store(ctx, S3Options{
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown attachment backend %q", cfg.AttachmentBackend)
	}
}
