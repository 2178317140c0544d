package storage

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/princinho/eventsbackend/config"
	"github.com/samber/oops"
)

// Object describes an uploaded file.
type Object struct {
	PublicURL  string
	ObjectName string
	MimeType   string
	SizeBytes  int64
}

// BannerStore uploads and removes event banner images.
type BannerStore interface {
	UploadBanner(ctx context.Context, eventSlug string, fh *multipart.FileHeader) (*Object, error)
	Delete(ctx context.Context, objectName string) error
}

// New picks the upload backend named by cfg.Provider. A nil store means uploads are disabled.
func New(ctx context.Context, cfg config.UploadConfig) (BannerStore, error) {
	switch cfg.Provider {
	case config.UploadR2:
		store, err := NewR2Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.UploadGCS:
		store, err := NewGCSStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.UploadNone, "":
		return nil, nil
	}
	return nil, oops.In("storage").Code("UNKNOWN_UPLOAD_PROVIDER").With("provider", cfg.Provider).Errorf("unknown upload provider %q", cfg.Provider)
}

func bannerObjectName(eventSlug, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	if eventSlug == "" {
		eventSlug = "event"
	}
	return fmt.Sprintf("banners/%s/%d-%s%s", eventSlug, time.Now().UTC().Unix(), uuid.New().String(), ext)
}

func contentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}
