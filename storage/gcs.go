package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
	"github.com/princinho/eventsbackend/config"
	"github.com/samber/oops"
	"google.golang.org/api/option"
)

type GCSStore struct {
	Client *gcs.Client
	Bucket string
}

func NewGCSStore(ctx context.Context, cfg config.UploadConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		path := cfg.CredentialsFile
		if !filepath.IsAbs(path) {
			wd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(wd, path)
		}
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, path))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, oops.In("storage").Code("GCS_CLIENT_FAILED").Wrapf(err, "create gcs client")
	}
	return &GCSStore{Client: client, Bucket: cfg.GCSBucket}, nil
}

func (g *GCSStore) UploadBanner(ctx context.Context, eventSlug string, fh *multipart.FileHeader) (*Object, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, oops.In("storage").Code("BANNER_OPEN_FAILED").With("filename", fh.Filename).Wrap(err)
	}
	defer f.Close()

	objectName := bannerObjectName(eventSlug, fh.Filename)
	ct := contentType(fh)

	w := g.Client.Bucket(g.Bucket).Object(objectName).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = ct
	w.CacheControl = "no-cache"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return nil, oops.In("storage").Code("GCS_UPLOAD_FAILED").With("object", objectName).Wrap(err)
	}
	if err := w.Close(); err != nil {
		return nil, oops.In("storage").Code("GCS_UPLOAD_FAILED").With("object", objectName).Wrap(err)
	}

	return &Object{
		PublicURL:  fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.Bucket, objectName),
		ObjectName: objectName,
		MimeType:   ct,
		SizeBytes:  fh.Size,
	}, nil
}

func (g *GCSStore) Delete(ctx context.Context, objectName string) error {
	if objectName == "" {
		return nil
	}
	if err := g.Client.Bucket(g.Bucket).Object(objectName).Delete(ctx); err != nil {
		return oops.In("storage").Code("GCS_DELETE_FAILED").With("object", objectName).Wrap(err)
	}
	return nil
}
