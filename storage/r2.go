package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/princinho/eventsbackend/config"
	"github.com/samber/oops"
)

// R2Store talks to Cloudflare R2 through the S3 API.
type R2Store struct {
	S3           *s3.Client
	Bucket       string
	PublicDomain string
}

func NewR2Store(ctx context.Context, cfg config.UploadConfig) (*R2Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, oops.In("storage").Code("R2_CONFIG_FAILED").Wrapf(err, "load r2 config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Store{
		S3:           client,
		Bucket:       cfg.R2Bucket,
		PublicDomain: strings.TrimRight(cfg.R2PublicDomain, "/"),
	}, nil
}

func (r *R2Store) UploadBanner(ctx context.Context, eventSlug string, fh *multipart.FileHeader) (*Object, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, oops.In("storage").Code("BANNER_OPEN_FAILED").With("filename", fh.Filename).Wrap(err)
	}
	defer f.Close()

	objectName := bannerObjectName(eventSlug, fh.Filename)
	ct := contentType(fh)

	_, err = r.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.Bucket),
		Key:          aws.String(objectName),
		Body:         f,
		ContentType:  aws.String(ct),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return nil, oops.In("storage").Code("R2_UPLOAD_FAILED").With("object", objectName).Wrap(err)
	}

	return &Object{
		PublicURL:  r.publicURL(objectName),
		ObjectName: objectName,
		MimeType:   ct,
		SizeBytes:  fh.Size,
	}, nil
}

func (r *R2Store) Delete(ctx context.Context, objectName string) error {
	if objectName == "" {
		return nil
	}
	_, err := r.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return oops.In("storage").Code("R2_DELETE_FAILED").With("object", objectName).Wrap(err)
	}
	return nil
}

func (r *R2Store) publicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", r.PublicDomain, r.Bucket, objectName)
}
