package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"strings"

	"fitgenius/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PhotoStore keeps meal photos and returns their object keys.
type PhotoStore interface {
	Put(ctx context.Context, dataURL string) (string, error)
	Enabled() bool
}

// s3PutObjectAPI is the part of the S3 client the store uses.
type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3PhotoStore struct {
	client s3PutObjectAPI
	bucket string
	prefix string
}

// NewS3PhotoStore builds an S3-backed store from the storage config.
func NewS3PhotoStore(ctx context.Context, cfg config.StorageConfig) (PhotoStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: storage.bucket is empty", ErrInvalidInput)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for S3: %w", err)
	}
	return newS3PhotoStore(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
}

func newS3PhotoStore(client s3PutObjectAPI, bucket, prefix string) PhotoStore {
	return &s3PhotoStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *s3PhotoStore) Enabled() bool { return true }

// DecodeDataURL splits a "data:<mime>;base64,<data>" URL into its content
// type, a file extension and the decoded bytes.
func DecodeDataURL(dataURL string) (string, string, []byte, error) {
	meta, data, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return "", "", nil, fmt.Errorf("%w: photo must be a base64 data URL", ErrInvalidInput)
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", nil, fmt.Errorf("%w: unsupported photo type '%s'", ErrInvalidInput, contentType)
	}

	var ext string
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = "." + strings.TrimPrefix(contentType, "image/")
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: failed to decode photo: %v", ErrInvalidInput, err)
	}
	return contentType, ext, raw, nil
}

func (s *s3PhotoStore) Put(ctx context.Context, dataURL string) (string, error) {
	contentType, ext, raw, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	key := uuid.NewString() + ext
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("ERROR: [PhotoStore] Failed to upload %s to bucket %s: %v", key, s.bucket, err)
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	log.Printf("INFO: [PhotoStore] Stored %d bytes as %s.", len(raw), key)
	return key, nil
}

type disabledPhotoStore struct{}

// NewDisabledPhotoStore returns a store that rejects every photo.
func NewDisabledPhotoStore() PhotoStore {
	return disabledPhotoStore{}
}

func (disabledPhotoStore) Put(context.Context, string) (string, error) {
	return "", ErrPhotoStorageDisabled
}

func (disabledPhotoStore) Enabled() bool { return false }
