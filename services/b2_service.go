package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"

	"nimbusdrive/apperrors"
)

// BlobStore is the storage backend for file contents. File metadata lives in
// Mongo; the bytes live behind a storage key that only the services see.
type BlobStore interface {
	Upload(ctx context.Context, identity, filename string, contents io.Reader) (*BlobInfo, error)
	SignedURL(ctx context.Context, storageKey string, duration time.Duration) (string, error)
	Delete(ctx context.Context, storageKey string) error
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	StorageKey string
	Size       int64
	SHA1       string
}

const (
	// DownloadURLTTL is how long a signed download URL stays valid.
	DownloadURLTTL = 24 * time.Hour
	// PreviewURLTTL is the shorter validity for inline preview URLs.
	PreviewURLTTL = 1 * time.Hour
)

type B2Service struct {
	client     *b2.Client
	bucketName string
	bucket     *b2.Bucket
}

func NewB2Service(keyID, applicationKey, bucketName string) (*B2Service, error) {
	ctx := context.Background()

	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &B2Service{
		client:     client,
		bucketName: bucketName,
		bucket:     bucket,
	}, nil
}

// Upload streams contents into the bucket under a collision-free key and
// returns the key, size, and content hash. The hash is computed on the same
// pass as the upload so nothing is buffered in memory.
func (s *B2Service) Upload(ctx context.Context, identity, filename string, contents io.Reader) (*BlobInfo, error) {
	storageKey := fmt.Sprintf("users/%s/%s%s", identity, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))

	obj := s.bucket.Object(storageKey)
	writer := obj.NewWriter(ctx)

	hasher := sha1.New()
	written, err := io.Copy(io.MultiWriter(writer, hasher), contents)
	if err != nil {
		writer.Close()
		return nil, apperrors.Internal("upload blob", err)
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.Internal("finalize blob upload", err)
	}

	return &BlobInfo{
		StorageKey: storageKey,
		Size:       written,
		SHA1:       hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// SignedURL generates a time-limited GET URL for a private object.
func (s *B2Service) SignedURL(ctx context.Context, storageKey string, duration time.Duration) (string, error) {
	obj := s.bucket.Object(storageKey)

	urlObj, err := obj.AuthURL(ctx, duration, "GET")
	if err != nil {
		return "", apperrors.Internal("sign download URL", err)
	}
	return urlObj.String(), nil
}

func (s *B2Service) Delete(ctx context.Context, storageKey string) error {
	obj := s.bucket.Object(storageKey)

	if err := obj.Delete(ctx); err != nil {
		return apperrors.Internal("delete blob", err)
	}
	return nil
}
