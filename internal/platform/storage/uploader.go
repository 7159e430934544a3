package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/fr4ncode/order-system/internal/platform/config"
)

const maxImageSizeBytes = 10 << 20

var (
	errBucketRequired = errors.New("storage: images bucket is required")
	errClientRequired = errors.New("storage: client is required")

	// ErrContentTypeDenied is returned for uploads outside the image allowlist.
	ErrContentTypeDenied = errors.New("storage: content type not allowed")
	// ErrObjectTooLarge is returned when an upload exceeds the size cap.
	ErrObjectTooLarge = errors.New("storage: object exceeds maximum size")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadResult describes the stored object.
type UploadResult struct {
	ObjectPath  string
	PublicURL   string
	ContentType string
	SizeBytes   int64
}

// Uploader writes product images to a Cloud Storage bucket and returns a
// publicly addressable URL.
type Uploader struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	newWriter     func(ctx context.Context, objectPath, contentType string) io.WriteCloser
}

// NewUploader constructs an Uploader for the configured images bucket.
func NewUploader(client *storage.Client, cfg config.StorageConfig) (*Uploader, error) {
	if client == nil {
		return nil, errClientRequired
	}
	bucket := strings.TrimSpace(cfg.ImagesBucket)
	if bucket == "" {
		return nil, errBucketRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}

	uploader := &Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: baseURL,
	}
	uploader.newWriter = uploader.newObjectWriter
	return uploader, nil
}

func (u *Uploader) newObjectWriter(ctx context.Context, objectPath, contentType string) io.WriteCloser {
	writer := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"
	return writer
}

// UploadProductImage stores the image under products/<productID>/<imageID><ext>.
// The reader is capped at the maximum image size; oversized payloads fail
// without writing a partial object visible to readers.
func (u *Uploader) UploadProductImage(ctx context.Context, productID, imageID, contentType string, body io.Reader) (UploadResult, error) {
	if u == nil || u.newWriter == nil {
		return UploadResult{}, errClientRequired
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return UploadResult{}, ErrContentTypeDenied
	}

	objectPath := path.Join("products", productID, imageID+ext)

	// The writer only commits the object on a Close with a live context.
	// Cancelling first aborts the upload, so failed copies and oversized
	// payloads never surface a partial object.
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	writer := u.newWriter(writeCtx, objectPath, contentType)

	written, err := io.Copy(writer, io.LimitReader(body, maxImageSizeBytes+1))
	if err != nil {
		cancel()
		_ = writer.Close()
		return UploadResult{}, fmt.Errorf("storage: write object %s: %w", objectPath, err)
	}
	if written > maxImageSizeBytes {
		cancel()
		_ = writer.Close()
		return UploadResult{}, ErrObjectTooLarge
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("storage: finalize object %s: %w", objectPath, err)
	}

	return UploadResult{
		ObjectPath:  objectPath,
		PublicURL:   u.publicBaseURL + "/" + objectPath,
		ContentType: contentType,
		SizeBytes:   written,
	}, nil
}

// DeleteObject removes a previously uploaded object. Missing objects are not
// treated as an error so deletes stay idempotent.
func (u *Uploader) DeleteObject(ctx context.Context, objectPath string) error {
	if u == nil || u.client == nil {
		return errClientRequired
	}
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return nil
	}
	err := u.client.Bucket(u.bucket).Object(objectPath).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: delete object %s: %w", objectPath, err)
	}
	return nil
}
