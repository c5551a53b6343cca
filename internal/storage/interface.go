package storage

import (
	"context"
	"mime/multipart"
)

// MediaUploader stores user media and returns where it can be fetched.
// Handlers depend on this interface so tests can swap in a fake.
type MediaUploader interface {
	Upload(ctx context.Context, kind Kind, userID string, file multipart.File, header *multipart.FileHeader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// Ensure S3Uploader implements MediaUploader
var _ MediaUploader = (*S3Uploader)(nil)
