package matchtypes

import (
	"context"
	"io"
)

// StorageService defines file storage operations for avatar uploads.
// The interface lives in matchtypes to break the cycle between the
// storage and services packages.
type StorageService interface {
	// UploadFile stores the reader's content and returns the resulting
	// FileInfo, including the URL the file can be fetched from.
	UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*FileInfo, error)
}
