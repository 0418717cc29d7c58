package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string) (string, error)
}

// NewObjectKey builds a collision-free key for an attorney's upload:
// training/<attorneyID>/<segment>/<uuid>-<fileName>.
func NewObjectKey(attorneyID, segment, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("training/%s/%s/%s-%s", attorneyID, segment, uuid.NewString(), name)
}

// IsOwnedKey reports whether the key lives under the attorney's prefix.
func IsOwnedKey(attorneyID, key string) bool {
	return strings.HasPrefix(key, "training/"+attorneyID+"/")
}
