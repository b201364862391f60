package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrNotConfigured is returned by Disabled for every operation.
var ErrNotConfigured = errors.New("object storage is not configured")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error

	// ObjectExists reports whether an object was uploaded under objectKey.
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
}

// AvatarKey builds avatars/<profileID>/<uuid><ext>. The extension of the
// uploaded file name is kept, lowercased.
func AvatarKey(profileID, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	return fmt.Sprintf("avatars/%s/%s%s", profileID, uuid.NewString(), ext)
}

// IsAvatarKeyOf reports whether key lives under the profile's avatar prefix.
func IsAvatarKeyOf(key, profileID string) bool {
	return strings.HasPrefix(key, "avatars/"+profileID+"/") && !strings.Contains(key, "..")
}

// Disabled is used when no bucket is configured.
type Disabled struct{}

func (Disabled) GeneratePresignedUploadURL(context.Context, string, string, time.Duration) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) GeneratePresignedDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) DeleteObject(context.Context, string) error {
	return ErrNotConfigured
}

func (Disabled) ObjectExists(context.Context, string) (bool, error) {
	return false, ErrNotConfigured
}
