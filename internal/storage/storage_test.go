package storage

import (
	"context"
	"strings"
	"testing"

	"cvos/coach-app/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAvatarKey(t *testing.T) {
	key := AvatarKey("abc123", "Me At The Beach.JPG")
	assert.True(t, strings.HasPrefix(key, "avatars/abc123/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.True(t, IsAvatarKeyOf(key, "abc123"))
	assert.False(t, IsAvatarKeyOf(key, "other"))
	assert.False(t, IsAvatarKeyOf("avatars/abc123/../x/y.png", "abc123"))

	assert.NotEqual(t, key, AvatarKey("abc123", "Me At The Beach.JPG"))
	assert.False(t, strings.Contains(AvatarKey("abc123", "noext"), "."))
}

func TestDisabled(t *testing.T) {
	var s FileStorage = Disabled{}
	_, err := s.GeneratePresignedUploadURL(context.Background(), "k", "image/png", 0)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.DeleteObject(context.Background(), "k"), ErrNotConfigured)
	exists, err := s.ObjectExists(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, exists)
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"", true, ""},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.example.com/", true, "https://s3.example.com"},
		{"http://localhost:9000", true, "http://localhost:9000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, endpointURL(tt.endpoint, tt.ssl), tt.endpoint)
	}
}

func TestS3PresignedUpload(t *testing.T) {
	s, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "avatars",
	}, zap.NewNop())
	require.NoError(t, err)

	url, err := s.GeneratePresignedUploadURL(context.Background(), "avatars/abc/photo.png", "image/png", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/avatars/avatars/abc/photo.png?"), url)
	assert.Contains(t, url, "X-Amz-Expires=900")
}
