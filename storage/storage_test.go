package storage

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "brackets/tournament_12.json", SnapshotKey(12))
}

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.com/public/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/public/brackets/tournament_1.json", PublicURL(base, "brackets/tournament_1.json"))
	assert.Equal(t, "https://cdn.example.com/public/a.json", PublicURL(base, "/a.json"))
	assert.Empty(t, PublicURL(base, ""))
	assert.Empty(t, PublicURL(nil, "a.json"))
}

func TestNewCloudflareR2Uploader_Config(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{})
	assert.ErrorIs(t, err, ErrStorageNotConfigured)

	_, err = NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{BucketName: "brackets"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorageNotConfigured)
}

func TestNewCloudflareR2Uploader_PublicURL(t *testing.T) {
	uploader, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "brackets",
		PublicBaseURL:   "https://pub.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://pub.example.com/brackets/tournament_3.json", uploader.GetPublicURL(SnapshotKey(3)))
}
