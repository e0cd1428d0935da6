package storage

import (
	"context"
	"fmt"
	"io"
)

type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	ETag     string `json:"etag,omitempty"`
}

// FileUploader stores published bracket snapshots in object storage.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// SnapshotKey is the object key of a tournament's published bracket.
func SnapshotKey(tournamentID int) string {
	return fmt.Sprintf("brackets/tournament_%d.json", tournamentID)
}
