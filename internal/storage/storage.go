package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// StorageClient is the interface for generated-document storage.
// Both GCS and Local storage implementations must implement this interface.
type StorageClient interface {
	UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error)
	DeleteFile(ctx context.Context, objectName string) error
	ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
	GetSignedURL(objectName string, expiry time.Duration) (string, error)
	Close() error
}

// UploadResult contains the result of an upload operation
type UploadResult struct {
	ObjectName string `json:"object_name"`
	PublicURL  string `json:"public_url"`
	Size       int64  `json:"size"`
}

// GenerateDocumentObjectName builds the storage path for one output
// file of a generation event. Keyed by organization and case so tenant
// cleanup stays a prefix operation.
func GenerateDocumentObjectName(orgID, caseID, runningNumber, filename string) string {
	return fmt.Sprintf("documents/%s/%s/%s/%s", orgID, caseID, runningNumber, filename)
}
