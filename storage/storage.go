// Package storage holds the audio blob backends. Uploaded cue files go to
// local disk by default or to MinIO when an endpoint is configured; the
// manifest only ever stores the object name and the public URL.
package storage

import (
	"context"
	"io"
)

// Provider stores and removes uploaded audio blobs.
type Provider interface {
	// Save stores the blob under objectName and returns the URL it will be
	// served from.
	Save(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the blob. Removing an absent object is not an error.
	Remove(ctx context.Context, objectName string) error
}
