// Package storage contains the remote backends uploaded files are written to
package storage

import (
	"citricloud/backend/config"
	"context"
	"fmt"
	"io"
)

// Backend writes a single object to remote storage. Every call opens and
// releases its own session.
type Backend interface {
	// Put creates dir if needed, writes r to dir/name and returns the
	// remote path of the written object
	Put(ctx context.Context, dir, name string, r io.Reader) (string, error)
}

// New returns the backend selected by storage.type
func New(ctx context.Context, c *config.Config) (Backend, error) {
	switch c.Storage.Type {
	case "sftp":
		return NewSFTP(c.StorageBox)
	case "s3":
		return NewS3(ctx, c.S3)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
}
