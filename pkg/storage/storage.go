// Package storage abstracts where enrollment audio artifacts live.
//
// Every successful enrollment writes the canonical recording as a WAV
// artifact named after the speaker id. The reconciliation path reads
// these artifacts back when the speaker database and the artifacts have
// diverged (for example, the database blob was lost but the recordings
// survive), so the backend must support enumeration, not just reads.
//
// Implementations: [Local] for on-disk artifacts next to the database
// blob, and [S3] for S3-compatible object stores.
package storage

import (
	"context"
	"io"
)

// FileStore is the interface to artifact storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading. If the file does not
	// exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating any existing
	// content. Parent directories are created as needed. The returned
	// WriteCloser must be closed to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting an absent file is not an
	// error (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths of all files whose name starts with
	// prefix, in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ReadAll reads the whole named file from the store.
func ReadAll(ctx context.Context, fs FileStore, path string) ([]byte, error) {
	rc, err := fs.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// WriteAll writes data as the whole content of the named file.
func WriteAll(ctx context.Context, fs FileStore, path string, data []byte) error {
	wc, err := fs.Write(ctx, path)
	if err != nil {
		return err
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
