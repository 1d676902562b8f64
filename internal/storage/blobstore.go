// Package storage holds the blob store contract the attachment manager
// coordinates with, plus the shipped adapters. The engine only distinguishes
// a successful call from a terminal failure; retries and timeouts belong to
// the adapter.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned when a blob id resolves to nothing.
var ErrBlobNotFound = errors.New("blob not found")

// PutResult is the handle a store returns for freshly written bytes. ID is
// the opaque identifier every later call uses; URL is the secure retrieval
// URL when the store can produce one at write time. Adapters that cannot
// leave URL empty and callers fall back to ResolveSecureURL.
type PutResult struct {
	ID  string
	URL string
}

type BlobStore interface {
	// Put streams bytes into the store under the given namespace, naming
	// the object with the declared extension.
	Put(ctx context.Context, r io.Reader, namespace, extension string) (PutResult, error)

	// ResolveSecureURL returns a stable retrieval URL for a stored blob.
	ResolveSecureURL(ctx context.Context, id string) (string, error)

	// Delete removes a blob. Deleting an already-absent blob is not an
	// error, so reconciliation retries stay idempotent.
	Delete(ctx context.Context, id string) error
}
