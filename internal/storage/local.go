package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps blobs on the local filesystem, one file per blob under
// <baseDir>/<namespace>/. The opaque id is the namespace-relative path, so
// the store stays stateless.
type LocalStore struct {
	baseDir  string
	baseURL  string
	maxBytes int64
}

// ErrBlobTooLarge is returned when a Put exceeds the configured object cap.
var ErrBlobTooLarge = errors.New("blob exceeds maximum object size")

func NewLocalStore(baseDir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", baseDir, err)
	}
	return &LocalStore{
		baseDir:  baseDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

func (ls *LocalStore) Put(ctx context.Context, r io.Reader, namespace, extension string) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}

	extension = strings.TrimPrefix(extension, ".")
	name := uuid.New().String()
	if extension != "" {
		name += "." + extension
	}
	id := path.Join(namespace, name)

	target, err := ls.objectPath(id)
	if err != nil {
		return PutResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return PutResult{}, fmt.Errorf("create namespace dir: %w", err)
	}

	if err := ls.writeWithLimit(target, r); err != nil {
		return PutResult{}, err
	}

	url, err := ls.ResolveSecureURL(ctx, id)
	if err != nil {
		_ = os.Remove(target)
		return PutResult{}, err
	}
	return PutResult{ID: id, URL: url}, nil
}

func (ls *LocalStore) ResolveSecureURL(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := ls.objectPath(id); err != nil {
		return "", err
	}
	return ls.baseURL + "/" + id, nil
}

func (ls *LocalStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := ls.objectPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", id, err)
	}
	return nil
}

// objectPath maps an opaque id back to a file path, rejecting ids that
// would escape the base directory.
func (ls *LocalStore) objectPath(id string) (string, error) {
	if id == "" {
		return "", errors.New("empty blob id")
	}
	cleaned := filepath.Clean(filepath.FromSlash(id))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob id %q", id)
	}
	return filepath.Join(ls.baseDir, cleaned), nil
}

func (ls *LocalStore) writeWithLimit(target string, r io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create blob file: %w", err)
	}

	cleanup := func(err error) error {
		out.Close()
		os.Remove(target)
		return err
	}

	var total int64
	buf := make([]byte, 32*1024)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if ls.maxBytes > 0 && total > ls.maxBytes {
				return cleanup(ErrBlobTooLarge)
			}
			if _, werr := out.Write(buf[:n]); werr != nil {
				return cleanup(fmt.Errorf("write blob: %w", werr))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return cleanup(fmt.Errorf("read blob content: %w", rerr))
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("close blob file: %w", err)
	}
	return nil
}
