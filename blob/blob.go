// Package blob stores uploaded and generated images. Keys are slash
// separated relative paths such as "uploads/team-photo.jpg".
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no object exists under a key.
	ErrNotFound = errors.New("blob: object not found")
	// ErrExists is returned by Put when the key is already taken.
	ErrExists = errors.New("blob: object already exists")
)

// Object describes a stored object.
type Object struct {
	Key         string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Store is implemented by the filesystem and S3 backends.
type Store interface {
	// Put writes r under key. It fails with ErrExists rather than
	// overwriting.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Object, error)
	// Open returns the object's content. Callers close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, Object, error)
	// Exists reports whether key is taken.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns the objects under prefix sorted by key.
	List(ctx context.Context, prefix string) ([]Object, error)
}

// CleanKey rejects empty, absolute and escaping keys and returns the
// normalised form.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("blob: empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("blob: invalid key %q", key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("blob: invalid key %q", key)
	}
	return clean, nil
}

// UniqueKey returns key, or key with -2, -3, ... inserted before the
// extension, whichever is free first.
func UniqueKey(ctx context.Context, s Store, key string) (string, error) {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	candidate := key
	for n := 2; ; n++ {
		taken, err := s.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
}
