// Package storage implements the blob store backing DOCUMENT resources.
// Files live on local disk under a configurable directory and are keyed by
// the relative path persisted on the resource row. Validation (size and
// MIME allowlist) happens before anything is written, and a file is fully
// on disk before the corresponding database row is created.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrFileTooLarge rejects uploads above the configured limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidFileType rejects uploads outside the document allowlist.
	ErrInvalidFileType = errors.New("invalid file type, only documents are allowed")
	// ErrFileMissing is returned when a stored path no longer exists on
	// disk, e.g. removed out-of-band.
	ErrFileMissing = errors.New("file not found on server")
)

// allowedMimeTypes restricts uploads to common office/document/archive
// formats, mirroring what clients are told they can share.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":                   true,
	"application/zip":              true,
	"application/x-rar-compressed": true,
}

var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".txt": true, ".zip": true, ".rar": true,
}

// DocumentStore saves and serves uploaded document blobs.
type DocumentStore struct {
	Dir     string // base directory, created on construction
	MaxSize int64  // upload limit in bytes
}

// NewDocumentStore ensures the base directory exists and returns a store.
func NewDocumentStore(dir string, maxSize int64) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DocumentStore{Dir: dir, MaxSize: maxSize}, nil
}

// Validate checks an upload's size and type without writing anything. Both
// the declared content type and the filename extension must be on the
// allowlist; either alone is trivially spoofed.
func (s *DocumentStore) Validate(fh *multipart.FileHeader) error {
	if fh.Size > s.MaxSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return ErrInvalidFileType
	}
	ctype := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(ctype, ';'); i >= 0 {
		ctype = ctype[:i]
	}
	if ctype != "" && !allowedMimeTypes[strings.TrimSpace(ctype)] {
		return ErrInvalidFileType
	}
	return nil
}

// Save validates the upload and writes it fully to disk, returning the
// relative path to persist. The name is generated
// (<unix-nano>-<random><ext>) so uploads never collide and user-supplied
// filenames never touch the filesystem.
func (s *DocumentStore) Save(fh *multipart.FileHeader) (string, error) {
	if err := s.Validate(fh); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(suffix), ext)
	full := filepath.Join(s.Dir, name)

	dst, err := os.Create(full)
	if err != nil {
		return "", err
	}
	// LimitReader guards against a forged Content-Length slipping past the
	// size check above.
	written, err := io.Copy(dst, io.LimitReader(src, s.MaxSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.MaxSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return full, nil
}

// Open returns a reader over a stored blob. ErrFileMissing is returned
// when the path no longer resolves to a file.
func (s *DocumentStore) Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileMissing
	}
	return f, err
}

// Exists reports whether a stored blob is still on disk.
func (s *DocumentStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a stored blob. A missing file is not an error: deletes
// must stay idempotent when a blob was removed out-of-band.
func (s *DocumentStore) Remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
