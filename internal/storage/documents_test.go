package storage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadHeader builds a *multipart.FileHeader the way echo would hand one
// to a handler.
func uploadHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(int64(len(data)) + 4096)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func newTestStore(t *testing.T, maxSize int64) *DocumentStore {
	t.Helper()
	s, err := NewDocumentStore(t.TempDir(), maxSize)
	require.NoError(t, err)
	return s
}

func TestSaveStoresBlobWithGeneratedName(t *testing.T) {
	s := newTestStore(t, 1024)
	fh := uploadHeader(t, "notes.txt", "text/plain", []byte("reading list"))

	path, err := s.Save(fh)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, s.Dir))
	assert.NotContains(t, filepath.Base(path), "notes") // user filename never reused
	assert.Equal(t, ".txt", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("reading list"), data)
	assert.True(t, s.Exists(path))
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	s := newTestStore(t, 8)
	fh := uploadHeader(t, "big.pdf", "application/pdf", bytes.Repeat([]byte("x"), 64))

	_, err := s.Save(fh)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, readErr := os.ReadDir(s.Dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries) // nothing left behind
}

func TestValidateRejectsDisallowedExtension(t *testing.T) {
	s := newTestStore(t, 1024)
	fh := uploadHeader(t, "malware.exe", "application/pdf", []byte("mz"))

	assert.ErrorIs(t, s.Validate(fh), ErrInvalidFileType)
}

func TestValidateRejectsDisallowedContentType(t *testing.T) {
	s := newTestStore(t, 1024)
	fh := uploadHeader(t, "page.txt", "text/html", []byte("<html>"))

	assert.ErrorIs(t, s.Validate(fh), ErrInvalidFileType)
}

func TestValidateAcceptsContentTypeWithParameters(t *testing.T) {
	s := newTestStore(t, 1024)
	fh := uploadHeader(t, "notes.txt", "text/plain; charset=utf-8", []byte("ok"))

	assert.NoError(t, s.Validate(fh))
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newTestStore(t, 1024)
	fh := uploadHeader(t, "doc.pdf", "application/pdf", []byte("%PDF"))

	path, err := s.Save(fh)
	require.NoError(t, err)

	require.NoError(t, s.Remove(path))
	assert.False(t, s.Exists(path))
	assert.NoError(t, s.Remove(path)) // second remove is not an error
}

func TestOpenMissingBlob(t *testing.T) {
	s := newTestStore(t, 1024)
	_, err := s.Open(filepath.Join(s.Dir, "gone.pdf"))
	assert.ErrorIs(t, err, ErrFileMissing)
}
