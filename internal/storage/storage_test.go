package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestNormalizeFilename(t *testing.T) {
	now := time.Date(2030, 5, 5, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "Daf_Yomi_shiur_20300505_203000.png", normalizeFilename("Daf Yomi (shiur).PNG", now))
	assert.Equal(t, "flyer_20300505_203000.pdf", normalizeFilename("../../???.pdf", now))
}

func TestLocalStorageSaveFile(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(filepath.Join(dir, "flyers"), "/uploads")

	url, err := ls.SaveFile(fileHeader(t, "parasha.png", []byte("png-bytes")), "parasha.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/parasha_"), url)

	saved, err := os.ReadFile(filepath.Join(dir, "flyers", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(saved))

	_, err = ls.SaveFile(fileHeader(t, "virus.exe", []byte("MZ")), "virus.exe")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
