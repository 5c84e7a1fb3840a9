// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsquare/storefront/internal/config"
)

var pngPayload = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x0}, 32)...)

func newLocalStorage(t *testing.T) *StorageService {
	t.Helper()
	svc, err := NewStorageService(&config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: "8080"},
	})
	require.NoError(t, err)
	svc.localDir = t.TempDir()
	return svc
}

func multipartImage(t *testing.T, filename string, payload []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("images", filename)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	header := form.File["images"][0]
	file, err := header.Open()
	require.NoError(t, err)
	return file, header
}

func TestUploadFileLocal(t *testing.T) {
	svc := newLocalStorage(t)
	sellerID := uuid.New()

	file, header := multipartImage(t, "photo.png", pngPayload)
	defer file.Close()

	result, err := svc.UploadFile(context.Background(), file, header, svc.ProductImageOptions(sellerID))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "products/"+sellerID.String()+"/"), result.Key)
	assert.Contains(t, result.URL, "/uploads/products/")
	assert.Equal(t, int64(len(pngPayload)), result.Size)

	written, err := os.ReadFile(filepath.Join(svc.localDir, filepath.FromSlash(result.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngPayload, written)
}

func TestUploadFileRejectsOversize(t *testing.T) {
	svc := newLocalStorage(t)

	file, header := multipartImage(t, "photo.png", pngPayload)
	defer file.Close()

	options := svc.ProductImageOptions(uuid.New())
	options.MaxSize = 4

	_, err := svc.UploadFile(context.Background(), file, header, options)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestUploadFileRejectsDisallowedExtension(t *testing.T) {
	svc := newLocalStorage(t)

	file, header := multipartImage(t, "payload.exe", pngPayload)
	defer file.Close()

	_, err := svc.UploadFile(context.Background(), file, header, svc.ProductImageOptions(uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestValidateImage(t *testing.T) {
	svc := newLocalStorage(t)

	file, _ := multipartImage(t, "photo.png", pngPayload)
	defer file.Close()
	assert.NoError(t, svc.ValidateImage(file))

	fake, _ := multipartImage(t, "fake.png", []byte("plain text pretending to be an image"))
	defer fake.Close()
	assert.Error(t, svc.ValidateImage(fake))
}

func TestDeleteFileLocal(t *testing.T) {
	svc := newLocalStorage(t)

	file, header := multipartImage(t, "photo.png", pngPayload)
	defer file.Close()

	result, err := svc.UploadFile(context.Background(), file, header, svc.ProductImageOptions(uuid.New()))
	require.NoError(t, err)

	path := filepath.Join(svc.localDir, filepath.FromSlash(result.Key))
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFile(context.Background(), result.Key))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting an already-gone key is not an error.
	assert.NoError(t, svc.DeleteFile(context.Background(), result.Key))
}
