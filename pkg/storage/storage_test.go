package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruizhu/shopapi/config"
)

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()
	disk, err := NewLocal(t.TempDir(), "http://localhost:8000/storage/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "products/1/cover.jpg", strings.NewReader("jpeg"), "image/jpeg"))

	ok, err := disk.Exists(ctx, "products/1/cover.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := disk.Open(ctx, "products/1/cover.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	assert.Equal(t, "http://localhost:8000/storage/products/1/cover.jpg", disk.URL("products/1/cover.jpg"))

	require.NoError(t, disk.Delete(ctx, "products/1/cover.jpg"))
	require.NoError(t, disk.Delete(ctx, "products/1/cover.jpg"))
	ok, err = disk.Exists(ctx, "products/1/cover.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCleanKeyStaysInsideRoot(t *testing.T) {
	k, err := cleanKey("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", k)

	_, err = cleanKey("/")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestNewSelectsDriver(t *testing.T) {
	ctx := context.Background()
	d, err := New(ctx, config.StorageConfig{Disk: "local", LocalRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalDisk{}, d)

	_, err = New(ctx, config.StorageConfig{Disk: "s3"})
	assert.Error(t, err)

	_, err = New(ctx, config.StorageConfig{Disk: "ftp"})
	assert.Error(t, err)
}

func TestS3URL(t *testing.T) {
	d, err := NewS3(context.Background(), config.StorageConfig{
		S3Bucket: "shop", S3Region: "ap-east-1", S3Key: "k", S3Secret: "s", S3Endpoint: "http://localhost:9000",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.s3.ap-east-1.amazonaws.com/products/a.png", d.URL("/products/a.png"))
}
