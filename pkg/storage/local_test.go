package storage

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinehq/vitrine/config"
)

func testLocalDisk(t *testing.T) *localDisk {
	t.Helper()
	config.Set("STORAGE_LOCAL_ROOT", t.TempDir())
	config.Set("STORAGE_URL", "http://localhost:8080/storage/")
	return newLocalDisk()
}

func TestLocalDiskRoundTrip(t *testing.T) {
	d := testLocalDisk(t)

	require.NoError(t, d.Put("articles/1/front.jpg", []byte("jpeg bytes")))
	assert.True(t, d.Exists("articles/1/front.jpg"))

	data, err := d.Get("articles/1/front.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)

	size, err := d.Size("articles/1/front.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	rc, err := d.GetStream("articles/1/front.jpg")
	require.NoError(t, err)
	streamed, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, streamed)
}

func TestLocalDiskPutStreamCreatesDirectories(t *testing.T) {
	d := testLocalDisk(t)
	require.NoError(t, d.PutStream("a/b/c/deep.bin", bytes.NewReader([]byte{1, 2, 3})))
	assert.True(t, d.Exists("a/b/c/deep.bin"))
}

func TestLocalDiskDelete(t *testing.T) {
	d := testLocalDisk(t)
	require.NoError(t, d.Put("x.bin", []byte("x")))
	require.NoError(t, d.Delete("x.bin"))
	assert.False(t, d.Exists("x.bin"))

	// deleting a missing file is not an error
	assert.NoError(t, d.Delete("x.bin"))
}

func TestLocalDiskURL(t *testing.T) {
	d := testLocalDisk(t)
	assert.Equal(t, "http://localhost:8080/storage/articles/1/front.jpg",
		d.URL("articles/1/front.jpg"))
	assert.Equal(t, "http://localhost:8080/storage/a.jpg", d.URL("/a.jpg"))
}
