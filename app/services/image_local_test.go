package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinehq/vitrine/pkg/storage"
)

// memDisk is an in-memory Disk for tests.
type memDisk struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemDisk() *memDisk { return &memDisk{files: map[string][]byte{}} }

func (d *memDisk) Put(path string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[path] = append([]byte(nil), content...)
	return nil
}

func (d *memDisk) PutStream(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return d.Put(path, data)
}

func (d *memDisk) Get(path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("memdisk: %s not found", path)
	}
	return data, nil
}

func (d *memDisk) GetStream(path string) (io.ReadCloser, error) {
	data, err := d.Get(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *memDisk) Exists(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.files[path]
	return ok
}

func (d *memDisk) Size(path string) (int64, error) {
	data, err := d.Get(path)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (d *memDisk) Delete(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, path)
	return nil
}

func (d *memDisk) URL(path string) string { return "http://assets.test/" + path }

func useMemDisk(t *testing.T) *memDisk {
	t.Helper()
	d := newMemDisk()
	storage.RegisterDisk("mem", d)
	storage.SetDefault("mem")
	t.Cleanup(func() { storage.SetDefault("local") })
	return d
}

// alphaPNG renders a half-transparent PNG of the given size.
func alphaPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 128})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeStored(t *testing.T, d *memDisk, path string) image.Image {
	t.Helper()
	data, err := d.Get(path)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestDeriveProducesBoundedJPEGs(t *testing.T) {
	disk := useMemDisk(t)
	deriver := NewLocalDeriver()

	loc := deriver.Derive("articles/1/front.png", alphaPNG(t, 2400, 1600))
	assert.Equal(t, "articles/1/front_optimized.jpg", loc.Optimized)
	assert.Equal(t, "articles/1/front_thumb.jpg", loc.Thumb)

	optimized := decodeStored(t, disk, loc.Optimized)
	assert.LessOrEqual(t, optimized.Bounds().Dx(), 1200)
	assert.LessOrEqual(t, optimized.Bounds().Dy(), 1200)

	thumb := decodeStored(t, disk, loc.Thumb)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 300)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), 300)
}

func TestDerivePreservesAspectRatio(t *testing.T) {
	disk := useMemDisk(t)
	deriver := NewLocalDeriver()

	loc := deriver.Derive("articles/1/wide.png", alphaPNG(t, 2400, 600))
	optimized := decodeStored(t, disk, loc.Optimized)
	assert.Equal(t, 1200, optimized.Bounds().Dx())
	assert.Equal(t, 300, optimized.Bounds().Dy())
}

func TestDeriveFlattensAlphaOntoWhite(t *testing.T) {
	disk := useMemDisk(t)
	deriver := NewLocalDeriver()

	loc := deriver.Derive("articles/1/ghost.png", alphaPNG(t, 100, 100))
	optimized := decodeStored(t, disk, loc.Optimized)

	// half-transparent red over white lightens toward pink; a naive
	// re-encode of the raw alpha channel would come out dark
	r, _, _, a := optimized.At(50, 50).RGBA()
	assert.Equal(t, uint32(0xffff), a, "JPEG output is opaque")
	assert.Greater(t, r, uint32(0x9000), "background shows through the alpha")
}

func TestDeriveSmallImageIsNotUpscaled(t *testing.T) {
	disk := useMemDisk(t)
	deriver := NewLocalDeriver()

	loc := deriver.Derive("articles/1/small.png", alphaPNG(t, 80, 60))
	optimized := decodeStored(t, disk, loc.Optimized)
	assert.Equal(t, 80, optimized.Bounds().Dx())
	assert.Equal(t, 60, optimized.Bounds().Dy())
}

func TestDeriveCorruptImageDegrades(t *testing.T) {
	disk := useMemDisk(t)
	deriver := NewLocalDeriver()

	raw := []byte("definitely not an image")
	loc := deriver.Derive("articles/1/broken.png", raw)

	assert.Equal(t, "articles/1/broken.png", loc.Optimized, "optimized falls back to the raw upload")
	assert.Empty(t, loc.Thumb, "no thumbnail is produced")

	stored, err := disk.Get("articles/1/broken.png")
	require.NoError(t, err)
	assert.Equal(t, raw, stored)
}

func TestDeriveIsIdempotentOnDerivedInput(t *testing.T) {
	disk := useMemDisk(t)
	deriver := NewLocalDeriver()

	first := deriver.Derive("articles/1/front.png", alphaPNG(t, 500, 500))
	stored, err := disk.Get(first.Optimized)
	require.NoError(t, err)

	again := deriver.Derive(first.Optimized, stored)
	assert.Equal(t, first.Optimized, again.Optimized, "already-optimized slot is left alone")
	assert.Equal(t, first.Thumb, again.Thumb)
}

func TestLocalURLs(t *testing.T) {
	useMemDisk(t)
	deriver := NewLocalDeriver()

	assert.Equal(t, "http://assets.test/a/b.jpg", deriver.OptimizedURL("a/b.jpg"))
	assert.Empty(t, deriver.OptimizedURL(""))
	assert.Empty(t, deriver.ThumbURL(""))
}

func TestCDNDeriver(t *testing.T) {
	disk := useMemDisk(t)
	deriver := NewCDNDeriver("https://cdn.test/shop/upload/")

	loc := deriver.Derive("articles/1/front.png", []byte{1, 2, 3})
	assert.Equal(t, "articles/1/front.png", loc.Optimized)
	assert.Equal(t, "articles/1/front.png", loc.Thumb)
	assert.True(t, disk.Exists("articles/1/front.png"), "the asset itself is stored")

	assert.Equal(t,
		"https://cdn.test/shop/upload/c_limit,w_1200,h_1200,q_auto,f_auto/articles/1/front.png",
		deriver.OptimizedURL(loc.Optimized))
	assert.Equal(t,
		"https://cdn.test/shop/upload/c_fill,w_300,h_300,q_auto,f_auto/articles/1/front.png",
		deriver.ThumbURL(loc.Thumb))
	assert.Empty(t, deriver.ThumbURL(""))
}
