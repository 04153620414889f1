package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func imageBlock(id, url string) content.Block {
	return content.Block{ID: id, Payload: content.Image{Source: content.ImageExternal, ExternalURL: url}}
}

func TestLocalize(t *testing.T) {
	pngData := pngBytes(t)
	gifData := gifBytes(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/a.jpg", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("jpeg-ish")) })
	mux.HandleFunc("/noext", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write(pngData) })
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write(gifData) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	d := New(config.OutputConfig{ImagesDir: dir, ImagesPublicPath: "/notion-images", ImageWorkers: 3}, srv.Client())

	blocks := []content.Block{
		imageBlock("i1", srv.URL+"/a.jpg"),
		imageBlock("missing", srv.URL+"/gone.png"),
		{ID: "toggle", Payload: content.Toggle{}, Children: []content.Block{imageBlock("i2", srv.URL+"/noext")}},
		imageBlock("empty", ""),
		imageBlock("i3", srv.URL+"/redirect"),
	}

	got := d.Localize(context.Background(), "post", blocks)

	assert.Equal(t, content.ImageLocations{
		"i1": "/notion-images/post/0.jpg",
		"i2": "/notion-images/post/1.png",
		"i3": "/notion-images/post/2.gif",
	}, got)

	data, err := os.ReadFile(filepath.Join(dir, "post", "0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-ish", string(data))
	assert.FileExists(t, filepath.Join(dir, "post", "2.gif"))

	require.NoError(t, d.Remove("post"))
	assert.NoDirExists(t, filepath.Join(dir, "post"))
	require.NoError(t, d.Remove("post"))
}

func TestLocalizeWithoutImages(t *testing.T) {
	d := New(config.OutputConfig{ImagesDir: t.TempDir(), ImagesPublicPath: "/img"}, nil)
	got := d.Localize(context.Background(), "x", []content.Block{{Payload: content.Divider{}}})
	assert.Empty(t, got)
}

func TestExtension(t *testing.T) {
	pngData := pngBytes(t)
	tests := []struct {
		name string
		url  string
		data []byte
		want string
	}{
		{"known extension", "https://x.example/a/b.WEBP?sig=1", nil, ".WEBP"},
		{"svg", "https://x.example/logo.svg", nil, ".svg"},
		{"unknown extension sniffed", "https://x.example/file.bin", pngData, ".png"},
		{"no extension no data", "https://x.example/file", nil, ".png"},
		{"garbage data", "https://x.example/file", []byte("hello"), ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.url, tt.data))
		})
	}
}

func TestRunOrderedKeepsOrder(t *testing.T) {
	res := runOrdered([]int{3, 1, 2}, 2, func(i int) (int, error) { return i * 10, nil })
	require.Len(t, res, 3)
	assert.Equal(t, 30, res[0].Value)
	assert.Equal(t, 10, res[1].Value)
	assert.Equal(t, 20, res[2].Value)
	assert.Nil(t, runOrdered([]int{}, 2, func(i int) (int, error) { return i, nil }))
}

func TestRemoveRejectsEscapingSlugs(t *testing.T) {
	public := t.TempDir()
	dir := filepath.Join(public, "notion-images")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "post"), 0o755))
	d := New(config.OutputConfig{ImagesDir: dir, ImagesPublicPath: "/notion-images"}, nil)

	for _, slug := range []string{"..", ".", "../..", "a/b", `a\b`} {
		t.Run(slug, func(t *testing.T) {
			err := d.Remove(slug)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
			assert.DirExists(t, public)
			assert.DirExists(t, filepath.Join(dir, "post"))
		})
	}
	require.NoError(t, d.Remove(""))
}

func TestLocalizeSkipsEscapingSlug(t *testing.T) {
	parent := t.TempDir()
	d := New(config.OutputConfig{ImagesDir: filepath.Join(parent, "images"), ImagesPublicPath: "/img"}, nil)
	got := d.Localize(context.Background(), "..", []content.Block{imageBlock("i1", "https://example.invalid/a.png")})
	assert.Empty(t, got)
	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
