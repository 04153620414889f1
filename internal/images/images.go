// Package images downloads the images of a page into the site's static directory
// and maps block ids to their public paths.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for sniffing
	_ "image/jpeg" // register decoder for sniffing
	_ "image/png"  // register decoder for sniffing
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp" // register decoder for sniffing

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/logfields"
	"git.home.luguber.info/inful/notionsync/internal/version"
)

const maxImageBytes = 32 << 20

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".avif": true,
}

var sniffedExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// Downloader stores page images under <dir>/<slug>/ and serves them from
// <publicPath>/<slug>/.
type Downloader struct {
	client     *http.Client
	dir        string
	publicPath string
	workers    int
}

// New builds a Downloader from the output configuration.
func New(cfg config.OutputConfig, client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	workers := cfg.ImageWorkers
	if workers < 1 {
		workers = 1
	}
	return &Downloader{
		client:     client,
		dir:        cfg.ImagesDir,
		publicPath: cfg.ImagesPublicPath,
		workers:    workers,
	}
}

// Dir returns the directory holding the images of slug. The slug must be a single
// path element so the directory stays below the images root.
func (d *Downloader) Dir(slug string) (string, error) {
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`+"\x00") {
		return "", errors.ValidationError("invalid image slug").WithContext("slug", slug).Build()
	}
	dir := filepath.Join(d.dir, slug)
	if filepath.Dir(dir) != filepath.Clean(d.dir) {
		return "", errors.ValidationError("image directory escapes the images root").WithContext("path", dir).Build()
	}
	return dir, nil
}

type fetched struct {
	block content.Block
	data  []byte
	ext   string
}

// Localize downloads every image of the tree in document order. Files are numbered
// from 0 over the successful downloads of the page. Failed downloads are logged and
// left out of the result so the renderer keeps their remote URL.
func (d *Downloader) Localize(ctx context.Context, slug string, blocks []content.Block) content.ImageLocations {
	var imgs []content.Block
	for _, b := range content.Images(blocks) {
		if img := b.Payload.(content.Image); img.URL() != "" {
			imgs = append(imgs, b)
		}
	}
	locations := make(content.ImageLocations)
	if len(imgs) == 0 {
		return locations
	}
	dir, err := d.Dir(slug)
	if err != nil {
		slog.Warn("Skipping image downloads", logfields.Slug(slug), logfields.Error(err))
		return locations
	}

	results := runOrdered(imgs, d.workers, func(b content.Block) (fetched, error) {
		src := b.Payload.(content.Image).URL()
		data, err := d.fetch(ctx, src)
		if err != nil {
			return fetched{}, err
		}
		return fetched{block: b, data: data, ext: Extension(src, data)}, nil
	})

	n := 0
	for i, res := range results {
		src := imgs[i].Payload.(content.Image).URL()
		if res.Err != nil {
			slog.Warn("Image download failed", logfields.Slug(slug), logfields.URL(src), logfields.Error(res.Err))
			continue
		}
		name := fmt.Sprintf("%d%s", n, res.Value.ext)
		if err := d.write(dir, name, res.Value.data); err != nil {
			slog.Warn("Image write failed", logfields.Slug(slug), logfields.URL(src), logfields.Error(err))
			continue
		}
		locations[res.Value.block.ID] = path.Join(d.publicPath, slug, name)
		slog.Debug("Image downloaded", logfields.Slug(slug), logfields.Path(name))
		n++
	}
	return locations
}

func (d *Downloader) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid image URL").Build()
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.NetworkError("image request failed").WithCause(err).WithContext("url", src).Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewError(errors.CategoryNetwork, fmt.Sprintf("HTTP %d", resp.StatusCode)).
			WithContext("url", src).
			Build()
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, errors.NetworkError("image read failed").WithCause(err).WithContext("url", src).Build()
	}
	return data, nil
}

func (d *Downloader) write(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileSystemError("failed to create image directory").WithCause(err).WithContext("path", dir).Build()
	}
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write image").WithCause(err).WithContext("path", dest).Build()
	}
	return nil
}

// Remove deletes the image directory of slug. A missing directory is not an error.
func (d *Downloader) Remove(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return nil
	}
	dir, err := d.Dir(slug)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.FileSystemError("failed to remove image directory").WithCause(err).WithContext("path", dir).Build()
	}
	return nil
}

// Extension picks the file extension for an image: the URL path extension when it
// is a known image type, else the sniffed format of data, else .png.
func Extension(src string, data []byte) string {
	if u, err := url.Parse(src); err == nil {
		ext := path.Ext(u.Path)
		if allowedExtensions[strings.ToLower(ext)] {
			return ext
		}
	}
	if len(data) > 0 {
		if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			if ext, ok := sniffedExtensions[format]; ok {
				return ext
			}
		}
	}
	return ".png"
}

type orderedResult[T any] struct {
	Value T
	Err   error
}

// runOrdered applies fn to items with bounded concurrency, keeping input order.
func runOrdered[T any, R any](items []T, concurrency int, fn func(T) (R, error)) []orderedResult[R] {
	if len(items) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	sem := make(chan struct{}, concurrency)
	results := make([]orderedResult[R], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			v, err := fn(item)
			results[i] = orderedResult[R]{Value: v, Err: err}
		}()
	}
	wg.Wait()
	return results
}
