package listing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// File is one image chosen in the listing form.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Processor rewrites an image before upload.
type Processor interface {
	Process(data []byte) ([]byte, string, error)
}

// Uploader sends a batch of listing images to the blob store.
type Uploader struct {
	blobs     Blobs
	processor Processor
	limit     int
	now       func() time.Time
}

func NewUploader(blobs Blobs, processor Processor, limit int) *Uploader {
	if limit < 1 {
		limit = 1
	}
	return &Uploader{blobs: blobs, processor: processor, limit: limit, now: time.Now}
}

// Upload stores files under car-images/<listingID>/ and returns their URLs in
// the order the files were given. If any file fails the whole batch fails and
// the files already stored for it are removed again.
func (u *Uploader) Upload(ctx context.Context, listingID string, files []File) ([]string, error) {
	urls := make([]string, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	stamp := u.now().UnixMilli()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.limit)
	for i, f := range files {
		key := ObjectKey(listingID, stamp+int64(i), f.Name)
		g.Go(func() error {
			url, err := u.uploadOne(gctx, key, f)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.discard(ctx, urls)
		return nil, err
	}
	return urls, nil
}

func (u *Uploader) uploadOne(ctx context.Context, key string, f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	contentType := f.ContentType
	if u.processor != nil {
		data, contentType, err = u.processor.Process(data)
		if err != nil {
			return "", err
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return u.blobs.Upload(ctx, key, bytes.NewReader(data), contentType)
}

// discard removes blobs stored by a failed batch. It runs on the caller's
// context since the batch context is already cancelled.
func (u *Uploader) discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		key, err := u.blobs.KeyFromURL(url)
		if err == nil {
			err = u.blobs.Delete(ctx, key)
		}
		if err != nil {
			log.Printf("Failed to remove image from aborted upload %s: %v", url, err)
		}
	}
}

// ObjectKey is the storage key of an image: a per-listing prefix, a
// millisecond timestamp and the sanitized original name.
func ObjectKey(listingID string, stamp int64, filename string) string {
	return fmt.Sprintf("car-images/%s/%d-%s", listingID, stamp, sanitize(filename))
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}
