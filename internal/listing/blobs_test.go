package listing

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const fakeBase = "https://pub.test/"

var errBlobDown = errors.New("blob store unavailable")

// fakeBlobs is an in-memory bucket. Keys containing any of failUpload fail
// to upload; keys in failDelete fail to delete.
type fakeBlobs struct {
	mu         sync.Mutex
	objects    map[string]string
	deleted    []string
	failUpload []string
	failDelete map[string]bool
	jitter     bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string]string{}, failDelete: map[string]bool{}}
}

func (b *fakeBlobs) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if b.jitter {
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
	}
	for _, f := range b.failUpload {
		if strings.Contains(key, f) {
			return "", errBlobDown
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = string(data)
	return fakeBase + key, nil
}

func (b *fakeBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete[key] {
		return errBlobDown
	}
	b.deleted = append(b.deleted, key)
	delete(b.objects, key)
	return nil
}

func (b *fakeBlobs) KeyFromURL(url string) (string, error) {
	key, ok := strings.CutPrefix(url, fakeBase)
	if !ok {
		return "", errors.New("foreign url")
	}
	return key, nil
}

func (b *fakeBlobs) put(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = "data"
	return fakeBase + key
}

func (b *fakeBlobs) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.objects))
	for k := range b.objects {
		out = append(out, k)
	}
	return out
}

func file(name, content string) File {
	return File{
		Name:        name,
		ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}
