package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublicURL = "https://pub-123.r2.dev/%s"

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	deletes []string
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/cars-bucket/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		f.deletes = append(f.deletes, key)
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setupTestBlobs(t *testing.T) (*Blobs, *fakeBucket) {
	t.Helper()

	bucket := &fakeBucket{objects: map[string]string{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "auto",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	return NewBlobs(client, "cars-bucket", testPublicURL), bucket
}

func TestBlobsUploadAndDelete(t *testing.T) {
	blobs, bucket := setupTestBlobs(t)
	ctx := context.Background()

	url, err := blobs.Upload(ctx, "car-images/c1/1700000000000-front.jpg", strings.NewReader("jpegdata"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://pub-123.r2.dev/car-images/c1/1700000000000-front.jpg", url)
	assert.Equal(t, "jpegdata", bucket.objects["car-images/c1/1700000000000-front.jpg"])

	key, err := blobs.KeyFromURL(url)
	require.NoError(t, err)
	require.NoError(t, blobs.Delete(ctx, key))
	assert.Equal(t, []string{"car-images/c1/1700000000000-front.jpg"}, bucket.deletes)
	assert.Empty(t, bucket.objects)
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "signed download url",
			url:  "https://firebasestorage.googleapis.com/v0/b/dealer.appspot.com/o/car-images%2F1700000000000-rear.jpg?alt=media&token=7f1c",
			want: "car-images/1700000000000-rear.jpg",
		},
		{
			name: "signed url with escaped space",
			url:  "https://firebasestorage.googleapis.com/v0/b/dealer.appspot.com/o/cars%2Fc9%2F17-my%20car.png?alt=media",
			want: "cars/c9/17-my car.png",
		},
		{
			name: "public bucket url",
			url:  "https://pub-123.r2.dev/car-images/c1/17-front.jpg",
			want: "car-images/c1/17-front.jpg",
		},
		{
			name: "public bucket url with cache buster",
			url:  "https://pub-123.r2.dev/car-images/c1/17-front.jpg?v=2",
			want: "car-images/c1/17-front.jpg",
		},
		{name: "other host", url: "https://example.com/car.jpg", wantErr: true},
		{name: "not a url", url: "front.jpg", wantErr: true},
		{name: "signed url without key", url: "https://firebasestorage.googleapis.com/v0/b/x/o/?alt=media", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeyFromURL(tt.url, testPublicURL)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForeignURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
