package listing

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedUploader(blobs Blobs, processor Processor, limit int) *Uploader {
	u := NewUploader(blobs, processor, limit)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return u
}

func TestUploadKeepsInputOrder(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.jitter = true
	u := fixedUploader(blobs, nil, 3)

	urls, err := u.Upload(context.Background(), "c1", []File{
		file("front.jpg", "1"),
		file("side.jpg", "2"),
		file("rear.jpg", "3"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		fakeBase + "car-images/c1/1700000000000-front.jpg",
		fakeBase + "car-images/c1/1700000000001-side.jpg",
		fakeBase + "car-images/c1/1700000000002-rear.jpg",
	}, urls)
	assert.Equal(t, "2", blobs.objects["car-images/c1/1700000000001-side.jpg"])
}

func TestUploadSameNameDoesNotCollide(t *testing.T) {
	blobs := newFakeBlobs()
	u := fixedUploader(blobs, nil, 2)

	urls, err := u.Upload(context.Background(), "c1", []File{file("IMG_0001.jpg", "a"), file("IMG_0001.jpg", "b")})

	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.NotEqual(t, urls[0], urls[1])
	assert.Len(t, blobs.keys(), 2)
}

func TestUploadEmptyBatch(t *testing.T) {
	urls, err := fixedUploader(newFakeBlobs(), nil, 1).Upload(context.Background(), "c1", nil)

	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestUploadFailureAbortsAndCleansUp(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.failUpload = []string{"broken"}
	u := fixedUploader(blobs, nil, 1)

	urls, err := u.Upload(context.Background(), "c1", []File{
		file("ok.jpg", "1"),
		file("broken.jpg", "2"),
		file("later.jpg", "3"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errBlobDown)
	assert.Nil(t, urls)
	assert.Empty(t, blobs.keys(), "blobs from the failed batch must be removed")
}

func TestUploadOpenFailure(t *testing.T) {
	errOpen := errors.New("file gone")
	bad := File{Name: "x.jpg", Open: func() (io.ReadCloser, error) { return nil, errOpen }}

	_, err := fixedUploader(newFakeBlobs(), nil, 1).Upload(context.Background(), "c1", []File{bad})

	assert.ErrorIs(t, err, errOpen)
}

type upperProcessor struct{}

func (upperProcessor) Process(data []byte) ([]byte, string, error) {
	return append([]byte("processed:"), data...), "image/jpeg", nil
}

func TestUploadRunsProcessor(t *testing.T) {
	blobs := newFakeBlobs()
	u := fixedUploader(blobs, upperProcessor{}, 1)

	_, err := u.Upload(context.Background(), "c1", []File{file("a.png", "raw")})

	require.NoError(t, err)
	assert.Equal(t, "processed:raw", blobs.objects["car-images/c1/1700000000000-a.png"])
}

func TestObjectKeySanitizesNames(t *testing.T) {
	tests := map[string]string{
		"front.jpg":             "car-images/c1/5-front.jpg",
		"my car (1).JPG":        "car-images/c1/5-my-car-1.JPG",
		"../../etc/passwd":      "car-images/c1/5-passwd",
		`C:\Users\sam\rear.png`: "car-images/c1/5-rear.png",
		"???":                   "car-images/c1/5-image",
	}
	for in, want := range tests {
		assert.Equal(t, want, ObjectKey("c1", 5, in), in)
	}
}
