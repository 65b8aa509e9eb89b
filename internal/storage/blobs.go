package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrForeignURL = errors.New("url does not point into this bucket")

// Blobs stores listing images in an S3-compatible bucket (Cloudflare R2 in
// production) and hands back public URLs for them.
type Blobs struct {
	client    *s3.Client
	bucket    string
	publicURL string // fmt pattern with one %s for the object key
}

func NewBlobs(client *s3.Client, bucket, publicURL string) *Blobs {
	return &Blobs{client: client, bucket: bucket, publicURL: publicURL}
}

func (b *Blobs) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	obj, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("blobs.Upload %s: %w", key, err)
	}
	log.Printf("Image uploaded to bucket: %s, ETag: %s\n", key, aws.ToString(obj.ETag))
	return b.URL(key), nil
}

func (b *Blobs) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("blobs.Delete %s: %w", key, err)
	}
	return nil
}

// URL is the public address of key.
func (b *Blobs) URL(key string) string {
	escaped := strings.ReplaceAll(url.PathEscape(key), "%2F", "/")
	return CleanURL(fmt.Sprintf(b.publicURL, escaped))
}

func (b *Blobs) KeyFromURL(raw string) (string, error) {
	return KeyFromURL(raw, b.publicURL)
}

// KeyFromURL reverses a stored image URL to its object key. Two shapes are
// understood: signed download links of the form
// ".../o/<escaped key>?alt=media&token=..." written by the previous hosting
// of the site, and links built from publicURL.
func KeyFromURL(raw, publicURL string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("storage: parse %q: %w", raw, ErrForeignURL)
	}

	escaped := u.EscapedPath()
	if i := strings.Index(escaped, "/o/"); i >= 0 && u.Query().Has("alt") {
		key, err := url.PathUnescape(escaped[i+len("/o/"):])
		if err != nil || key == "" {
			return "", fmt.Errorf("storage: signed url %q: %w", raw, ErrForeignURL)
		}
		return key, nil
	}

	base, _, ok := strings.Cut(publicURL, "%s")
	if !ok || base == "" {
		return "", fmt.Errorf("storage: %q: %w", raw, ErrForeignURL)
	}
	withoutQuery, _, _ := strings.Cut(raw, "?")
	rest, ok := strings.CutPrefix(withoutQuery, CleanURL(base))
	if !ok {
		return "", fmt.Errorf("storage: %q: %w", raw, ErrForeignURL)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(rest, "/"))
	if err != nil || key == "" {
		return "", fmt.Errorf("storage: %q: %w", raw, ErrForeignURL)
	}
	return key, nil
}

func CleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	return parsedURL.String()
}
