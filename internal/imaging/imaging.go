// Package imaging prepares photos taken on a phone for the web before they
// are uploaded: EXIF rotation applied, width bounded, re-encoded as JPEG.
package imaging

import (
	"fmt"

	"github.com/h2non/bimg"
)

type Processor struct {
	MaxWidth int
	Quality  int
}

func NewProcessor(maxWidth, quality int) *Processor {
	return &Processor{MaxWidth: maxWidth, Quality: quality}
}

// Process returns the web-ready image and its content type.
func (p *Processor) Process(data []byte) ([]byte, string, error) {
	img := bimg.NewImage(data)
	size, err := img.Size()
	if err != nil {
		return nil, "", fmt.Errorf("imaging: read size: %w", err)
	}

	options := bimg.Options{
		Type:          bimg.JPEG,
		Quality:       p.Quality,
		StripMetadata: true,
		NoAutoRotate:  false,
	}
	if p.MaxWidth > 0 && size.Width > p.MaxWidth {
		options.Width = p.MaxWidth
	}

	out, err := img.Process(options)
	if err != nil {
		return nil, "", fmt.Errorf("imaging: process: %w", err)
	}
	return out, "image/jpeg", nil
}
