package tags

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"time"

	"golang.org/x/image/draw"

	"github.com/nkoryagin/tgaudio/pkg/core/dl"
)

const (
	coverTimeout = 30 * time.Second
	coverSize    = 600
	coverQuality = 90
)

// GetCover downloads a thumbnail and converts it into embeddable cover art:
// a square, opaque JPEG no larger than 600x600. It returns nil when the
// thumbnail is missing or cannot be processed; cover art is best-effort.
func GetCover(ctx context.Context, thumbnailURL string) []byte {
	ctx, cancel := context.WithTimeout(ctx, coverTimeout)
	defer cancel()

	raw, err := dl.FetchBytes(ctx, thumbnailURL)
	if err != nil {
		return nil
	}

	cover, err := processCover(raw)
	if err != nil {
		return nil
	}
	return cover
}

// processCover center-crops the image to a square, downscales it to 600x600
// when larger, and re-encodes it as an opaque JPEG.
func processCover(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode the thumbnail: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty thumbnail image")
	}

	side := min(width, height)
	cropped := image.Rect(
		bounds.Min.X+(width-side)/2,
		bounds.Min.Y+(height-side)/2,
		bounds.Min.X+(width-side)/2+side,
		bounds.Min.Y+(height-side)/2+side,
	)

	target := side
	if target > coverSize {
		target = coverSize
	}

	// Drawing onto an RGBA canvas flattens palette and alpha sources.
	dst := image.NewRGBA(image.Rect(0, 0, target, target))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, cropped, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: coverQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode the cover: %w", err)
	}
	return buf.Bytes(), nil
}
