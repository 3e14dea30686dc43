package skyshow

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/gekko3d/skyshow/particlert/rt/starfield"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

type ImageStatus int

const (
	ImagePending ImageStatus = iota
	ImageReady
	ImageFailed
)

func (s ImageStatus) String() string {
	switch s {
	case ImagePending:
		return "pending"
	case ImageReady:
		return "ready"
	case ImageFailed:
		return "failed"
	}
	return fmt.Sprintf("ImageStatus(%d)", int(s))
}

// ImageFuture is a decode running off the frame loop. The result is written
// once before done is closed and is read-only afterwards.
type ImageFuture struct {
	id     AssetId
	source string
	done   chan struct{}
	pixels starfield.Pixels
	err    error
}

func newImageFuture(source string) *ImageFuture {
	return &ImageFuture{
		id:     makeAssetId(),
		source: source,
		done:   make(chan struct{}),
	}
}

// LoadImageAsync opens and decodes path on its own goroutine. Images larger
// than maxDim on their longest side are downscaled; maxDim <= 0 keeps the
// original size.
func LoadImageAsync(path string, maxDim int) *ImageFuture {
	f := newImageFuture(path)
	go func() {
		defer close(f.done)
		file, err := os.Open(path)
		if err != nil {
			f.err = fmt.Errorf("%w: %s: %w", ErrAssetDecode, path, err)
			return
		}
		defer file.Close()
		f.pixels, f.err = decodePixels(file, path, maxDim)
	}()
	return f
}

// DecodeImageAsync decodes an already opened stream.
func DecodeImageAsync(r io.Reader, name string, maxDim int) *ImageFuture {
	f := newImageFuture(name)
	go func() {
		defer close(f.done)
		f.pixels, f.err = decodePixels(r, name, maxDim)
	}()
	return f
}

// ResolvedImage wraps pixels that are already in memory.
func ResolvedImage(px starfield.Pixels) *ImageFuture {
	f := newImageFuture("memory")
	f.pixels = px
	close(f.done)
	return f
}

func decodePixels(r io.Reader, name string, maxDim int) (starfield.Pixels, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return starfield.Pixels{}, fmt.Errorf("%w: %s: %w", ErrAssetDecode, name, err)
	}
	px := starfield.PixelsFromImage(img, maxDim)
	if px.Width == 0 || px.Height == 0 {
		return starfield.Pixels{}, fmt.Errorf("%w: %s: empty %s image", ErrAssetDecode, name, format)
	}
	return px, nil
}

func (f *ImageFuture) ID() AssetId    { return f.id }
func (f *ImageFuture) Source() string { return f.source }

// Poll never blocks.
func (f *ImageFuture) Poll() (starfield.Pixels, ImageStatus, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return starfield.Pixels{}, ImageFailed, f.err
		}
		return f.pixels, ImageReady, nil
	default:
		return starfield.Pixels{}, ImagePending, nil
	}
}

func (f *ImageFuture) Wait(ctx context.Context) (starfield.Pixels, error) {
	select {
	case <-f.done:
		return f.pixels, f.err
	case <-ctx.Done():
		return starfield.Pixels{}, ctx.Err()
	}
}
