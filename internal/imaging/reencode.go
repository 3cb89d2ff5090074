// Package imaging normalises uploaded photos to bounded-size JPEGs.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"

	"golang.org/x/image/draw"

	"github.com/pkordes/map-collection/internal/domain"
)

// Stored photo limits.
const (
	MaxEdge     = 1280
	JPEGQuality = 85
)

// Upload limits checked against the declared dimensions before decoding.
const (
	MaxSide   = 16000
	MaxPixels = 40_000_000
)

// Reencode decodes a JPEG, PNG or GIF from r, scales it down so its longest
// edge is at most MaxEdge, and returns it encoded as JPEG at JPEGQuality.
// Images already within bounds are re-encoded at their original size.
// Undecodable input, or input whose header declares a size over MaxSide or
// MaxPixels, is a domain.ErrValidation.
func Reencode(r io.Reader) ([]byte, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported or corrupt image: %v", domain.ErrValidation, err)
	}
	if cfg.Width > MaxSide || cfg.Height > MaxSide || cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("%w: image is too large (%dx%d)", domain.ErrValidation, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported or corrupt image: %v", domain.ErrValidation, err)
	}

	dst := Fit(src, MaxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("imaging.Reencode: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit returns src scaled proportionally so neither side exceeds maxEdge.
// Each side stays at least one pixel.
func Fit(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	nw, nh := ScaledSize(w, h, maxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// ScaledSize returns w×h scaled so the longest side equals maxEdge.
func ScaledSize(w, h, maxEdge int) (int, int) {
	if w >= h {
		return maxEdge, max(1, h*maxEdge/w)
	}
	return max(1, w*maxEdge/h), maxEdge
}
