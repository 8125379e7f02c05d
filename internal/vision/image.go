// Package vision implements the heuristic fret/string line extraction that
// feeds fretboard localization. It is deliberately not a general-purpose
// computer-vision library: lines are found by run-length scanning of a
// binarized gradient map, not by a Hough accumulator.
package vision

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
)

// DefaultDetectWidth is the width frames are downsampled to before edge
// extraction. Line detection is a coarse heuristic; full resolution only
// adds noise and cost.
const DefaultDetectWidth = 320

// GrayImage is a dense 8-bit grayscale pixel buffer.
type GrayImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGrayImage allocates a zeroed buffer of the given size.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the pixel value at (x, y). Out-of-bounds reads return 0.
func (g *GrayImage) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0
	}
	return g.Pix[y*g.Width+x]
}

// Set writes the pixel value at (x, y). Out-of-bounds writes are ignored.
func (g *GrayImage) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.Pix[y*g.Width+x] = v
}

// FromImage downsamples a frame to at most maxWidth columns, converts it to
// grayscale and returns the pixel buffer used by line detection. A
// non-positive maxWidth uses DefaultDetectWidth.
func FromImage(img image.Image, maxWidth int) *GrayImage {
	if maxWidth <= 0 {
		maxWidth = DefaultDetectWidth
	}

	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return NewGrayImage(0, 0)
	}

	if w > maxWidth {
		scaled := maxWidth * h / w
		if scaled < 1 {
			scaled = 1
		}
		img = transform.Resize(img, maxWidth, scaled, transform.Linear)
		w = maxWidth
		h = scaled
	}

	gray := effect.Grayscale(img)

	out := NewGrayImage(w, h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			// Grayscale RGBA has equal channels, take R
			out.Pix[y*w+x] = row[x*4]
		}
	}
	return out
}
