package vision

import "testing"

// whiteImage returns a uniform bright buffer with no edges.
func whiteImage(w, h int) *GrayImage {
	img := NewGrayImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// drawHBand paints a 2px dark horizontal band across the full width.
func drawHBand(img *GrayImage, y int) {
	for x := 0; x < img.Width; x++ {
		img.Set(x, y, 0)
		img.Set(x, y+1, 0)
	}
}

// drawVBand paints a 2px dark vertical band spanning rows [y0, y1).
func drawVBand(img *GrayImage, x, y0, y1 int) {
	for y := y0; y < y1; y++ {
		img.Set(x, y, 0)
		img.Set(x+1, y, 0)
	}
}

// fretboardLikeImage lays out five evenly spaced horizontal bands in the top
// part of the frame and five vertical bands below them, so the two groups do
// not cross and break each other's edge runs.
func fretboardLikeImage() *GrayImage {
	img := whiteImage(320, 240)
	for _, y := range []int{20, 50, 80, 110, 140} {
		drawHBand(img, y)
	}
	for _, x := range []int{40, 90, 140, 190, 240} {
		drawVBand(img, x, 158, 240)
	}
	return img
}

func TestDetectLines_BlankImageZeroConfidence(t *testing.T) {
	res := DetectLines(whiteImage(320, 240))

	if n := len(res.Lines()); n != 0 {
		t.Errorf("expected no lines on a blank image, got %d", n)
	}
	if res.Confidence != 0 {
		t.Errorf("expected zero confidence, got %f", res.Confidence)
	}
}

func TestDetectLines_FewerThanFourLinesZeroConfidence(t *testing.T) {
	img := whiteImage(320, 240)
	drawHBand(img, 60)
	drawHBand(img, 120)
	drawVBand(img, 100, 150, 240)

	res := DetectLines(img)
	if total := len(res.Lines()); total >= 4 {
		t.Fatalf("test image should yield under 4 lines, got %d", total)
	}
	if res.Confidence != 0 {
		t.Errorf("expected confidence 0 for under 4 lines, got %f", res.Confidence)
	}
}

func TestDetectLines_WeakMixGetsLowConfidence(t *testing.T) {
	// Four lines total but only one vertical: the 0.3 floor applies.
	img := whiteImage(320, 240)
	drawHBand(img, 40)
	drawHBand(img, 80)
	drawHBand(img, 120)
	drawVBand(img, 100, 150, 240)

	res := DetectLines(img)
	if len(res.Horizontal) != 3 || len(res.Vertical) != 1 {
		t.Fatalf("expected 3 horizontal and 1 vertical, got %d/%d",
			len(res.Horizontal), len(res.Vertical))
	}
	if res.Confidence != 0.3 {
		t.Errorf("expected confidence 0.3, got %f", res.Confidence)
	}
}

func TestDetectLines_RegularSpacingHighConfidence(t *testing.T) {
	res := DetectLines(fretboardLikeImage())

	if len(res.Horizontal) != 5 {
		t.Fatalf("expected 5 horizontal lines, got %d", len(res.Horizontal))
	}
	if len(res.Vertical) != 5 {
		t.Fatalf("expected 5 vertical lines, got %d", len(res.Vertical))
	}
	if res.Confidence <= 0.6 {
		t.Errorf("expected confidence above 0.6 for regular spacing, got %f", res.Confidence)
	}
}

func TestDetectLines_ThickBandYieldsSingleLine(t *testing.T) {
	// Both sides of a band produce edge rows; they must merge into one
	// candidate instead of skewing the spacing statistics.
	img := whiteImage(320, 240)
	drawHBand(img, 100)
	drawHBand(img, 160)
	drawHBand(img, 220)

	res := DetectLines(img)
	if len(res.Horizontal) != 3 {
		t.Errorf("expected 3 merged horizontal lines, got %d", len(res.Horizontal))
	}
}

func TestDetectLines_ShortRunsIgnored(t *testing.T) {
	img := whiteImage(320, 240)
	// A dark blob covering well under 30% of the width
	for y := 100; y < 110; y++ {
		for x := 150; x < 190; x++ {
			img.Set(x, y, 0)
		}
	}

	res := DetectLines(img)
	if n := len(res.Horizontal); n != 0 {
		t.Errorf("expected short runs to be ignored, got %d horizontal lines", n)
	}
}
