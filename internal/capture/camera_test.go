package capture

import (
	"errors"
	"image/color"
	"testing"
)

func TestMockCameraReadBeforeOpen(t *testing.T) {
	cam := NewMockCamera()

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestMockCameraPlayback(t *testing.T) {
	red := SolidFrame(32, 24, color.RGBA{R: 255, A: 255})
	blue := SolidFrame(32, 24, color.RGBA{B: 255, A: 255})
	cam := NewMockCamera(red, blue)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cam.Close()

	first, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if first.Width != 32 || first.Height != 24 {
		t.Errorf("expected 32x24 frame, got %dx%d", first.Width, first.Height)
	}
	if got := first.Image.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("expected red first frame, got %+v", got)
	}

	second, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if got := second.Image.RGBAAt(0, 0); got.B != 255 {
		t.Errorf("expected blue second frame, got %+v", got)
	}

	// Loops back to the first frame by default.
	third, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if got := third.Image.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("expected playback to wrap to red, got %+v", got)
	}
}

func TestMockCameraNoLoopExhausts(t *testing.T) {
	cam := NewMockCamera(SolidFrame(16, 16, color.RGBA{A: 255}))
	cam.SetLoop(false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cam.Close()

	if _, err := cam.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrFrameNotReady) {
		t.Errorf("expected ErrFrameNotReady after exhaustion, got %v", err)
	}
}

func TestMockCameraNotReadyInjection(t *testing.T) {
	cam := NewMockCamera()
	cam.NotReadyEvery = 2

	if err := cam.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cam.Close()

	if _, err := cam.ReadFrame(); err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrFrameNotReady) {
		t.Errorf("expected injected ErrFrameNotReady, got %v", err)
	}
	if _, err := cam.ReadFrame(); err != nil {
		t.Errorf("third read failed: %v", err)
	}
}

func TestCameraFPS(t *testing.T) {
	cam := NewMockCamera()

	if got := cam.FPS(); got != DefaultFPS {
		t.Errorf("expected default FPS %d, got %d", DefaultFPS, got)
	}

	cam.SetFPS(30)
	if got := cam.FPS(); got != 30 {
		t.Errorf("expected FPS 30, got %d", got)
	}

	cam.SetFPS(0)
	if got := cam.FPS(); got != 30 {
		t.Errorf("non-positive FPS should be ignored, got %d", got)
	}
}
