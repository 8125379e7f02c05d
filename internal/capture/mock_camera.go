package capture

import (
	"image"
	"image/color"
	"sync"
	"time"
)

// MockCamera is a mock implementation of Camera for testing.
// It plays back a fixed sequence of frames, optionally looping.
type MockCamera struct {
	mu         sync.Mutex
	open       bool
	fps        int
	frames     []*image.RGBA
	frameIndex int
	loop       bool

	// OpenErr, if set, is returned from Open.
	OpenErr error
	// NotReadyEvery injects an ErrFrameNotReady on every Nth read when > 0.
	NotReadyEvery int

	readCount int
}

// NewMockCamera creates a MockCamera that serves the given frames in order.
// With no frames it serves a single synthetic gray frame.
func NewMockCamera(frames ...*image.RGBA) *MockCamera {
	if len(frames) == 0 {
		frames = []*image.RGBA{SolidFrame(DefaultWidth, DefaultHeight, color.RGBA{R: 128, G: 128, B: 128, A: 255})}
	}
	return &MockCamera{
		fps:    DefaultFPS,
		frames: frames,
		loop:   true,
	}
}

// SolidFrame builds a uniformly colored RGBA image, useful as test input.
func SolidFrame(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// SetLoop controls whether playback wraps around at the end of the sequence.
func (m *MockCamera) SetLoop(loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loop = loop
}

func (m *MockCamera) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.open = true
	m.frameIndex = 0
	m.readCount = 0
	return nil
}

func (m *MockCamera) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

func (m *MockCamera) ReadFrame() (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil, ErrCameraNotOpen
	}

	m.readCount++
	if m.NotReadyEvery > 0 && m.readCount%m.NotReadyEvery == 0 {
		return nil, ErrFrameNotReady
	}

	if m.frameIndex >= len(m.frames) {
		if !m.loop {
			return nil, ErrFrameNotReady
		}
		m.frameIndex = 0
	}

	img := m.frames[m.frameIndex]
	m.frameIndex++

	bounds := img.Bounds()
	return &Frame{
		Image:     img,
		Timestamp: time.Now(),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}, nil
}

func (m *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fps = fps
}

func (m *MockCamera) FPS() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

func (m *MockCamera) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
