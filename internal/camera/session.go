// Package camera models the AR capture flow: acquiring a camera stream,
// compositing the mascot overlay onto a still frame, and releasing the
// device deterministically on every exit path.
package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sync"
)

var (
	// ErrPermissionDenied means the user refused camera access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrNoDevice means no camera hardware is available.
	ErrNoDevice = errors.New("no camera device")
	// ErrUnsupported means the environment cannot provide a camera
	// stream at all (for example an insecure context).
	ErrUnsupported = errors.New("camera not supported")
	// ErrOverlayNotReady rejects a capture before the mascot overlay
	// has finished loading; the caller shows a "wait for overlay" notice.
	ErrOverlayNotReady = errors.New("overlay not ready")
	// ErrNotOpen is returned when capturing without an open stream.
	ErrNotOpen = errors.New("camera session not open")
)

// Stream is an open camera feed. Frame returns the current frame;
// Close releases the device.
type Stream interface {
	Frame() (image.Image, error)
	Close() error
}

// Device acquires an environment-facing camera stream. Open errors are
// one of the sentinel errors above so the UI can give cause-specific
// remediation hints.
type Device interface {
	Open() (Stream, error)
}

// Overlay draws the mascot graphic for a location onto a frame.
type Overlay interface {
	// Ready reports whether the overlay assets are loaded.
	Ready() bool
	// Draw composites the mascot for locationKey over frame.
	Draw(frame draw.Image, locationKey string)
}

// Session owns at most one camera stream at a time. Opening while a
// stream is live closes the old one first; Close is idempotent.
type Session struct {
	mu      sync.Mutex
	device  Device
	overlay Overlay
	stream  Stream
}

// NewSession builds a session over the given device and overlay.
func NewSession(device Device, overlay Overlay) *Session {
	return &Session{device: device, overlay: overlay}
}

// Open acquires the camera. Any previously open stream is released
// before the new acquisition starts.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			return fmt.Errorf("closing previous stream: %w", err)
		}
		s.stream = nil
	}

	stream, err := s.device.Open()
	if err != nil {
		return err
	}
	s.stream = stream
	return nil
}

// Composite captures the current frame, draws the mascot overlay for
// locationKey and returns the encoded PNG. The capture is rejected when
// the overlay has not finished loading, so no half-composited image can
// ever be produced.
func (s *Session) Composite(locationKey string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return nil, ErrNotOpen
	}
	if !s.overlay.Ready() {
		return nil, ErrOverlayNotReady
	}

	frame, err := s.stream.Frame()
	if err != nil {
		return nil, fmt.Errorf("capturing frame: %w", err)
	}

	canvas := image.NewRGBA(frame.Bounds())
	draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Src)
	s.overlay.Draw(canvas, locationKey)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding capture: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the camera device. Safe to call on every exit path.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}
