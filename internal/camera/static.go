package camera

import "image"

// StaticDevice serves a fixed frame, standing in for camera hardware in
// the demo binary and in tests.
type StaticDevice struct {
	frame image.Image
}

func NewStaticDevice(frame image.Image) *StaticDevice {
	return &StaticDevice{frame: frame}
}

func (d *StaticDevice) Open() (Stream, error) {
	return &staticStream{frame: d.frame}, nil
}

type staticStream struct {
	frame  image.Image
	closed bool
}

func (s *staticStream) Frame() (image.Image, error) {
	if s.closed {
		return nil, ErrNotOpen
	}
	return s.frame, nil
}

func (s *staticStream) Close() error {
	s.closed = true
	return nil
}
