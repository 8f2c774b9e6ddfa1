package camera

import (
	"image/color"
	"image/draw"
)

// mascotColors tints the overlay badge per location, standing in for the
// per-location mascot glyphs of the web view.
var mascotColors = map[string]color.RGBA{
	"fortress": {R: 0x8d, G: 0x6e, B: 0x63, A: 0xff},
	"well":     {R: 0x42, G: 0xa5, B: 0xf5, A: 0xff},
	"tower":    {R: 0x78, G: 0x90, B: 0x9c, A: 0xff},
	"church":   {R: 0xff, G: 0xca, B: 0x28, A: 0xff},
	"museum":   {R: 0xab, G: 0x47, B: 0xbc, A: 0xff},
	"peak":     {R: 0x66, G: 0xbb, B: 0x6a, A: 0xff},
	"square":   {R: 0xff, G: 0x70, B: 0x43, A: 0xff},
	"dino":     {R: 0x26, G: 0xa6, B: 0x9a, A: 0xff},
}

var defaultMascotColor = color.RGBA{R: 0x6d, G: 0x4c, B: 0x41, A: 0xff} // bear brown

// MascotOverlay renders a solid badge anchored at the lower center of
// the frame, mirroring where the web mascot floats.
type MascotOverlay struct {
	loaded bool
}

// NewMascotOverlay returns a loaded overlay. The loaded flag exists so
// callers can model the asset-loading window during which captures must
// be rejected.
func NewMascotOverlay() *MascotOverlay {
	return &MascotOverlay{loaded: true}
}

func (o *MascotOverlay) Ready() bool { return o.loaded }

func (o *MascotOverlay) Draw(frame draw.Image, locationKey string) {
	c, ok := mascotColors[locationKey]
	if !ok {
		c = defaultMascotColor
	}

	b := frame.Bounds()
	size := b.Dx() / 5
	if size < 8 {
		size = 8
	}
	cx := b.Min.X + b.Dx()/2
	top := b.Max.Y - b.Dy()/5 - size

	for y := top; y < top+size && y < b.Max.Y; y++ {
		for x := cx - size/2; x < cx+size/2 && x < b.Max.X; x++ {
			if x >= b.Min.X && y >= b.Min.Y {
				frame.Set(x, y, c)
			}
		}
	}
}
