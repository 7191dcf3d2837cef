// Package icon draws the clock icon used by the window, the fyne tray and
// the tray companion.
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
)

var (
	face   = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	rim    = color.NRGBA{R: 0x19, G: 0x76, B: 0xD2, A: 0xFF}
	hands  = color.NRGBA{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF}
	accent = color.NRGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}
)

// DefaultSize is the edge length of the cached icon.
const DefaultSize = 64

var (
	once   sync.Once
	cached []byte
)

// PNG returns the DefaultSize icon, encoded once.
func PNG() []byte {
	once.Do(func() {
		cached = Encode(DefaultSize)
	})
	return cached
}

// Encode renders the icon at size×size and encodes it as PNG.
func Encode(size int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Draw(size)); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Draw renders a clock face showing ten past ten.
func Draw(size int) *image.NRGBA {
	if size < 16 {
		size = 16
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	r := c - 1
	border := math.Max(2, float64(size)/14)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			switch {
			case d <= r-border:
				img.SetNRGBA(x, y, face)
			case d <= r:
				img.SetNRGBA(x, y, rim)
			}
		}
	}

	width := math.Max(1.5, float64(size)/20)
	line(img, c, c, -60, r*0.45, width, hands) // hour hand at 10
	line(img, c, c, 60, r*0.7, width, hands)   // minute hand at 2
	dot(img, c, c, width*1.2, accent)
	return img
}

// line draws a thick segment from (cx, cy) at angle degrees clockwise from
// twelve o'clock.
func line(img *image.NRGBA, cx, cy, angle, length, width float64, col color.NRGBA) {
	rad := angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	steps := int(length * 2)
	for i := 0; i <= steps; i++ {
		t := float64(i) / 2
		dot(img, cx+dx*t, cy+dy*t, width/2, col)
	}
}

func dot(img *image.NRGBA, cx, cy, radius float64, col color.NRGBA) {
	b := img.Bounds()
	for y := int(cy - radius - 1); y <= int(cy+radius+1); y++ {
		for x := int(cx - radius - 1); x <= int(cx+radius+1); x++ {
			if !(image.Point{X: x, Y: y}).In(b) {
				continue
			}
			if math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) <= radius {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}
