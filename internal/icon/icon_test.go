package icon

import (
	"bytes"
	"image/png"
	"testing"
)

func TestPNGDecodes(t *testing.T) {
	data := PNG()
	if len(data) == 0 {
		t.Fatal("PNG() returned no data")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultSize || b.Dy() != DefaultSize {
		t.Errorf("bounds = %v", b)
	}
	if !bytes.Equal(PNG(), data) {
		t.Error("PNG() should be cached")
	}
}

func TestDrawCornersTransparent(t *testing.T) {
	img := Draw(32)
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("corner should be transparent")
	}
	if _, _, _, a := img.At(16, 16).RGBA(); a == 0 {
		t.Error("centre should be painted")
	}
}

func TestDrawMinimumSize(t *testing.T) {
	if b := Draw(4).Bounds(); b.Dx() != 16 {
		t.Errorf("small sizes should clamp to 16, got %d", b.Dx())
	}
}
