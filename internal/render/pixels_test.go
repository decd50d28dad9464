package render

import (
	"image/color"
	"testing"
)

func TestFillPaletteRGBAClampsIndex(t *testing.T) {
	palette := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}}
	buf := make([]byte, 12)
	fillPaletteRGBA(buf, []uint8{0, 1, 9}, palette)

	want := []byte{1, 0, 0, 255, 0, 2, 0, 255, 0, 2, 0, 255}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d: got %d want %d (%v)", i, buf[i], want[i], buf)
		}
	}
}

func TestFillPaletteRGBAEmptyPaletteClears(t *testing.T) {
	buf := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	fillPaletteRGBA(buf, []uint8{3, 4}, nil)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not cleared: %v", i, buf)
		}
	}
}

func TestFillMaskRGBA(t *testing.T) {
	tint := color.RGBA{R: 200, G: 100, B: 0}
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 7
	}
	FillMaskRGBA(buf, []float32{0, 0.25, 1, 3}, tint)

	if buf[3] != 0 || buf[0] != 0 {
		t.Fatalf("zero intensity should be transparent, got %v", buf[:4])
	}
	if buf[7] == 0 || buf[7] >= buf[11] {
		t.Fatalf("alpha should grow with intensity, got %d then %d", buf[7], buf[11])
	}
	if buf[8] != 200 || buf[9] != 100 || buf[11] != 150 {
		t.Fatalf("full intensity should use the tint at max alpha, got %v", buf[8:12])
	}
	for i := 12; i < 16; i++ {
		if buf[i] != buf[i-4] {
			t.Fatalf("intensity above 1 should clamp, got %v", buf[8:16])
		}
	}
}
