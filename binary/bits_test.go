package binary

import "testing"

func TestRotateSpotChecks(t *testing.T) {
	if got := RotateLeft32(0x0000FF00, 8); got != 0x00FF0000 {
		t.Errorf("RotateLeft32(0x0000FF00, 8) = %#08x, want 0x00FF0000", got)
	}
	if got := RotateLeft32(0x0000FF00, 32); got != 0x0000FF00 {
		t.Errorf("RotateLeft32(0x0000FF00, 32) = %#08x, want 0x0000FF00", got)
	}
}

func TestByteSwapSpotChecks(t *testing.T) {
	if got := ByteSwap16(0x1234); got != 0x3412 {
		t.Errorf("ByteSwap16(0x1234) = %#04x, want 0x3412", got)
	}
	if got := ByteSwap32(0xDEADBEEF); got != 0xEFBEADDE {
		t.Errorf("ByteSwap32(0xDEADBEEF) = %#08x, want 0xEFBEADDE", got)
	}
}

func TestByteSwapInvolution(t *testing.T) {
	for _, x := range []uint16{0, 1, 0xFFFF, 0x00FF, 0xAB12} {
		if got := ByteSwap16(ByteSwap16(x)); got != x {
			t.Errorf("ByteSwap16(ByteSwap16(%#04x)) = %#04x", x, got)
		}
	}
	for _, x := range []uint32{0, 1, 0xFFFFFFFF, 0x12345678, 0xDEADBEEF} {
		if got := ByteSwap32(ByteSwap32(x)); got != x {
			t.Errorf("ByteSwap32(ByteSwap32(%#08x)) = %#08x", x, got)
		}
	}
	for _, x := range []uint64{0, 1, 0xFFFFFFFFFFFFFFFF, 0x0123456789ABCDEF} {
		if got := ByteSwap64(ByteSwap64(x)); got != x {
			t.Errorf("ByteSwap64(ByteSwap64(%#016x)) = %#016x", x, got)
		}
	}
}

func TestRotateRightIsRotateLeftComplement(t *testing.T) {
	widths := []int{8, 16, 32}
	for _, w := range widths {
		for n := 0; n < w; n++ {
			x := uint32(0x9A3C5F10)
			left := RotateLeft32(x, n)
			right := RotateRight32(x, 32-n)
			if left != right {
				t.Errorf("width %d n %d: RotateLeft32(x,n)=%#08x != RotateRight32(x,32-n)=%#08x", w, n, left, right)
			}
		}
	}
}

func TestPopCountFullEnumeration16(t *testing.T) {
	for x := 0; x <= 0xFFFF; x++ {
		want := 0
		for v := x; v != 0; v &= v - 1 {
			want++
		}
		if got := PopCount16(uint16(x)); got != want {
			t.Fatalf("PopCount16(%#04x) = %d, want %d", x, got, want)
		}
	}
}

func TestBitScanForwardReverse(t *testing.T) {
	if got := BitScanForward(0); got != -1 {
		t.Errorf("BitScanForward(0) = %d, want -1", got)
	}
	if got := BitScanReverse(0); got != -1 {
		t.Errorf("BitScanReverse(0) = %d, want -1", got)
	}
	if got := BitScanForward(0b1000); got != 3 {
		t.Errorf("BitScanForward(0b1000) = %d, want 3", got)
	}
	if got := BitScanReverse(0b1011); got != 3 {
		t.Errorf("BitScanReverse(0b1011) = %d, want 3", got)
	}
}
