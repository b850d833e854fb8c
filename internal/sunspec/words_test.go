// internal/sunspec/words_test.go
package sunspec

import "testing"

func TestDecodeSigned16_Positive(t *testing.T) {
	for raw := 0; raw <= 32767; raw++ {
		if got := DecodeSigned16(uint16(raw)); got != int32(raw) {
			t.Fatalf("raw=%d: got %d want %d", raw, got, raw)
		}
	}
}

func TestDecodeSigned16_FoldZone(t *testing.T) {
	for raw := 32768; raw < 32768+2000; raw++ {
		want := int32(32768 - raw)
		if got := DecodeSigned16(uint16(raw)); got != want {
			t.Fatalf("raw=%d: got %d want %d", raw, got, want)
		}
		if DecodeSigned16(uint16(raw)) > 0 {
			t.Fatalf("raw=%d: expected non-positive", raw)
		}
	}
}

func TestDecodeSigned16_OffsetFromMax(t *testing.T) {
	for raw := 34768; raw <= 65535; raw++ {
		want := int32(raw - 65535)
		if got := DecodeSigned16(uint16(raw)); got != want {
			t.Fatalf("raw=%d: got %d want %d", raw, got, want)
		}
	}
}

func TestDecodeSigned16_Boundaries(t *testing.T) {
	cases := []struct {
		raw  uint16
		want int32
	}{
		{0, 0},
		{32767, 32767},
		{32768, 0},
		{32769, -1},
		{34767, -1999},
		{34768, -30767},
		{65500, -35},
		{65535, 0},
	}
	for _, c := range cases {
		if got := DecodeSigned16(c.raw); got != c.want {
			t.Fatalf("raw=%d: got %d want %d", c.raw, got, c.want)
		}
	}
}

func TestDecodeInt16_TwosComplement(t *testing.T) {
	if got := DecodeInt16(0xFFFF); got != -1 {
		t.Fatalf("got %d want -1", got)
	}
	if got := DecodeInt16(0x8000); got != -32768 {
		t.Fatalf("got %d want -32768", got)
	}
}

func TestDecodeUint_WordOrder(t *testing.T) {
	words := []uint16{0x5375, 0x6e53}
	if got := DecodeUint(words, 2); got != 0x53756e53 {
		t.Fatalf("got 0x%x want 0x53756e53", got)
	}
	if got := DecodeUint(words, 1); got != 0x5375 {
		t.Fatalf("got 0x%x want 0x5375", got)
	}
}

func TestDecodeUint_ShortInputPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on short input")
		}
	}()
	DecodeUint([]uint16{1}, 2)
}

func TestDecodeString_RoundTrip(t *testing.T) {
	words := PackString("OUTBACK_POWER", 32)
	if len(words) != 16 {
		t.Fatalf("expected 16 words, got %d", len(words))
	}
	if got := DecodeString(words, 32); got != "OUTBACK_POWER" {
		t.Fatalf("got %q want %q", got, "OUTBACK_POWER")
	}
}

func TestDecodeString_HighByteFirst(t *testing.T) {
	if got := DecodeString([]uint16{0x5375, 0x6e53}, 4); got != "SunS" {
		t.Fatalf("got %q want SunS", got)
	}
}

func TestDecodeInt_SignExtendsByWidth(t *testing.T) {
	cases := []struct {
		words []uint16
		want  int64
	}{
		{[]uint16{0xFFFF}, -1},
		{[]uint16{0xFFFF, 0xFFFE}, -2},
		{[]uint16{0xFFFF, 0xFFFF, 0xFFFD}, -3},
		{[]uint16{0x0000, 0x8000, 0x0000}, 0x80000000},
		{[]uint16{0xFFFF, 0xFFFF, 0xFFFF, 0xFFFC}, -4},
	}

	for _, c := range cases {
		if got := DecodeInt(c.words, len(c.words)); got != c.want {
			t.Fatalf("DecodeInt(%04x) got=%d want=%d", c.words, got, c.want)
		}
	}
}
