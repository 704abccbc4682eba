package conv

import "testing"

func TestFormatters(t *testing.T) {
	var b [20]byte
	if got := string(U8Hex(b[:], 0x4F)); got != "4F" {
		t.Errorf("U8Hex = %q", got)
	}
	if got := string(U16Hex(b[:], 0xA001)); got != "A001" {
		t.Errorf("U16Hex = %q", got)
	}
	if got := string(U8Bin(b[:], 0b0100_0001)); got != "01000001" {
		t.Errorf("U8Bin = %q", got)
	}
	if got := string(Itoa(b[:], -96)); got != "-96" {
		t.Errorf("Itoa = %q", got)
	}
	if got := string(Itoa(b[:], 0)); got != "0" {
		t.Errorf("Itoa(0) = %q", got)
	}
	if got := string(Itoa(b[:], -1<<63)); got != "-9223372036854775808" {
		t.Errorf("Itoa(min) = %q", got)
	}
	if got := string(Utoa(b[:], 1<<64-1)); got != "18446744073709551615" {
		t.Errorf("Utoa(max) = %q", got)
	}
	if got := U8Bin(b[:4], 1); len(got) != 0 {
		t.Errorf("short buffer must yield empty slice, got %q", got)
	}
}
