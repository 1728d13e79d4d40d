package core

import "testing"

func TestUtoa(t *testing.T) {
	tests := []struct {
		n    uint32
		want string
	}{
		{0, "0"},
		{7, "7"},
		{32, "32"},
		{4294967295, "4294967295"},
	}
	for _, tt := range tests {
		if got := utoa(tt.n); got != tt.want {
			t.Errorf("utoa(%d): expected %q, got %q", tt.n, tt.want, got)
		}
	}
}

func TestHex8(t *testing.T) {
	if got := hex8(0x06); got != "0x06" {
		t.Errorf("Expected 0x06, got %s", got)
	}
	if got := hex8(0xAF); got != "0xAF" {
		t.Errorf("Expected 0xAF, got %s", got)
	}
}
