package core

import (
	"strings"
	"testing"
)

func TestNewRoomIDLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := string(NewRoomID(6))
		if len(id) != 6 {
			t.Fatalf("id %q has length %d, want 6", id, len(id))
		}
		for _, r := range id {
			if !strings.ContainsRune(roomIDAlphabet, r) {
				t.Fatalf("id %q contains %q outside the alphabet", id, r)
			}
		}
	}
}

func TestNewRoomIDDefaultLength(t *testing.T) {
	if got := len(NewRoomID(0)); got != DefaultRoomIDLength {
		t.Errorf("length = %d, want %d", got, DefaultRoomIDLength)
	}
	if got := len(NewRoomID(-3)); got != DefaultRoomIDLength {
		t.Errorf("length = %d, want %d", got, DefaultRoomIDLength)
	}
}

func TestNormalizeRoomID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ABC234", "abc234"},
		{"  abc234  ", "abc234"},
		{"aBc234", "abc234"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(NormalizeRoomID(tt.raw)); got != tt.want {
			t.Errorf("NormalizeRoomID(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
