package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid", username: "alice", wantErr: false},
		{name: "trimmed", username: "  bob  ", wantErr: false},
		{name: "max length", username: strings.Repeat("a", 20), wantErr: false},
		{name: "empty", username: "", wantErr: true},
		{name: "whitespace only", username: "   ", wantErr: true},
		{name: "too long", username: strings.Repeat("a", 21), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.username)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("NewUser(%q) error = %v, want ErrValidation", tt.username, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewUser(%q) unexpected error: %v", tt.username, err)
			}
			if u.ID == "" {
				t.Error("expected a generated user id")
			}
			if u.Username != strings.TrimSpace(tt.username) {
				t.Errorf("username = %q, want trimmed input", u.Username)
			}
		})
	}
}

func TestNewUserIDsUnique(t *testing.T) {
	seen := make(map[UserID]bool)
	for i := 0; i < 100; i++ {
		u, err := NewUser("alice")
		if err != nil {
			t.Fatal(err)
		}
		if seen[u.ID] {
			t.Fatalf("duplicate user id %s", u.ID)
		}
		seen[u.ID] = true
	}
}

func TestNewRoomName(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: "standup", wantErr: false},
		{name: "max length", raw: strings.Repeat("r", 30), wantErr: false},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "\t \n", wantErr: true},
		{name: "too long", raw: strings.Repeat("r", 31), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoomName(tt.raw)
			if tt.wantErr != (err != nil) {
				t.Fatalf("NewRoomName(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("error %v is not ErrValidation", err)
			}
		})
	}
}

func TestNewMessageText(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "valid", raw: "hi", want: "hi"},
		{name: "trimmed", raw: "  hi  ", want: "hi"},
		{name: "max length", raw: strings.Repeat("m", 500), want: strings.Repeat("m", 500)},
		{name: "empty after trim", raw: "   ", wantErr: true},
		{name: "too long", raw: strings.Repeat("m", 501), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMessageText(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
