package models

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name          string
		userID        int64
		username      string
		discriminator int
		roles         []int64
		wantErr       bool
	}{
		{"valid", 575252669443211264, "roycemore", 42, []int64{1, 2}, false},
		{"new username system", 1, "roycemore", 0, nil, false},
		{"negative id", -1, "roycemore", 1, nil, true},
		{"long name", 1, strings.Repeat("a", 33), 1, nil, true},
		{"discriminator too high", 1, "a", 10000, nil, true},
		{"negative role", 1, "a", 1, []int64{-5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.userID, tt.username, tt.discriminator, tt.roles)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("expected ErrInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !u.InGuild {
				t.Error("new users should be in the guild")
			}
		})
	}
}

func TestUserString(t *testing.T) {
	u := User{Name: "royce", Discriminator: 7}
	if got := u.String(); got != "royce#0007" {
		t.Errorf("got %q", got)
	}
	u.Discriminator = 0
	if got := u.String(); got != "royce" {
		t.Errorf("got %q", got)
	}
}

func TestNewInfraction(t *testing.T) {
	inf, err := NewInfraction(10, 20, "spam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inf.Active {
		t.Error("new infractions should be active")
	}

	if _, err := NewInfraction(10, 20, ""); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty reason, got %v", err)
	}
	if _, err := NewInfraction(10, 20, strings.Repeat("x", MaxReasonLength+1)); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for long reason, got %v", err)
	}
}
