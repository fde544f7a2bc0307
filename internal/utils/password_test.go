package utils

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("supersecret1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == "supersecret1" {
		t.Error("hash must be non-empty and not the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("supersecret1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("supersecret1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password must differ")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("supersecret1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct", "supersecret1", true},
		{"wrong", "supersecret2", false},
		{"empty", "", false},
		{"case sensitive", "Supersecret1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, hash); got != tt.want {
				t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}

	if CheckPassword("supersecret1", "not-a-bcrypt-hash") {
		t.Error("malformed hash accepted")
	}
	if CheckPassword("supersecret1", "") {
		t.Error("empty hash accepted")
	}
}
