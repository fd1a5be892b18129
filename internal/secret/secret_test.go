package secret

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestTokenStore(t *testing.T) {
	s := New(keyring.NewArrayKeyring(nil))

	if _, err := s.Token(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Token() on empty ring = %v, want ErrNotFound", err)
	}
	if err := s.SaveToken("abc"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	got, err := s.Token()
	if err != nil || got != "abc" {
		t.Fatalf("Token() = %q, %v", got, err)
	}
	if err := s.SaveToken("def"); err != nil {
		t.Fatalf("SaveToken overwrite: %v", err)
	}
	if got, _ := s.Token(); got != "def" {
		t.Fatalf("Token() after overwrite = %q", got)
	}
	if err := s.DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := s.DeleteToken(); err != nil {
		t.Fatalf("DeleteToken twice: %v", err)
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Token() after delete = %v", err)
	}
}
