package secrets_test

import (
	"testing"

	"github.com/autofeedr/autofeedr/internal/secrets"
)

func TestEncryptDecrypt(t *testing.T) {
	key, err := secrets.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	box, err := secrets.NewBox(key)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	ciphertext, err := box.Encrypt("li-token-abc123")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ciphertext == "li-token-abc123" {
		t.Fatalf("ciphertext equals plaintext")
	}

	plain, err := box.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != "li-token-abc123" {
		t.Fatalf("round trip mismatch: got %q", plain)
	}
}

func TestNewBox_MissingKey(t *testing.T) {
	if _, err := secrets.NewBox(""); err != secrets.ErrMissingKey {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestNewBox_WrongSize(t *testing.T) {
	if _, err := secrets.NewBox("c2hvcnQ="); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key, _ := secrets.GenerateKey()
	box, _ := secrets.NewBox(key)

	ciphertext, err := box.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	otherKey, _ := secrets.GenerateKey()
	otherBox, _ := secrets.NewBox(otherKey)
	if _, err := otherBox.Decrypt(ciphertext); err == nil {
		t.Fatalf("expected authentication failure with wrong key")
	}
}
