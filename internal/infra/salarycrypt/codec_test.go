package salarycrypt

import (
	"errors"
	"testing"

	"payscope/internal/domain"
)

func TestRoundTrip(t *testing.T) {
	codec := New("test-secret")
	for _, value := range []float64{1, 85000, 123456.78, 0.5} {
		encoded, err := codec.Encrypt(value)
		if err != nil {
			t.Fatalf("encrypt %v: %v", value, err)
		}
		if encoded == "" {
			t.Fatalf("encrypt %v: empty output", value)
		}
		decoded, err := codec.Decrypt(encoded)
		if err != nil {
			t.Fatalf("decrypt %v: %v", value, err)
		}
		if decoded != value {
			t.Fatalf("round trip: expected %v, got %v", value, decoded)
		}
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	codec := New("test-secret")
	first, err := codec.Encrypt(85000)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := codec.Encrypt(85000)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct ciphertexts for repeated encryptions")
	}
	for _, encoded := range []string{first, second} {
		decoded, err := codec.Decrypt(encoded)
		if err != nil || decoded != 85000 {
			t.Fatalf("decrypt: got %v, %v", decoded, err)
		}
	}
}

func TestEncrypt_ZeroMeansUnknown(t *testing.T) {
	codec := New("test-secret")
	encoded, err := codec.Encrypt(0)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if encoded != "" {
		t.Fatalf("expected empty output for unknown salary, got %q", encoded)
	}
	decoded, err := codec.Decrypt("")
	if err != nil || decoded != 0 {
		t.Fatalf("decrypt empty: got %v, %v", decoded, err)
	}
}

func TestDecrypt_WrongSecret(t *testing.T) {
	encoded, err := New("right-secret").Encrypt(85000)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	_, err = New("wrong-secret").Decrypt(encoded)
	if !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	codec := New("test-secret")
	encoded, err := codec.Encrypt(85000)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	tampered := []byte(encoded)
	last := len(tampered) - 1
	if tampered[last] == '0' {
		tampered[last] = '1'
	} else {
		tampered[last] = '0'
	}
	if _, err := codec.Decrypt(string(tampered)); !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecrypt_LegacyPlaintext(t *testing.T) {
	codec := New("test-secret")
	decoded, err := codec.Decrypt("72000")
	if err != nil {
		t.Fatalf("decrypt legacy: %v", err)
	}
	if decoded != 72000 {
		t.Fatalf("expected 72000, got %v", decoded)
	}
	decoded, err = codec.Decrypt("72000.50")
	if err != nil || decoded != 72000.50 {
		t.Fatalf("decrypt legacy decimal: got %v, %v", decoded, err)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	codec := New("test-secret")
	for _, encoded := range []string{"not-a-number", "zz" + string(make([]byte, 200))} {
		if _, err := codec.Decrypt(encoded); !errors.Is(err, domain.ErrDecryptionFailed) {
			t.Fatalf("%q: expected ErrDecryptionFailed, got %v", encoded, err)
		}
	}
}
