package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestSignHMACSHA512_KnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	got, err := SignHMACSHA512("Jefe", []byte("what do ya want for nothing?"))
	if err != nil {
		t.Fatalf("SignHMACSHA512: %v", err)
	}
	want := "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737"
	if got != want {
		t.Errorf("digest = %s, want %s", got, want)
	}
}

func TestVerifyHMACSHA512(t *testing.T) {
	payload := []byte(`{"event":"charge.success"}`)
	sig, err := SignHMACSHA512("sk_test_secret", payload)
	if err != nil {
		t.Fatalf("SignHMACSHA512: %v", err)
	}

	tests := []struct {
		name    string
		secret  string
		payload []byte
		sig     string
		wantErr error
	}{
		{"valid", "sk_test_secret", payload, sig, nil},
		{"uppercase hex", "sk_test_secret", payload, strings.ToUpper(sig), nil},
		{"tampered body", "sk_test_secret", []byte(`{"event":"charge.failed"}`), sig, ErrInvalidSignature},
		{"wrong secret", "sk_other", payload, sig, ErrInvalidSignature},
		{"empty signature", "sk_test_secret", payload, "", ErrInvalidSignature},
		{"empty secret", "", payload, sig, ErrEmptySecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyHMACSHA512(tt.secret, tt.payload, tt.sig)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyHMACSHA512() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
