package security_test

import (
	"testing"

	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := security.HashSecret("very-secure-password", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashSecret returned empty string")
	}

	ok, err := security.VerifySecret("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifySecret returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifySecret failed for the correct secret")
	}

	ok, err = security.VerifySecret("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifySecret returned error for invalid secret: %v", err)
	}
	if ok {
		t.Fatal("VerifySecret returned true for incorrect secret")
	}
}

func TestVerifySecretBadHash(t *testing.T) {
	if _, err := security.VerifySecret("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestNormalizePIN(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1234", want: "1234"},
		{in: " 123456 ", want: "123456"},
		{in: "123", wantErr: true},
		{in: "1234567", wantErr: true},
		{in: "12a4", wantErr: true},
	}
	for _, tc := range cases {
		got, err := security.NormalizePIN(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestGenerateTerminalCode(t *testing.T) {
	code, err := security.GenerateTerminalCode(8)
	if err != nil {
		t.Fatalf("GenerateTerminalCode returned error: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("expected code of length 8, got %q", code)
	}

	if _, err := security.GenerateTerminalCode(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}
