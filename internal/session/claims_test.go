package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "65f0a1",
		"email": "a@b.com",
		"name":  "Asha",
		"exp":   exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	c, err := ParseClaims(signed)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if c.Subject != "65f0a1" || c.Email != "a@b.com" || c.Name != "Asha" {
		t.Errorf("unexpected claims: %+v", c)
	}
	if !c.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt: got %v, want %v", c.ExpiresAt, exp)
	}
	if c.Expired(exp.Add(-time.Minute)) {
		t.Error("should not be expired before exp")
	}
	if !c.Expired(exp.Add(time.Minute)) {
		t.Error("should be expired after exp")
	}
}

func TestParseClaimsOpaqueToken(t *testing.T) {
	if _, err := ParseClaims("t1"); err == nil {
		t.Error("expected an error for a non-JWT token")
	}
}
