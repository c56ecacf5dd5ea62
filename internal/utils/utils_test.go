package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashPasswordFormat(t *testing.T) {
	encoded, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	salt, key, ok := strings.Cut(encoded, ":")
	if !ok {
		t.Fatalf("HashPassword() = %q, want salt:key", encoded)
	}
	if len(salt) != 2*saltLen || len(key) != 2*keyLen {
		t.Errorf("hex lengths = %d:%d, want %d:%d", len(salt), len(key), 2*saltLen, 2*keyLen)
	}

	again, _ := HashPassword("correct horse")
	if again == encoded {
		t.Errorf("two hashes of the same password are identical")
	}
}

func TestVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		encoded string
		plain   string
		want    bool
	}{
		{"match", encoded, "correct horse", true},
		{"wrong password", encoded, "battery staple", false},
		{"empty stored", "", "correct horse", false},
		{"no separator", "abcdef", "correct horse", false},
		{"bad hex salt", "zz:" + strings.Split(encoded, ":")[1], "correct horse", false},
		{"empty key", strings.Split(encoded, ":")[0] + ":", "correct horse", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.encoded, tt.plain); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "admin", "ADMIN", 5)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(tok.Exp) <= 0 {
		t.Errorf("Exp = %v is not in the future", tok.Exp)
	}
	claims, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if claims.Subject != "admin" || claims.Role != "ADMIN" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ParseAccessToken("other", tok.Token); err == nil {
		t.Errorf("token verified with the wrong secret")
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	expired, _ := NewAccessToken("secret", "admin", "ADMIN", -1)
	if _, err := ParseAccessToken("secret", expired.Token); err == nil {
		t.Errorf("expired token accepted")
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "role": "ADMIN"}).
		SignedString([]byte("secret"))
	if _, err := ParseAccessToken("secret", noExp); err == nil {
		t.Errorf("token without exp accepted")
	}

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "admin", "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if _, err := ParseAccessToken("secret", hs512); err == nil {
		t.Errorf("HS512 token accepted")
	}
}
