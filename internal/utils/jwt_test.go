package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	at, err := NewAccessToken(secret, 42, "PASSENGER", 15)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if at.Token == "" {
		t.Fatal("empty token")
	}
	if until := time.Until(at.Exp); until < 14*time.Minute || until > 16*time.Minute {
		t.Fatalf("unexpected expiry: %v", at.Exp)
	}

	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse failed: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Fatalf("wrong sub claim: %v", claims["sub"])
	}
	if role, _ := claims["role"].(string); role != "PASSENGER" {
		t.Fatalf("wrong role claim: %v", claims["role"])
	}
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("right-secret", 1, "DRIVER", 5)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	_, err = jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	rt1, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("refresh token failed: %v", err)
	}
	rt2, _ := NewRefreshToken(30)
	if len(rt1.Raw) != 96 {
		t.Fatalf("unexpected raw length %d", len(rt1.Raw))
	}
	if rt1.Raw == rt2.Raw {
		t.Fatal("refresh tokens are not unique")
	}
	if HashRefreshRaw(rt1.Raw) != HashRefreshRaw(rt1.Raw) {
		t.Fatal("hash is not deterministic")
	}
	if HashRefreshRaw(rt1.Raw) == HashRefreshRaw(rt2.Raw) {
		t.Fatal("different tokens hashed to the same value")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
