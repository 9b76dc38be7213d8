package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseTestToken(t *testing.T, signed, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		t.Fatalf("token parse failed: %v", err)
	}
	if !token.Valid {
		t.Fatal("expected valid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	return claims
}

func TestIssueTokenCarriesSubjectAndRole(t *testing.T) {
	userID := primitive.NewObjectID()

	signed, err := issueToken(userID, "admin", "test-secret", 2*time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	claims := parseTestToken(t, signed, "test-secret")
	if claims["sub"] != userID.Hex() {
		t.Fatalf("expected sub %s, got %v", userID.Hex(), claims["sub"])
	}
	if claims["role"] != "admin" {
		t.Fatalf("expected role admin, got %v", claims["role"])
	}
}

func TestIssueTokenExpiry(t *testing.T) {
	signed, err := issueToken(primitive.NewObjectID(), "user", "test-secret", 2*time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	claims := parseTestToken(t, signed, "test-secret")
	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("expected numeric exp claim")
	}

	remaining := time.Until(time.Unix(int64(exp), 0))
	if remaining <= time.Hour || remaining > 2*time.Hour {
		t.Fatalf("expected roughly 2h lifetime, got %v", remaining)
	}
}

func TestIssueTokenRejectedWithWrongSecret(t *testing.T) {
	signed, err := issueToken(primitive.NewObjectID(), "user", "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	_, err = jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	signed, err := issueToken(primitive.NewObjectID(), "user", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	_, err = jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
