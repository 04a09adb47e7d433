package utils

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("0c7b7c2e-1111-2222-3333-444455556666", "student")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != "0c7b7c2e-1111-2222-3333-444455556666" {
		t.Errorf("user_id = %q", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("abc", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := VerifyToken(token + "x"); err == nil {
		t.Error("tampered token must not verify")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := GenerateToken("abc", "teacher")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := VerifyToken(token); err == nil {
		t.Error("token signed with another secret must not verify")
	}
}

func TestGenerateTokenWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := GenerateToken("abc", "student"); err == nil {
		t.Error("missing JWT_SECRET must be an error")
	}
}
