package util

import (
	"errors"
	"strings"
	"testing"
	"time"

	"snaketests_backend/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *model.User {
	u := &model.User{Username: "dave"}
	u.ID = 7
	u.UUID = "2c4ff9c6-8a9c-4e8d-9ee9-4c3a5b8a0f11"
	return u
}

func TestParseJWTRoundTrip(t *testing.T) {
	token, issued, err := GenerateJWT(testUser(), PurposeReset, testSecret, 3*time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, PurposeReset, testSecret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
	if claims.ID != issued.ID || claims.ID == "" {
		t.Errorf("jti = %q, want %q", claims.ID, issued.ID)
	}
	if r := claims.Remaining(); r <= 0 || r > 3*time.Minute {
		t.Errorf("Remaining() = %v", r)
	}
}

func TestParseJWTFailsClosed(t *testing.T) {
	valid, _, err := GenerateJWT(testUser(), PurposeReset, testSecret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	expired, _, err := GenerateJWT(testUser(), PurposeReset, testSecret, -time.Second)
	if err != nil {
		t.Fatal(err)
	}
	session, _, err := GenerateJWT(testUser(), PurposeSession, testSecret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"expired", expired, testSecret},
		{"tampered payload", tampered, testSecret},
		{"wrong secret", valid, "another-secret-another-secret-xx"},
		{"malformed", "not-a-token", testSecret},
		{"empty", "", testSecret},
		{"session token used for reset", session, testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if claims, err := ParseJWT(tt.token, PurposeReset, tt.secret); err == nil {
				t.Fatalf("expected failure, got claims for user %d", claims.UserID)
			}
		})
	}
}

func TestParseJWTPurposeError(t *testing.T) {
	session, _, _ := GenerateJWT(testUser(), PurposeSession, testSecret, time.Minute)
	_, err := ParseJWT(session, PurposeReset, testSecret)
	if !errors.Is(err, ErrTokenPurpose) {
		t.Errorf("err = %v, want ErrTokenPurpose", err)
	}
}
