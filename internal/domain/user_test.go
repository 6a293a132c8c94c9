package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewUserNormalizesAndHashes(t *testing.T) {
	u, err := NewUser("  Alice@Example.COM ", "s3cret", time.Now())
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}

	if u.Email != "alice@example.com" {
		t.Errorf("email = %q", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret" {
		t.Fatalf("password must be hashed, got %q", u.PasswordHash)
	}
	if !u.CheckPassword("s3cret") {
		t.Error("CheckPassword must accept the original password")
	}
	if u.CheckPassword("wrong") {
		t.Error("CheckPassword must reject a wrong password")
	}
}

func TestNewUserRequiresFields(t *testing.T) {
	_, err := NewUser(" ", "", time.Now())
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("fields = %v", ve.Fields)
	}
}

func TestSetPasswordChangesHash(t *testing.T) {
	u, err := NewUser("bob@example.com", "first", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	before := u.PasswordHash

	if err := u.SetPassword("second", time.Now()); err != nil {
		t.Fatal(err)
	}
	if u.PasswordHash == before {
		t.Error("hash must change with the password")
	}
	if !u.CheckPassword("second") || u.CheckPassword("first") {
		t.Error("only the new password must match")
	}
}

func TestNewUserRejectsLongPassword(t *testing.T) {
	if _, err := NewUser("carl@example.com", strings.Repeat("x", MaxPasswordBytes), time.Now()); err != nil {
		t.Fatalf("72-byte password must be accepted: %v", err)
	}

	_, err := NewUser("carl@example.com", strings.Repeat("x", MaxPasswordBytes+1), time.Now())
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Message != "Password must be at most 72 bytes" {
		t.Errorf("message = %q", ve.Message)
	}

	u := &User{}
	if err := u.SetPassword(strings.Repeat("x", 100), time.Now()); !IsValidation(err) {
		t.Errorf("SetPassword: expected validation error, got %v", err)
	}
}
