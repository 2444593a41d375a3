package utils

import (
	"errors"
	"testing"
)

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{name: "simple", email: "minh.anh@example.com", expected: "minh.anh"},
		{name: "uppercase", email: "Nguyen.Van@Example.com", expected: "nguyen.van"},
		{name: "strips invalid chars", email: "an+lead!@example.com", expected: "anlead"},
		{name: "no at sign", email: "plainname", expected: "plainname"},
		{name: "empty local part", email: "@example.com", expected: "hocvien"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := UsernameFromEmail(tc.email)
			if got != tc.expected {
				t.Fatalf("UsernameFromEmail(%q) = %q, want %q", tc.email, got, tc.expected)
			}
		})
	}
}

func TestDisambiguateUsername(t *testing.T) {
	taken := map[string]bool{
		"minh":  true,
		"minh1": true,
		"minh2": true,
	}
	isTaken := func(name string) bool { return taken[name] }

	if got := DisambiguateUsername("free", isTaken); got != "free" {
		t.Fatalf("expected untaken base to pass through, got %q", got)
	}
	if got := DisambiguateUsername("minh", isTaken); got != "minh3" {
		t.Fatalf("expected first free suffix, got %q", got)
	}
}

func TestIsValidClockTime(t *testing.T) {
	valid := []string{"00:00", "08:30", "23:59"}
	invalid := []string{"24:00", "8:30pm", "0830", "12:60", "abc"}

	for _, v := range valid {
		if !IsValidClockTime(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}
	for _, v := range invalid {
		if IsValidClockTime(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 3 || d.Day() != 15 {
		t.Fatalf("unexpected date: %v", d)
	}

	if _, err := ParseDate("15/03/2026"); err == nil {
		t.Fatalf("expected error for wrong format")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"admin", "giangvien", "academic_staff", "sales_staff", "finance_staff", "hocvien"} {
		if !IsValidRole(role) {
			t.Errorf("expected %q to be a valid role", role)
		}
	}
	if IsValidRole("superuser") {
		t.Errorf("expected unknown role to be rejected")
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	if !IsDuplicateKeyError(errors.New("Error 1062: Duplicate entry 'a@b.com' for key 'email'")) {
		t.Fatalf("expected MySQL 1062 to be detected")
	}
	if IsDuplicateKeyError(errors.New("connection refused")) {
		t.Fatalf("unrelated error misclassified")
	}
	if IsDuplicateKeyError(nil) {
		t.Fatalf("nil error misclassified")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword("s3cret-pass", hash) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Fatalf("wrong password accepted")
	}
}
