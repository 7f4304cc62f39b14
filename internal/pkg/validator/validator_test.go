package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-03-15"); !ok {
		t.Error("IsValidDate(2025-03-15) = false, want true")
	}
	for _, bad := range []string{"15-03-2025", "2025/03/15", "2025-13-01", ""} {
		if _, ok := IsValidDate(bad); ok {
			t.Errorf("IsValidDate(%q) = true, want false", bad)
		}
	}
}

func TestIsValidClockTime(t *testing.T) {
	for _, good := range []string{"00:00", "09:00", "23:59"} {
		if _, ok := IsValidClockTime(good); !ok {
			t.Errorf("IsValidClockTime(%q) = false, want true", good)
		}
	}
	for _, bad := range []string{"24:00", "9am", "09:60", ""} {
		if _, ok := IsValidClockTime(bad); ok {
			t.Errorf("IsValidClockTime(%q) = true, want false", bad)
		}
	}
}

func TestIsValidShortCode(t *testing.T) {
	for _, good := range []string{"HQ1", "qcc-juba", "SITE-042"} {
		if !IsValidShortCode(good) {
			t.Errorf("IsValidShortCode(%q) = false, want true", good)
		}
	}
	for _, bad := range []string{"ab", "this-code-is-way-too-long", "a b", ""} {
		if IsValidShortCode(bad) {
			t.Errorf("IsValidShortCode(%q) = true, want false", bad)
		}
	}
}

func TestIsValidIP(t *testing.T) {
	for _, bad := range []string{"", "unknown", "::1", "127.0.0.1"} {
		if IsValidIP(bad) {
			t.Errorf("IsValidIP(%q) = true, want false", bad)
		}
	}
	if !IsValidIP("41.223.56.10") {
		t.Error("IsValidIP(41.223.56.10) = false, want true")
	}
}
