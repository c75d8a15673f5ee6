package sms

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"local 10 digits", "5512345678", "525512345678", true},
		{"local with separators", "55 1234-5678", "525512345678", true},
		{"already international", "+52 55 1234 5678", "525512345678", true},
		{"11 digits without plus", "15551234567", "15551234567", true},
		{"too short", "12345", "", false},
		{"too long", "12345678901234567", "", false},
		{"empty", "", "", false},
		{"letters only", "no-phone", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizePhone(tc.raw, "52")
			if ok != tc.ok {
				t.Fatalf("NormalizePhone(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
