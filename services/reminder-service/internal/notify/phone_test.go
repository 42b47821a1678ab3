package notify

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0541234567", "+972541234567", false},
		{"054-123-4567", "+972541234567", false},
		{"054 123 4567", "+972541234567", false},
		{"+972541234567", "+972541234567", false},
		{"972541234567", "+972541234567", false},
		{"+14155550100", "+14155550100", false},
		{"054123", "", true},       // too short for a local number
		{"+1", "", true},           // too short for international
		{"054abc4567", "", true},   // letters
		{"", "", true},             // empty
		{"05 41 23 45 67", "+972541234567", false},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizePhone(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizePhone(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
