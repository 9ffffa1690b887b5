package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"", 10, 10},
		{"x", 5, 5},
		{"-7", 0, -7},
		{"3.5", 9, 9},
		{" 1", 9, 9},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		name                  string
		offset, limit         int
		wantOffset, wantLimit int
	}{
		{"passthrough", 40, 25, 40, 25},
		{"negative offset", -1, 25, 0, 25},
		{"zero limit takes default", 0, 0, 0, 20},
		{"negative limit takes default", 0, -5, 0, 20},
		{"limit capped", 0, 500, 0, 100},
	}
	for _, tc := range cases {
		o, l := ClampPage(tc.offset, tc.limit, 20, 100)
		if o != tc.wantOffset || l != tc.wantLimit {
			t.Errorf("%s: ClampPage(%d, %d) = (%d, %d), want (%d, %d)",
				tc.name, tc.offset, tc.limit, o, l, tc.wantOffset, tc.wantLimit)
		}
	}
}
