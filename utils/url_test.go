package utils

import "testing"

func TestAbsoluteImageURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"//cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"/covers/a.jpg", "https://covers/a.jpg"},
		{" //cdn.example.com/a.jpg ", "https://cdn.example.com/a.jpg"},
	}
	for _, tc := range cases {
		if got := AbsoluteImageURL(tc.in); got != tc.want {
			t.Errorf("AbsoluteImageURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAbsoluteImageURLIdempotent(t *testing.T) {
	inputs := []string{
		"//cdn.example.com/a.jpg",
		"cdn.example.com/a.jpg",
		"https://cdn.example.com/a.jpg",
	}
	for _, in := range inputs {
		once := AbsoluteImageURL(in)
		if twice := AbsoluteImageURL(once); twice != once {
			t.Errorf("AbsoluteImageURL not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsLikelyImageURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://cdn.example.com/a.jpg", true},
		{"http://cdn.example.com/a.jpg", true},
		{"https://hostonly", false},
		{"https://host.no.path", false},
		{"//cdn.example.com/a.jpg", false},
		{"cdn.example.com/a.jpg", false},
		{"1", false},
		{"null", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsLikelyImageURL(tc.in); got != tc.want {
			t.Errorf("IsLikelyImageURL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
