package model

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "lowercases scheme and host",
			raw:  "HTTPS://Example.COM/Articles/One",
			want: "https://example.com/Articles/One",
		},
		{
			name: "strips fragment",
			raw:  "https://example.com/a#section-2",
			want: "https://example.com/a",
		},
		{
			name: "trims trailing slash",
			raw:  "https://example.com/a/",
			want: "https://example.com/a",
		},
		{
			name: "keeps query",
			raw:  "https://example.com/a?id=5",
			want: "https://example.com/a?id=5",
		},
		{
			name: "unparseable falls back to trimmed raw",
			raw:  "  not a url/ ",
			want: "not a url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.raw); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
