package utils

import (
	"testing"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain https", url: "https://github.com/golang/go", want: "github.com"},
		{name: "port and query", url: "http://localhost:3000/api?x=1", want: "localhost"},
		{name: "subdomain kept", url: "https://docs.google.com/document/d/1", want: "docs.google.com"},
		{name: "upper case host", url: "https://GitHub.COM/", want: "github.com"},
		{name: "userinfo stripped", url: "https://user:pw@example.org/path", want: "example.org"},
		{name: "no scheme falls back", url: "not a url", want: "not a url"},
		{name: "bad escape falls back", url: "http://%zz", want: "http://%zz"},
		{name: "bare word falls back", url: "example", want: "example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDomain(tt.url); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsTrackableURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com", true},
		{"http://example.com/a", true},
		{"chrome://extensions", false},
		{"chrome-extension://abcdef/popup.html", false},
		{"about:blank", false},
		{"edge://settings", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		if got := IsTrackableURL(tt.url); got != tt.want {
			t.Errorf("IsTrackableURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
