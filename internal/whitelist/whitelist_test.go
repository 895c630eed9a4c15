package whitelist

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsSenderTrusted(t *testing.T) {
	c := NewChecker([]string{"corp.example", "Partner.Example "}, zap.NewNop())

	cases := []struct {
		from string
		want bool
	}{
		{"alice@corp.example", true},
		{"bob@mail.corp.example", true},
		{"carol@partner.example", true},
		{"mallory@evil.example", false},
		{"mallory@corp.example.evil.example", false},
		{"not-an-address", false},
		{"two@ats@corp.example", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.IsSenderTrusted(tc.from); got != tc.want {
			t.Fatalf("IsSenderTrusted(%q) = %v, want %v", tc.from, got, tc.want)
		}
	}
}

func TestIsURLTrusted(t *testing.T) {
	c := NewChecker([]string{"corp.example"}, zap.NewNop())

	cases := []struct {
		url  string
		want bool
	}{
		{"https://corp.example/login", true},
		{"http://docs.corp.example/page", true},
		{"corp.example/path", true},
		{"https://corp.example.evil.example/", false},
		{"https://evil.example/corp.example", false},
		{"://broken", false},
	}
	for _, tc := range cases {
		if got := c.IsURLTrusted(tc.url); got != tc.want {
			t.Fatalf("IsURLTrusted(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestEmptyWhitelistTrustsNothing(t *testing.T) {
	c := NewChecker(nil, zap.NewNop())
	if c.IsSenderTrusted("alice@corp.example") {
		t.Fatalf("empty whitelist trusted a sender")
	}
	if c.IsURLTrusted("https://corp.example/") {
		t.Fatalf("empty whitelist trusted a URL")
	}
}
