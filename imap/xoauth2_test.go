package imap

import "testing"

func TestBuildXOAuth2Token(t *testing.T) {
	got := BuildXOAuth2Token("user@host", "abcde")
	want := "dXNlcj11c2VyQGhvc3QBYXV0aD1CZWFyZXIgYWJjZGUBAQ=="
	if got != want {
		t.Fatalf("BuildXOAuth2Token = %q, want %q", got, want)
	}
}
