package utf7

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		utf8, wire string
	}{
		{"INBOX", "INBOX"},
		{"Sent Items", "Sent Items"},
		{"Отправленные", "&BBcEPwRABDgEQQQ,BEAEMAQyBDsENQQ9BEwEPQ-"},
		{"~peter/mail/日本語/台北", "~peter/mail/&ZeVnLIqe-/&U,BTFw-"},
	}
	for _, c := range cases {
		got := Encode(c.utf8)
		if got != c.wire {
			t.Errorf("Encode(%q) = %q, want %q", c.utf8, got, c.wire)
		}
		back, err := Decode(c.wire)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", c.wire, err)
		}
		if back != c.utf8 {
			t.Errorf("Decode(%q) = %q, want %q", c.wire, back, c.utf8)
		}
	}
}

func TestDecodeLiteralAmpersand(t *testing.T) {
	got, err := Decode("Foo &- Bar")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Foo & Bar" {
		t.Fatalf("got %q", got)
	}
}
