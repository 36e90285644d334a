package imapclient

import (
	"testing"

	"github.com/alex-mail/browserbox/imap"
)

// TestDispatchUntaggedFetchUpdate checks that an unsolicited FETCH
// arriving outside any command's window reaches OnUpdate with the
// decoded message.
func TestDispatchUntaggedFetchUpdate(t *testing.T) {
	var got imap.Message
	var kind string
	c := &Client{options: Options{
		OnUpdate: func(k string, v interface{}) {
			kind = k
			got = v.(imap.Message)
		},
	}}

	nr := uint64(123)
	rec := &imap.UntaggedRecord{
		Kind: "fetch",
		Nr:   &nr,
		Attrs: []imap.Attribute{
			imap.List{
				imap.AtomStr("FLAGS"), imap.List{imap.AtomStr("\\Seen")},
				imap.AtomStr("MODSEQ"), imap.List{imap.Num(4)},
			},
		},
	}
	c.dispatchUntagged(rec, nil, nil)

	if kind != "fetch" {
		t.Fatalf("kind = %q, want fetch", kind)
	}
	if got.SeqNum != 123 {
		t.Fatalf("SeqNum = %d, want 123", got.SeqNum)
	}
	if len(got.Flags) != 1 || got.Flags[0] != imap.FlagSeen {
		t.Fatalf("Flags = %v", got.Flags)
	}
	if got.ModSeq != 4 {
		t.Fatalf("ModSeq = %d, want 4", got.ModSeq)
	}
}

func TestDispatchUntaggedExistsExpungeUpdates(t *testing.T) {
	var kinds []string
	var values []interface{}
	c := &Client{options: Options{
		OnUpdate: func(k string, v interface{}) {
			kinds = append(kinds, k)
			values = append(values, v)
		},
	}}

	existsNr := uint64(42)
	c.dispatchUntagged(&imap.UntaggedRecord{Kind: "exists", Nr: &existsNr}, nil, nil)
	expungeNr := uint64(3)
	c.dispatchUntagged(&imap.UntaggedRecord{Kind: "expunge", Nr: &expungeNr}, nil, nil)

	if len(kinds) != 2 || kinds[0] != "exists" || kinds[1] != "expunge" {
		t.Fatalf("kinds = %v", kinds)
	}
	if values[0].(uint32) != 42 || values[1].(uint32) != 3 {
		t.Fatalf("values = %v", values)
	}
}

func TestDispatchUntaggedCollectsPayload(t *testing.T) {
	c := &Client{}
	payload := map[string][]imap.UntaggedRecord{}
	accept := map[string]bool{"search": true}

	c.dispatchUntagged(&imap.UntaggedRecord{Kind: "search", Attrs: []imap.Attribute{imap.Num(5)}}, payload, accept)
	c.dispatchUntagged(&imap.UntaggedRecord{Kind: "exists"}, payload, accept)

	if len(payload["search"]) != 1 {
		t.Fatalf("payload[search] = %v", payload["search"])
	}
	if len(payload["exists"]) != 0 {
		t.Fatalf("payload[exists] = %v, want none (not accepted)", payload["exists"])
	}
}
