package imap

import (
	"reflect"
	"testing"
)

func TestBuildFetchByUIDMacro(t *testing.T) {
	req := BuildFetch(SeqRangeSet(1, 0), "all", FetchOptions{ByUID: true})
	if req.Name != "UID FETCH" {
		t.Fatalf("Name = %q, want UID FETCH", req.Name)
	}
	want := []Attribute{Sequence("1:*"), AtomStr("ALL")}
	if !reflect.DeepEqual(req.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", req.Attrs, want)
	}
}

func TestBuildFetchItemList(t *testing.T) {
	req := BuildFetch(SeqRangeSet(1, 0), []string{"modseq (1234567)"}, FetchOptions{})
	if req.Name != "FETCH" {
		t.Fatalf("Name = %q, want FETCH", req.Name)
	}
	want := []Attribute{
		Sequence("1:*"),
		List{AtomStr("MODSEQ"), List{AtomStr("1234567")}},
	}
	if !reflect.DeepEqual(req.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", req.Attrs, want)
	}
}

func TestFetchItemKeyPartialSuffix(t *testing.T) {
	a := Atom{
		Name:    "body",
		Section: []Attribute{AtomStr("header"), List{AtomStr("date"), AtomStr("subject")}},
		Partial: &[2]int64{0, 123},
	}
	key, dispatchKey := fetchItemKey(a)
	if want := "body[header (date subject)]<0.123>"; key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
	if want := "body[header (date subject)]"; dispatchKey != want {
		t.Fatalf("dispatchKey = %q, want %q", dispatchKey, want)
	}
}

// SeqRangeSet is a small test helper building a single-range SeqSet; 0
// as stop means an open-ended "n:*" range.
func SeqRangeSet(start, stop uint32) SeqSet {
	return SeqSet{{Start: start, Stop: stop}}
}
