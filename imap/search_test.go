package imap

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildSearchOrderedTerms(t *testing.T) {
	query := SearchQuery{
		{Key: "unseen", Value: true},
		{Key: "header", Value: []string{"subject", "hello world"}},
		{Key: "or", Value: SearchQuery{
			{Key: "unseen", Value: true},
			{Key: "seen", Value: true},
		}},
		{Key: "not", Value: SearchQuery{{Key: "seen", Value: true}}},
		{Key: "sentbefore", Value: time.Date(2011, time.February, 3, 0, 0, 0, 0, time.UTC)},
		{Key: "since", Value: time.Date(2011, time.December, 23, 0, 0, 0, 0, time.UTC)},
		{Key: "uid", Value: "1:*"},
	}

	req := BuildSearch(query, SearchOptions{})
	if req.Name != "SEARCH" {
		t.Fatalf("Name = %q, want SEARCH", req.Name)
	}

	want := []Attribute{
		AtomStr("UNSEEN"),
		AtomStr("HEADER"), Str("subject"), Str("hello world"),
		AtomStr("OR"), AtomStr("UNSEEN"), AtomStr("SEEN"),
		AtomStr("NOT"), AtomStr("SEEN"),
		AtomStr("SENTBEFORE"), Str("3-Feb-2011"),
		AtomStr("SINCE"), Str("23-Dec-2011"),
		AtomStr("UID"), Sequence("1:*"),
	}
	if !reflect.DeepEqual(req.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", req.Attrs, want)
	}
}

func TestBuildSearchByUID(t *testing.T) {
	req := BuildSearch(SearchQuery{{Key: "all", Value: true}}, SearchOptions{ByUID: true})
	if req.Name != "UID SEARCH" {
		t.Fatalf("Name = %q, want UID SEARCH", req.Name)
	}
}

func TestParseSearchSortedDeduplicated(t *testing.T) {
	resp := &CommandResponse{
		Payload: map[string][]UntaggedRecord{
			"search": {
				{Kind: "search", Attrs: []Attribute{Num(5), Num(7)}},
				{Kind: "search", Attrs: []Attribute{Num(6)}},
			},
		},
	}
	got := ParseSearch(resp)
	want := []uint32{5, 6, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSearch = %v, want %v", got, want)
	}
}

func TestParseSearchEmpty(t *testing.T) {
	got := ParseSearch(&CommandResponse{})
	if len(got) != 0 {
		t.Fatalf("ParseSearch = %v, want empty", got)
	}
}
