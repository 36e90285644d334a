package imap

import (
	"reflect"
	"testing"
)

func TestBuildStoreRemoveSilent(t *testing.T) {
	seq := SeqSet{{Start: 1, Stop: 1}, {Start: 2, Stop: 2}, {Start: 3, Stop: 3}}
	req := BuildStore(seq, StoreFlags{Op: StoreFlagsDel, Silent: true, Flags: []Flag{"a", "b"}}, StoreOptions{})

	if req.Name != "STORE" {
		t.Fatalf("Name = %q, want STORE", req.Name)
	}
	want := []Attribute{
		Sequence("1,2,3"),
		AtomStr("-FLAGS.SILENT"),
		List{AtomStr("a"), AtomStr("b")},
	}
	if !reflect.DeepEqual(req.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", req.Attrs, want)
	}
}

func TestBuildStoreUnchangedSince(t *testing.T) {
	req := BuildStore(SeqSetNum(4), StoreFlags{Op: StoreFlagsAdd, Flags: []Flag{FlagSeen}}, StoreOptions{ByUID: true, UnchangedSince: 100})
	if req.Name != "UID STORE" {
		t.Fatalf("Name = %q, want UID STORE", req.Name)
	}
	want := []Attribute{
		Sequence("4"),
		List{AtomStr("UNCHANGEDSINCE"), Num(100)},
		AtomStr("+FLAGS"),
		List{AtomStr("\\Seen")},
	}
	if !reflect.DeepEqual(req.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", req.Attrs, want)
	}
}
