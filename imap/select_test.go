package imap

import (
	"reflect"
	"testing"
)

func TestParseSelectReadWrite(t *testing.T) {
	exists := uint64(123)
	resp := &CommandResponse{
		Code: "",
		Payload: map[string][]UntaggedRecord{
			"exists": {{Nr: &exists}},
			"flags": {{
				Attrs: []Attribute{List{AtomStr("\\Answered"), AtomStr("\\Flagged")}},
			}},
			"ok": {{
				Code:     ResponseCodePermanentFlags,
				CodeArgs: []Attribute{List{AtomStr("\\Answered"), AtomStr("\\Flagged")}},
			}, {
				Code:     ResponseCodeUIDValidity,
				CodeArgs: []Attribute{Num(2)},
			}, {
				Code:     ResponseCodeUIDNext,
				CodeArgs: []Attribute{Num(38361)},
			}, {
				Code:     ResponseCodeHighestModSeq,
				CodeArgs: []Attribute{Num(3682918)},
			}},
		},
	}

	data := ParseSelect(resp)
	want := SelectData{
		ReadOnly:       false,
		Flags:          []Flag{"\\Answered", "\\Flagged"},
		PermanentFlags: []Flag{"\\Answered", "\\Flagged"},
		NumMessages:    123,
		UIDNext:        38361,
		UIDValidity:    2,
		HighestModSeq:  3682918,
	}
	if !reflect.DeepEqual(data, want) {
		t.Fatalf("ParseSelect = %#v, want %#v", data, want)
	}
}

func TestBuildSelectExamineCondstore(t *testing.T) {
	req := BuildSelect("INBOX", SelectOptions{ReadOnly: true, CondStore: true})
	if req.Name != "EXAMINE" {
		t.Fatalf("Name = %q, want EXAMINE", req.Name)
	}
	want := []Attribute{Str("INBOX"), List{AtomStr("CONDSTORE")}}
	if !reflect.DeepEqual(req.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", req.Attrs, want)
	}
}
