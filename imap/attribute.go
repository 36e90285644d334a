package imap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alex-mail/browserbox/internal/wire"
)

// Attribute is the tagged-variant command/response argument: Atom,
// String, Sequence, Number, Nil or List. Modeling it as a sum type
// (rather than an untyped bag) lets BuildFETCH/BuildSEARCH/BuildSTORE
// and the response parsers share one grammar for both directions of
// the wire.
type Attribute interface {
	attribute()
}

// Atom is a bare IMAP atom, optionally carrying a BODY[section]<partial>
// suffix (the only attribute variant that can).
type Atom struct {
	Name    string
	Section []Attribute
	Partial *[2]int64
}

func (Atom) attribute() {}

// AtomStr builds a plain Atom with no section/partial.
func AtomStr(name string) Atom { return Atom{Name: name} }

// Str is an IMAP quoted string or literal.
type Str string

func (Str) attribute() {}

// Sequence is a raw sequence-set token, e.g. "1:*,3,5:7". It is only
// ever produced by command builders; the parser side never emits it
// since server data always arrives as bare numbers.
type Sequence string

func (Sequence) attribute() {}

// Num is an unsigned integer attribute.
type Num uint64

func (Num) attribute() {}

// NilAttr is the IMAP NIL atom.
type NilAttr struct{}

func (NilAttr) attribute() {}

// List is a parenthesized, ordered list of attributes.
type List []Attribute

func (List) attribute() {}

// CommandRequest is a structured command ready to be written to the
// wire: a name and an ordered list of attributes.
type CommandRequest struct {
	Name  string
	Attrs []Attribute
}

// UntaggedRecord is the demultiplexer's generic decode of a single
// untagged server line: its optional leading number, the lowercased
// response kind, its remaining attributes, and — for status kinds
// (OK/NO/BAD/BYE/PREAUTH) — the bracketed response code.
type UntaggedRecord struct {
	Nr       *uint64
	Kind     string
	Attrs    []Attribute
	Code     ResponseCode
	CodeArgs []Attribute
	Text     string
}

// ReadAttribute reads one generic Attribute off the wire: NIL, a
// parenthesized list, a quoted string or literal, a bare number, or an
// atom optionally followed by a BODY[section]<partial> suffix.
func ReadAttribute(dec *wire.Decoder) (Attribute, error) {
	if dec.NIL() {
		return NilAttr{}, nil
	}
	if dec.Special('(') {
		var items []Attribute
		first := true
		for {
			if dec.Special(')') {
				return List(items), nil
			}
			if !first {
				if err := dec.ExpectSP(); err != nil {
					return nil, err
				}
			}
			first = false
			item, err := ReadAttribute(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	if s, ok, err := dec.String(); err != nil {
		return nil, err
	} else if ok {
		return Str(s), nil
	}
	if n, ok := dec.Number(); ok {
		return Num(n), nil
	}
	name, err := readFlagOrAtomName(dec)
	if err != nil {
		return nil, err
	}
	atom := Atom{Name: name}
	if dec.Special('[') {
		section, err := readSection(dec)
		if err != nil {
			return nil, err
		}
		atom.Section = section
	}
	if dec.Special('<') {
		offset, err := dec.ExpectNumber()
		if err != nil {
			return nil, err
		}
		if err := dec.ExpectSpecial('.'); err != nil {
			return nil, err
		}
		length, err := dec.ExpectNumber()
		if err != nil {
			return nil, err
		}
		if err := dec.ExpectSpecial('>'); err != nil {
			return nil, err
		}
		atom.Partial = &[2]int64{int64(offset), int64(length)}
	}
	return atom, nil
}

func peekDesc(dec *wire.Decoder) string {
	if dec.EOF() {
		return "<eof>"
	}
	return "?"
}

// readFlagOrAtomName reads the RFC 3501 production
// flag = "\" atom / "\*", or a plain atom if there is no leading
// backslash. IsAtomChar excludes '\\' and '*' so wire.Decoder.Atom
// alone can't tokenize \Seen, \Deleted or the \* wildcard; this wraps
// it to consume the backslash by hand and keep it in the returned name,
// matching what StrList/Flag expect.
func readFlagOrAtomName(dec *wire.Decoder) (string, error) {
	if dec.Special('\\') {
		if dec.Special('*') {
			return "\\*", nil
		}
		rest, ok := dec.Atom()
		if !ok {
			return "", fmt.Errorf("imap: expected atom after %q", "\\")
		}
		return "\\" + rest, nil
	}
	name, ok := dec.Atom()
	if !ok {
		return "", fmt.Errorf("imap: expected attribute, found %q", peekDesc(dec))
	}
	return name, nil
}

// readSection reads the contents of a BODY[...] section up to the
// closing ']', as a space-separated attribute list.
func readSection(dec *wire.Decoder) ([]Attribute, error) {
	var items []Attribute
	first := true
	for {
		if dec.Special(']') {
			return items, nil
		}
		if !first {
			dec.SP()
		}
		first = false
		item, err := ReadAttribute(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// WriteAttribute serializes a to the wire.
func WriteAttribute(enc *wire.Encoder, a Attribute) error {
	switch v := a.(type) {
	case NilAttr:
		enc.NIL()
	case Num:
		enc.Number(uint64(v))
	case Str:
		enc.String(string(v))
	case Sequence:
		enc.Atom(string(v))
	case Atom:
		enc.Atom(v.Name)
		if v.Section != nil {
			enc.Special('[')
			for i, s := range v.Section {
				if i > 0 {
					enc.SP()
				}
				if err := WriteAttribute(enc, s); err != nil {
					return err
				}
			}
			enc.Special(']')
		}
		if v.Partial != nil {
			enc.Special('<')
			enc.Number(uint64(v.Partial[0]))
			enc.Special('.')
			enc.Number(uint64(v.Partial[1]))
			enc.Special('>')
		}
	case List:
		enc.BeginList()
		for i, item := range v {
			if i > 0 {
				enc.SP()
			}
			if err := WriteAttribute(enc, item); err != nil {
				return err
			}
		}
		enc.EndList()
	default:
		return fmt.Errorf("imap: unknown attribute type %T", a)
	}
	return enc.Err()
}

// WriteCommand writes "<tag> <name> <attrs...>\r\n" for req.
func WriteCommand(enc *wire.Encoder, tag string, req CommandRequest) error {
	enc.Atom(tag).SP().Atom(strings.ToUpper(req.Name))
	for _, a := range req.Attrs {
		enc.SP()
		if err := WriteAttribute(enc, a); err != nil {
			return err
		}
	}
	enc.CRLF()
	return enc.Err()
}

// ReadUntagged reads a single "* ..." line (the leading "* " must
// already have been consumed by the caller) into an UntaggedRecord.
func ReadUntagged(dec *wire.Decoder) (*UntaggedRecord, error) {
	rec := &UntaggedRecord{}

	if n, ok := dec.Number(); ok {
		rec.Nr = &n
		if err := dec.ExpectSP(); err != nil {
			return nil, err
		}
	}

	kind, err := dec.ExpectAtom()
	if err != nil {
		return nil, err
	}
	rec.Kind = strings.ToLower(kind)

	switch rec.Kind {
	case "ok", "no", "bad", "bye", "preauth":
		if err := readStatusRest(dec, rec); err != nil {
			return nil, err
		}
		return rec, dec.ExpectCRLF()
	}

	for dec.SP() {
		a, err := ReadAttribute(dec)
		if err != nil {
			return nil, err
		}
		rec.Attrs = append(rec.Attrs, a)
	}
	return rec, dec.ExpectCRLF()
}

// readStatusRest parses the "[CODE ...] human text" tail shared by
// tagged completions and untagged OK/NO/BAD/BYE/PREAUTH lines.
func readStatusRest(dec *wire.Decoder, rec *UntaggedRecord) error {
	if dec.SP() {
		if dec.Special('[') {
			code, err := dec.ExpectAtom()
			if err != nil {
				return err
			}
			rec.Code = ResponseCode(strings.ToUpper(code))
			for dec.SP() {
				a, err := ReadAttribute(dec)
				if err != nil {
					return err
				}
				rec.CodeArgs = append(rec.CodeArgs, a)
			}
			if err := dec.ExpectSpecial(']'); err != nil {
				return err
			}
			dec.SP()
		}
		text, err := readToCRLF(dec)
		if err != nil {
			return err
		}
		rec.Text = text
	}
	return nil
}

// ReadRestOfLine reads and returns the remaining text up to (and
// consuming) the trailing CRLF, used by imapclient to read a command
// continuation request's free-form text.
func ReadRestOfLine(dec *wire.Decoder) (string, error) {
	text, err := readToCRLF(dec)
	if err != nil {
		return "", err
	}
	return text, dec.ExpectCRLF()
}

func readToCRLF(dec *wire.Decoder) (string, error) {
	var sb strings.Builder
	for {
		if dec.EOF() {
			return sb.String(), nil
		}
		b, ok := dec.PeekAny()
		if !ok || b == '\r' || b == '\n' {
			return sb.String(), nil
		}
		dec.ReadAny()
		sb.WriteByte(b)
	}
}

// ReadTagged reads a "<tag> OK/NO/BAD [CODE ...] text\r\n" completion
// line (the tag itself must already have been consumed by the caller).
func ReadTagged(dec *wire.Decoder) (*CommandResponse, error) {
	if err := dec.ExpectSP(); err != nil {
		return nil, err
	}
	typ, err := dec.ExpectAtom()
	if err != nil {
		return nil, err
	}
	rec := &UntaggedRecord{}
	if err := readStatusRest(dec, rec); err != nil {
		return nil, err
	}
	if err := dec.ExpectCRLF(); err != nil {
		return nil, err
	}
	resp := &CommandResponse{
		Type:     StatusResponseType(strings.ToUpper(typ)),
		Code:     rec.Code,
		CodeArgs: rec.CodeArgs,
		Text:     rec.Text,
	}
	if resp.Code == ResponseCodeCapability {
		caps := make(CapSet, len(resp.CodeArgs))
		for _, a := range resp.CodeArgs {
			if atom, ok := a.(Atom); ok {
				caps[Cap(strings.ToUpper(atom.Name))] = struct{}{}
			}
		}
		resp.Capability = caps
	}
	return resp, nil
}

// StrList extracts plain strings from a mixed Atom/Str attribute list,
// used throughout the parsers below to decode flag lists.
func StrList(attrs []Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.(type) {
		case Atom:
			out = append(out, v.Name)
		case Str:
			out = append(out, string(v))
		}
	}
	return out
}

// numberOf extracts the numeric value of a Num or a numeric Atom/Str,
// used when a spec-mandated integer field arrives typed loosely.
func numberOf(a Attribute) (uint64, bool) {
	switch v := a.(type) {
	case Num:
		return uint64(v), true
	case Atom:
		n, err := strconv.ParseUint(v.Name, 10, 64)
		return n, err == nil
	case Str:
		n, err := strconv.ParseUint(string(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}
