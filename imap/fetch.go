package imap

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alex-mail/browserbox/internal/wire"
)

// FetchOptions carries the byUid/changedSince toggles for FETCH. The
// item list itself is not modeled as a struct of typed fields (contra
// the item-per-field builder some IMAP libraries use): items arrive as
// either a macro string or a list of raw item expressions re-parsed by
// the wire codec, so arbitrary FETCH data items never need a dedicated
// Go type.
type FetchOptions struct {
	ByUID        bool
	ChangedSince uint64
}

// fetchMacros are the three recognized shorthand item lists.
var fetchMacros = map[string]bool{"all": true, "fast": true, "full": true}

// BuildFetch compiles a FETCH (or UID FETCH) command request. items is
// either a macro string ("all", "fast", "full") or a []string of item
// expressions.
func BuildFetch(seq NumSet, items interface{}, opts FetchOptions) CommandRequest {
	name := "FETCH"
	if opts.ByUID {
		name = "UID FETCH"
	}

	attrs := []Attribute{Sequence(seq.String())}

	itemAttrs := buildFetchItems(items)
	switch len(itemAttrs) {
	case 0:
		// nothing to fetch; still a legal (if useless) command
	case 1:
		attrs = append(attrs, itemAttrs[0])
	default:
		attrs = append(attrs, List(itemAttrs))
	}

	if opts.ChangedSince != 0 {
		attrs = append(attrs, List{AtomStr("CHANGEDSINCE"), Num(opts.ChangedSince)})
	}

	return CommandRequest{Name: name, Attrs: attrs}
}

func buildFetchItems(items interface{}) []Attribute {
	switch v := items.(type) {
	case string:
		if fetchMacros[strings.ToLower(v)] {
			return []Attribute{AtomStr(strings.ToUpper(v))}
		}
		return []Attribute{parseFetchItem(v)}
	case []string:
		attrs := make([]Attribute, len(v))
		for i, it := range v {
			attrs[i] = parseFetchItem(it)
		}
		return attrs
	case nil:
		return nil
	default:
		return nil
	}
}

// parseFetchItem re-parses item as if it were the attributes of the
// synthetic command "Z <item>", splicing in the resulting subtree.
// Parse failure — or an item that is a single bare atom to begin with —
// falls back to a plain uppercased ATOM.
func parseFetchItem(item string) Attribute {
	raw := "Z " + strings.ToUpper(item) + "\r\n"
	dec := wire.NewDecoder(bufio.NewReader(strings.NewReader(raw)))

	if _, err := dec.ExpectAtom(); err != nil {
		return AtomStr(strings.ToUpper(item))
	}

	var attrs []Attribute
	for dec.SP() {
		a, err := readFetchItemAttribute(dec)
		if err != nil {
			return AtomStr(strings.ToUpper(item))
		}
		attrs = append(attrs, a)
	}
	switch len(attrs) {
	case 0:
		return AtomStr(strings.ToUpper(item))
	case 1:
		return attrs[0]
	default:
		return List(attrs)
	}
}

// readFetchItemAttribute is ReadAttribute's grammar with the bare-number
// branch removed: a FETCH item expression like "MODSEQ (1234567)" is all
// ATOMs on the wire, never a NUMBER attribute, so a re-parsed numeric
// token must come back as an Atom, not a Num. Nested lists recurse into
// this same function so the substitution holds at every depth.
func readFetchItemAttribute(dec *wire.Decoder) (Attribute, error) {
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
			item, err := readFetchItemAttribute(dec)
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

// Message is one FETCH result record. SeqNum is the record's sequence
// number (also for UID FETCH); UID is set only when the server returns
// the UID data item. BodySection holds any BODY[...]/BINARY[...]
// payloads, keyed by their canonical item text including any
// <offset.length> partial suffix.
type Message struct {
	SeqNum       uint32
	UID          UID
	Flags        []Flag
	InternalDate time.Time
	RFC822Size   uint32
	ModSeq       uint64
	Envelope     *Envelope
	Body         BodyStructure
	BodySection  map[string]string
}

const internalDateLayout = "02-Jan-2006 15:04:05 -0700"

// ParseFetch decodes every untagged FETCH record in the response
// payload into a Message. A missing or empty payload yields an empty
// (non-nil) slice.
func ParseFetch(resp *CommandResponse) []Message {
	out := []Message{}
	if resp == nil || resp.Payload == nil {
		return out
	}
	for _, rec := range resp.Payload["fetch"] {
		if rec.Nr == nil || len(rec.Attrs) == 0 {
			continue
		}
		list, ok := rec.Attrs[0].(List)
		if !ok {
			continue
		}
		out = append(out, parseFetchRecord(uint32(*rec.Nr), list))
	}
	return out
}

// ParseFetchRecord decodes a single FETCH data list outside of a
// CommandResponse payload, used by imapclient to demultiplex an
// unsolicited "* <nr> FETCH (...)" line arriving during IDLE.
func ParseFetchRecord(seqNum uint32, list []Attribute) Message {
	return parseFetchRecord(seqNum, list)
}

func parseFetchRecord(seqNum uint32, list []Attribute) Message {
	msg := Message{SeqNum: seqNum}
	for i := 0; i+1 < len(list); i += 2 {
		keyAtom, ok := list[i].(Atom)
		if !ok {
			continue
		}
		value := list[i+1]
		key, dispatchKey := fetchItemKey(keyAtom)

		switch dispatchKey {
		case "uid":
			if n, ok := numberOf(value); ok {
				msg.UID = UID(n)
			}
		case "rfc822.size":
			if n, ok := numberOf(value); ok {
				msg.RFC822Size = uint32(n)
			}
		case "modseq":
			if l, ok := value.(List); ok && len(l) > 0 {
				if n, ok := numberOf(l[0]); ok {
					msg.ModSeq = n
				}
			}
		case "flags":
			if l, ok := value.(List); ok {
				for _, f := range StrList(l) {
					msg.Flags = append(msg.Flags, Flag(f))
				}
			}
		case "internaldate":
			if s, ok := value.(Str); ok {
				if t, err := time.Parse(internalDateLayout, string(s)); err == nil {
					msg.InternalDate = t
				}
			}
		case "envelope":
			if l, ok := value.(List); ok {
				msg.Envelope = ParseEnvelope(l)
			}
		case "bodystructure", "body":
			if l, ok := value.(List); ok {
				msg.Body = ParseBodyStructure(l, "")
			}
		default:
			if strings.HasPrefix(dispatchKey, "body[") || strings.HasPrefix(dispatchKey, "binary[") {
				if msg.BodySection == nil {
					msg.BodySection = map[string]string{}
				}
				if s, ok := attrScalar(value); ok {
					msg.BodySection[key] = s
				}
			}
		}
	}
	return msg
}

// fetchItemKey re-serializes a FETCH item key atom to its canonical
// lowercase text. key retains any <offset.length> partial suffix,
// dispatchKey has it stripped: BodySection is stored under key, but
// item-shape dispatch (deciding how to decode the accompanying value)
// switches on dispatchKey.
func fetchItemKey(a Atom) (key, dispatchKey string) {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(a.Name))
	if a.Section != nil {
		sb.WriteString("[")
		for i, s := range a.Section {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(strings.ToLower(attrText(s)))
		}
		sb.WriteString("]")
	}
	dispatchKey = sb.String()
	if a.Partial != nil {
		fmt.Fprintf(&sb, "<%d.%d>", a.Partial[0], a.Partial[1])
	}
	return sb.String(), dispatchKey
}

// attrText renders an Attribute back to wire-like text, used to build
// canonical FETCH item keys out of section contents such as
// "HEADER.FIELDS (DATE SUBJECT)".
func attrText(a Attribute) string {
	switch v := a.(type) {
	case Atom:
		return v.Name
	case Str:
		return string(v)
	case Num:
		return strconv.FormatUint(uint64(v), 10)
	case Sequence:
		return string(v)
	case NilAttr:
		return "NIL"
	case List:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = attrText(item)
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return ""
	}
}

func attrScalar(a Attribute) (string, bool) {
	switch v := a.(type) {
	case Str:
		return string(v), true
	case NilAttr:
		return "", true
	case Atom:
		return v.Name, true
	}
	return "", false
}

// Envelope is a message's envelope structure (RFC 3501 section 2.3.5).
// Subject and address display names are returned exactly as they
// arrived on the wire; package imapclient applies RFC 2047 decoding
// per its Options.WordDecoder, keeping this package free of a
// character-set dependency.
type Envelope struct {
	Date      time.Time
	Subject   string
	From      []Address
	Sender    []Address
	ReplyTo   []Address
	To        []Address
	Cc        []Address
	Bcc       []Address
	InReplyTo []string
	MessageID string
}

// Address is one envelope address-list member.
type Address struct {
	Name    string
	Mailbox string
	Host    string
}

// Addr returns "mailbox@host", or "" for a group start/end marker.
func (addr *Address) Addr() string {
	if addr.Mailbox == "" || addr.Host == "" {
		return ""
	}
	return addr.Mailbox + "@" + addr.Host
}

// dateHeaderLayouts are tried in order when decoding envelope dates,
// which servers format inconsistently despite RFC 3501's guidance.
var dateHeaderLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"2 Jan 2006 15:04:05 -0700",
}

// ParseEnvelope decodes an ENVELOPE data item's parenthesized list: a
// positional 10-tuple, with each address-list slot itself a list of
// 4-tuples.
func ParseEnvelope(list []Attribute) *Envelope {
	env := &Envelope{}
	get := func(i int) Attribute {
		if i < len(list) {
			return list[i]
		}
		return nil
	}
	if s, ok := attrScalar(get(0)); ok && s != "" {
		for _, layout := range dateHeaderLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				env.Date = t
				break
			}
		}
	}
	env.Subject, _ = attrScalar(get(1))
	env.From = parseAddressList(get(2))
	env.Sender = parseAddressList(get(3))
	env.ReplyTo = parseAddressList(get(4))
	env.To = parseAddressList(get(5))
	env.Cc = parseAddressList(get(6))
	env.Bcc = parseAddressList(get(7))
	if s, ok := attrScalar(get(8)); ok && s != "" {
		env.InReplyTo = strings.Fields(s)
	}
	env.MessageID, _ = attrScalar(get(9))
	return env
}

func parseAddressList(a Attribute) []Address {
	list, ok := a.(List)
	if !ok {
		return nil
	}
	addrs := make([]Address, 0, len(list))
	for _, item := range list {
		entry, ok := item.(List)
		if !ok || len(entry) < 4 {
			continue
		}
		name, _ := attrScalar(entry[0])
		mailbox, _ := attrScalar(entry[2])
		host, _ := attrScalar(entry[3])
		addrs = append(addrs, Address{Name: name, Mailbox: mailbox, Host: host})
	}
	return addrs
}

// BodyStructure is either a *BodyStructureSinglePart (leaf) or a
// *BodyStructureMultiPart (multipart), matching BODYSTRUCTURE's
// recursive grammar.
type BodyStructure interface {
	MediaType() string
	Walk(f BodyStructureWalkFunc)
	Disposition() *BodyStructureDisposition
	bodyStructure()
}

// BodyStructureSinglePart is a non-multipart leaf node.
type BodyStructureSinglePart struct {
	Part          string
	Type, Subtype string
	Params        map[string]string
	ID            string
	Description   string
	Encoding      string
	Size          uint32

	MessageRFC822 *BodyStructureMessageRFC822
	Text          *BodyStructureText
	Extended      *BodyStructureSinglePartExt
}

func (bs *BodyStructureSinglePart) MediaType() string {
	return strings.ToLower(bs.Type) + "/" + strings.ToLower(bs.Subtype)
}

func (bs *BodyStructureSinglePart) Walk(f BodyStructureWalkFunc) { f([]int{1}, bs) }

func (bs *BodyStructureSinglePart) Disposition() *BodyStructureDisposition {
	if bs.Extended == nil {
		return nil
	}
	return bs.Extended.Disposition
}

// Filename decodes the leaf's filename, if any.
func (bs *BodyStructureSinglePart) Filename() string {
	var filename string
	if bs.Extended != nil && bs.Extended.Disposition != nil {
		filename = bs.Extended.Disposition.Params["filename"]
	}
	if filename == "" {
		filename = bs.Params["name"]
	}
	return filename
}

func (*BodyStructureSinglePart) bodyStructure() {}

// BodyStructureMessageRFC822 carries a nested message/rfc822 part's
// envelope, body structure and line count.
type BodyStructureMessageRFC822 struct {
	Envelope      *Envelope
	BodyStructure BodyStructure
	NumLines      int64
}

// BodyStructureText carries a text/* part's line count.
type BodyStructureText struct {
	NumLines int64
}

// BodyStructureSinglePartExt carries a leaf's shared extension data.
type BodyStructureSinglePartExt struct {
	Disposition *BodyStructureDisposition
	Language    []string
	Location    string
}

// BodyStructureMultiPart is a multipart node.
type BodyStructureMultiPart struct {
	Part     string
	Children []BodyStructure
	Subtype  string

	Extended *BodyStructureMultiPartExt
}

func (bs *BodyStructureMultiPart) MediaType() string { return "multipart/" + strings.ToLower(bs.Subtype) }

func (bs *BodyStructureMultiPart) Walk(f BodyStructureWalkFunc) { bs.walk(f, nil) }

func (bs *BodyStructureMultiPart) walk(f BodyStructureWalkFunc, path []int) {
	if !f(path, bs) {
		return
	}
	for i, part := range bs.Children {
		partPath := append(append([]int{}, path...), i+1)
		switch part := part.(type) {
		case *BodyStructureSinglePart:
			f(partPath, part)
		case *BodyStructureMultiPart:
			part.walk(f, partPath)
		}
	}
}

func (bs *BodyStructureMultiPart) Disposition() *BodyStructureDisposition {
	if bs.Extended == nil {
		return nil
	}
	return bs.Extended.Disposition
}

func (*BodyStructureMultiPart) bodyStructure() {}

// BodyStructureMultiPartExt carries a multipart node's shared extension data.
type BodyStructureMultiPartExt struct {
	Params      map[string]string
	Disposition *BodyStructureDisposition
	Language    []string
	Location    string
}

// BodyStructureDisposition is a Content-Disposition value and its parameters.
type BodyStructureDisposition struct {
	Value  string
	Params map[string]string
}

// BodyStructureWalkFunc visits one node of a BodyStructure tree,
// depth-first pre-order. Returning false skips the node's children.
type BodyStructureWalkFunc func(path []int, part BodyStructure) (walkChildren bool)

// ParseBodyStructure decodes a BODYSTRUCTURE (or BODY) data item's
// parenthesized list. dottedPath is this node's own path prefix ("" at
// the root, "1.2." inside a nested message/rfc822 part), used to assign
// each child's Part field.
func ParseBodyStructure(list []Attribute, dottedPath string) BodyStructure {
	if isMultipart(list) {
		return parseMultipart(list, dottedPath)
	}
	return parseSinglePart(list, dottedPath)
}

func isMultipart(list []Attribute) bool {
	if len(list) == 0 {
		return false
	}
	_, ok := list[0].(List)
	return ok
}

func parseMultipart(list []Attribute, dottedPath string) *BodyStructureMultiPart {
	mp := &BodyStructureMultiPart{Part: strings.TrimSuffix(dottedPath, ".")}
	i := 0
	for i < len(list) {
		child, ok := list[i].(List)
		if !ok {
			break
		}
		childPath := fmt.Sprintf("%s%d.", dottedPath, len(mp.Children)+1)
		mp.Children = append(mp.Children, ParseBodyStructure(child, childPath))
		i++
	}
	if i < len(list) {
		mp.Subtype, _ = attrScalar(list[i])
		i++
	}
	if i < len(list) {
		if params, ok := list[i].(List); ok {
			mp.Extended = &BodyStructureMultiPartExt{Params: parseParamList(params)}
			i++
		}
	}
	if mp.Extended != nil && i < len(list) {
		parseSharedExtension(list[i:], &mp.Extended.Disposition, &mp.Extended.Language, &mp.Extended.Location)
	}
	return mp
}

func parseSinglePart(list []Attribute, dottedPath string) *BodyStructureSinglePart {
	sp := &BodyStructureSinglePart{Part: strings.TrimSuffix(dottedPath, ".")}
	if sp.Part == "" {
		sp.Part = "1"
	}
	get := func(i int) Attribute {
		if i < len(list) {
			return list[i]
		}
		return nil
	}
	sp.Type, _ = attrScalar(get(0))
	sp.Subtype, _ = attrScalar(get(1))
	if params, ok := get(2).(List); ok {
		sp.Params = parseParamList(params)
	}
	sp.ID, _ = attrScalar(get(3))
	sp.Description, _ = attrScalar(get(4))
	if enc, ok := attrScalar(get(5)); ok {
		sp.Encoding = strings.ToLower(enc)
	}
	if n, ok := numberOf(get(6)); ok {
		sp.Size = uint32(n)
	}
	i := 7
	switch strings.ToLower(sp.Type) {
	case "message":
		if strings.ToLower(sp.Subtype) == "rfc822" {
			env, _ := get(i).(List)
			body, _ := get(i + 1).(List)
			lines, _ := numberOf(get(i + 2))
			sp.MessageRFC822 = &BodyStructureMessageRFC822{
				Envelope:      ParseEnvelope(env),
				BodyStructure: ParseBodyStructure(body, dottedPath),
				NumLines:      int64(lines),
			}
			i += 3
		}
	case "text":
		lines, _ := numberOf(get(i))
		sp.Text = &BodyStructureText{NumLines: int64(lines)}
		i++
	}
	// optional md5
	if _, ok := get(i).(Str); ok {
		i++
	} else if _, ok := get(i).(NilAttr); ok {
		i++
	}
	if i < len(list) {
		ext := &BodyStructureSinglePartExt{}
		parseSharedExtension(list[i:], &ext.Disposition, &ext.Language, &ext.Location)
		sp.Extended = ext
	}
	return sp
}

func parseParamList(list []Attribute) map[string]string {
	params := map[string]string{}
	for i := 0; i+1 < len(list); i += 2 {
		k, _ := attrScalar(list[i])
		v, _ := attrScalar(list[i+1])
		params[strings.ToLower(k)] = v
	}
	return params
}

// parseSharedExtension decodes the disposition/language/location tail
// shared by both leaf and multipart nodes. Missing trailing fields are
// simply left unset — the parser is tolerant.
func parseSharedExtension(rest []Attribute, disposition **BodyStructureDisposition, language *[]string, location *string) {
	get := func(i int) Attribute {
		if i < len(rest) {
			return rest[i]
		}
		return nil
	}
	if l, ok := get(0).(List); ok && len(l) >= 1 {
		value, _ := attrScalar(l[0])
		disp := &BodyStructureDisposition{Value: strings.ToLower(value)}
		if len(l) >= 2 {
			if params, ok := l[1].(List); ok {
				disp.Params = parseParamList(params)
			}
		}
		*disposition = disp
	}
	switch v := get(1).(type) {
	case List:
		*language = StrList(v)
	case Str:
		*language = []string{string(v)}
	case Atom:
		*language = []string{v.Name}
	}
	*location, _ = attrScalar(get(2))
}
