package imap

// ListOptions carries LIST's reference name and mailbox pattern. The
// IMAP4rev2/LIST-EXTENDED selection and return options (subscribed,
// remote, recursive match, LIST-STATUS) are not implemented.
type ListOptions struct {
	Reference string
	Pattern   string
}

// ListData is one mailbox entry returned by LIST.
type ListData struct {
	Attrs   []MailboxAttr
	Delim   rune
	Mailbox string
}

// BuildList compiles a LIST command request. An empty opts lists every
// mailbox from the server root ("" "*").
func BuildList(opts ListOptions) CommandRequest {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = "*"
	}
	return CommandRequest{
		Name:  "LIST",
		Attrs: []Attribute{Str(opts.Reference), Str(pattern)},
	}
}

// ParseList decodes every untagged LIST record in the response payload.
func ParseList(resp *CommandResponse) []ListData {
	out := []ListData{}
	if resp == nil || resp.Payload == nil {
		return out
	}
	for _, rec := range resp.Payload["list"] {
		if len(rec.Attrs) < 3 {
			continue
		}
		data := ListData{}
		if l, ok := rec.Attrs[0].(List); ok {
			for _, s := range StrList(l) {
				data.Attrs = append(data.Attrs, MailboxAttr(s))
			}
		}
		if delim, ok := attrScalar(rec.Attrs[1]); ok && delim != "" {
			for _, r := range delim {
				data.Delim = r
				break
			}
		}
		data.Mailbox, _ = attrScalar(rec.Attrs[2])
		out = append(out, data)
	}
	return out
}
