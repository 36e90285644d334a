package imap

// SelectOptions carries the SELECT/EXAMINE command's options: ReadOnly
// picks EXAMINE over SELECT, CondStore requests CONDSTORE-enabled mode
// selection.
type SelectOptions struct {
	ReadOnly  bool
	CondStore bool
}

// SelectData is the mailbox state a SELECT/EXAMINE completion yields.
type SelectData struct {
	ReadOnly       bool
	Flags          []Flag
	PermanentFlags []Flag
	NumMessages    uint32
	UIDNext        UID
	UIDValidity    uint32
	HighestModSeq  uint64
}

// BuildSelect compiles a SELECT or EXAMINE command request for mailbox.
func BuildSelect(mailbox string, opts SelectOptions) CommandRequest {
	name := "SELECT"
	if opts.ReadOnly {
		name = "EXAMINE"
	}
	attrs := []Attribute{Str(mailbox)}
	if opts.CondStore {
		attrs = append(attrs, List{AtomStr("CONDSTORE")})
	}
	return CommandRequest{Name: name, Attrs: attrs}
}

// ParseSelect extracts mailbox state from a SELECT/EXAMINE completion
// and the untagged records the issuer collected alongside it: the
// caller must have opted into "exists", "flags" and "ok" via
// acceptUntagged for these fields to be populated.
func ParseSelect(resp *CommandResponse) SelectData {
	var data SelectData
	if resp == nil {
		return data
	}
	data.ReadOnly = resp.Code == ResponseCodeReadOnly

	if resp.Payload == nil {
		return data
	}

	if exists := resp.Payload["exists"]; len(exists) > 0 {
		if rec := exists[len(exists)-1]; rec.Nr != nil {
			data.NumMessages = uint32(*rec.Nr)
		}
	}

	if flags := resp.Payload["flags"]; len(flags) > 0 {
		if rec := flags[len(flags)-1]; len(rec.Attrs) > 0 {
			if l, ok := rec.Attrs[0].(List); ok {
				for _, s := range StrList(l) {
					data.Flags = append(data.Flags, Flag(s))
				}
			}
		}
	}

	for _, rec := range resp.Payload["ok"] {
		switch rec.Code {
		case ResponseCodePermanentFlags:
			if len(rec.CodeArgs) > 0 {
				if l, ok := rec.CodeArgs[0].(List); ok {
					for _, s := range StrList(l) {
						data.PermanentFlags = append(data.PermanentFlags, Flag(s))
					}
				}
			}
		case ResponseCodeUIDValidity:
			if len(rec.CodeArgs) > 0 {
				if n, ok := numberOf(rec.CodeArgs[0]); ok {
					data.UIDValidity = uint32(n)
				}
			}
		case ResponseCodeUIDNext:
			if len(rec.CodeArgs) > 0 {
				if n, ok := numberOf(rec.CodeArgs[0]); ok {
					data.UIDNext = UID(n)
				}
			}
		case ResponseCodeHighestModSeq:
			if len(rec.CodeArgs) > 0 {
				if n, ok := numberOf(rec.CodeArgs[0]); ok {
					data.HighestModSeq = n
				}
			}
		}
	}

	return data
}
