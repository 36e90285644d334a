package imap

// CopyOptions carries the byUid toggle shared by COPY and MOVE.
type CopyOptions struct {
	ByUID bool
}

// BuildCopy compiles a COPY (or UID COPY) command request.
func BuildCopy(seq NumSet, mailbox string, opts CopyOptions) CommandRequest {
	name := "COPY"
	if opts.ByUID {
		name = "UID COPY"
	}
	return CommandRequest{Name: name, Attrs: []Attribute{Sequence(seq.String()), Str(mailbox)}}
}

// BuildMove compiles a MOVE (or UID MOVE) command request. Callers must
// check CapMove first; imapclient falls back to COPY+STORE+EXPUNGE when
// the server does not advertise MOVE.
func BuildMove(seq NumSet, mailbox string, opts CopyOptions) CommandRequest {
	name := "MOVE"
	if opts.ByUID {
		name = "UID MOVE"
	}
	return CommandRequest{Name: name, Attrs: []Attribute{Sequence(seq.String()), Str(mailbox)}}
}

// CopyData is the UIDPLUS COPYUID response code's payload, correlating
// source and destination UIDs across the copy.
type CopyData struct {
	UIDValidity uint32
	SourceUIDs  UIDSet
	DestUIDs    UIDSet
}

// ParseCopyData extracts COPYUID data from a tagged COPY/MOVE
// completion's response code, if present.
func ParseCopyData(resp *CommandResponse) (CopyData, bool) {
	if resp == nil || resp.Code != ResponseCodeCopyUID || len(resp.CodeArgs) < 3 {
		return CopyData{}, false
	}
	n, ok := numberOf(resp.CodeArgs[0])
	if !ok {
		return CopyData{}, false
	}
	src, ok1 := attrScalar(resp.CodeArgs[1])
	dst, ok2 := attrScalar(resp.CodeArgs[2])
	if !ok1 || !ok2 {
		return CopyData{}, false
	}
	return CopyData{
		UIDValidity: uint32(n),
		SourceUIDs:  parseUIDSetText(src),
		DestUIDs:    parseUIDSetText(dst),
	}, true
}
