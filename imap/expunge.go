package imap

// ParseExpunge flattens the payload's "expunge" untagged records into
// the list of expunged sequence numbers, in arrival order. Unlike
// ParseSearch this is deliberately neither sorted nor deduplicated:
// each EXPUNGE renumbers every later message in the same response, so
// the order the server sent them in is the only order that is later
// replayable against a client-side message list.
func ParseExpunge(resp *CommandResponse) []uint32 {
	out := []uint32{}
	if resp == nil || resp.Payload == nil {
		return out
	}
	for _, rec := range resp.Payload["expunge"] {
		if rec.Nr != nil {
			out = append(out, uint32(*rec.Nr))
		}
	}
	return out
}
