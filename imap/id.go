package imap

import "strings"

// IDField is one key/value pair of an ID command's field list. Order is
// preserved on the wire, matching how a client typically advertises
// name/version/vendor et al. in a fixed sequence.
type IDField struct {
	Key, Value string
}

// BuildID compiles an ID command request (RFC 2971). A nil id sends
// "ID NIL"; callers pass either a populated field list or nil to send
// the null form.
func BuildID(id []IDField) CommandRequest {
	if id == nil {
		return CommandRequest{Name: "ID", Attrs: []Attribute{NilAttr{}}}
	}
	items := make([]Attribute, 0, len(id)*2)
	for _, f := range id {
		items = append(items, Str(f.Key), Str(f.Value))
	}
	return CommandRequest{Name: "ID", Attrs: []Attribute{List(items)}}
}

// ParseID decodes the server's ID reply into a lowercase-keyed mapping.
// ok is false when the payload carries no "id" record at all (the
// server did not implement ID).
func ParseID(resp *CommandResponse) (map[string]string, bool) {
	if resp == nil || resp.Payload == nil {
		return nil, false
	}
	recs := resp.Payload["id"]
	if len(recs) == 0 {
		return nil, false
	}
	out := map[string]string{}
	rec := recs[0]
	if len(rec.Attrs) == 0 {
		return out, true
	}
	list, ok := rec.Attrs[0].(List)
	if !ok {
		return out, true
	}
	for i := 0; i+1 < len(list); i += 2 {
		k, _ := attrScalar(list[i])
		v, _ := attrScalar(list[i+1])
		out[strings.ToLower(k)] = v
	}
	return out, true
}
