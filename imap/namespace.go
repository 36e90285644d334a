package imap

// NamespaceDescriptor describes one namespace prefix/delimiter pair
// (RFC 2342).
type NamespaceDescriptor struct {
	Prefix string
	Delim  rune
}

// NamespaceClass is one of the three NAMESPACE positional slots.
// Present distinguishes an advertised-but-empty class (server sent an
// empty list) from one the server did not advertise at all (NIL).
type NamespaceClass struct {
	Present     bool
	Descriptors []NamespaceDescriptor
}

// NamespaceSet is the decoded NAMESPACE response body: the personal,
// other-users' and shared namespace classes, each optionally absent.
type NamespaceSet struct {
	Personal NamespaceClass
	Other    NamespaceClass
	Shared   NamespaceClass
}

// BuildNamespace compiles the (argument-less) NAMESPACE command.
func BuildNamespace() CommandRequest {
	return CommandRequest{Name: "NAMESPACE"}
}

// ParseNamespace decodes the "namespace" untagged record the issuer
// collected. ok is false when the payload is empty or absent (server
// does not implement NAMESPACE, or the caller never issued the
// command).
func ParseNamespace(resp *CommandResponse) (set NamespaceSet, ok bool) {
	if resp == nil || resp.Payload == nil {
		return NamespaceSet{}, false
	}
	recs := resp.Payload["namespace"]
	if len(recs) == 0 {
		return NamespaceSet{}, false
	}
	rec := recs[0]
	if len(rec.Attrs) < 3 {
		return NamespaceSet{}, false
	}
	return NamespaceSet{
		Personal: parseNamespaceClass(rec.Attrs[0]),
		Other:    parseNamespaceClass(rec.Attrs[1]),
		Shared:   parseNamespaceClass(rec.Attrs[2]),
	}, true
}

func parseNamespaceClass(a Attribute) NamespaceClass {
	list, ok := a.(List)
	if !ok {
		return NamespaceClass{}
	}
	var descs []NamespaceDescriptor
	for _, item := range list {
		pair, ok := item.(List)
		if !ok || len(pair) < 2 {
			continue
		}
		prefix, _ := attrScalar(pair[0])
		delimStr, _ := attrScalar(pair[1])
		var delim rune
		for _, r := range delimStr {
			delim = r
			break
		}
		descs = append(descs, NamespaceDescriptor{Prefix: prefix, Delim: delim})
	}
	return NamespaceClass{Present: true, Descriptors: descs}
}
