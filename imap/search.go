package imap

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SearchOptions carries the SEARCH command's byUid toggle; ESEARCH/
// SEARCHRES-only return options are not implemented, see DESIGN.md.
type SearchOptions struct {
	ByUID bool
}

// SearchTerm is one key/value pair of a SearchQuery. Ordering matters:
// buildSEARCH emits terms in the order they appear, so SearchQuery is a
// slice rather than a Go map (whose iteration order is unspecified).
type SearchTerm struct {
	Key   string
	Value interface{}
}

// SearchQuery is a nested-mapping search tree: an ordered list of
// KEY→value terms, where value may itself be a nested SearchQuery (used
// to build OR/NOT subqueries).
type SearchQuery []SearchTerm

// dateLayout is IMAP's SEARCH date format, e.g. "3-Feb-2011".
const dateLayout = "2-Jan-2006"

// BuildSearch compiles query into a SEARCH (or UID SEARCH) command
// request.
func BuildSearch(query SearchQuery, opts SearchOptions) CommandRequest {
	name := "SEARCH"
	if opts.ByUID {
		name = "UID SEARCH"
	}
	return CommandRequest{Name: name, Attrs: buildSearchTerms(query)}
}

func buildSearchTerms(query SearchQuery) []Attribute {
	var attrs []Attribute
	for _, term := range query {
		attrs = append(attrs, buildSearchTerm(term)...)
	}
	return attrs
}

// buildSearchTerm expands one term into its attribute(s): the KEY atom
// (uppercased) followed by the encoded value, if any.
func buildSearchTerm(term SearchTerm) []Attribute {
	if b, ok := term.Value.(bool); ok {
		if !b {
			return nil
		}
		return []Attribute{AtomStr(strings.ToUpper(term.Key))}
	}
	attrs := []Attribute{AtomStr(strings.ToUpper(term.Key))}
	value := term.Value
	if s, ok := value.(string); ok && isSequenceKey(term.Key) {
		value = Sequence(s)
	}
	return append(attrs, encodeSearchValue(value)...)
}

// isSequenceKey reports whether key's value names a sequence set (a raw
// "1:*"-style string) rather than a literal search string.
func isSequenceKey(key string) bool {
	switch strings.ToLower(key) {
	case "uid", "seqnum":
		return true
	}
	return false
}

// encodeSearchValue recursively encodes a query value: numbers become
// Num, strings become Str, dates become a Str formatted as D-Mon-YYYY,
// sequence sets become Sequence, lists flatten element-by-element, and
// nested SearchQuery values (used by "or"/"not") expand recursively in
// place.
func encodeSearchValue(v interface{}) []Attribute {
	switch val := v.(type) {
	case nil:
		return nil
	case SearchQuery:
		return buildSearchTerms(val)
	case NumSet:
		return []Attribute{Sequence(val.String())}
	case Sequence:
		return []Attribute{val}
	case string:
		return []Attribute{Str(val)}
	case time.Time:
		return []Attribute{Str(val.Format(dateLayout))}
	case int:
		return []Attribute{Num(uint64(val))}
	case int64:
		return []Attribute{Num(uint64(val))}
	case uint32:
		return []Attribute{Num(uint64(val))}
	case uint64:
		return []Attribute{Num(val)}
	case []string:
		attrs := make([]Attribute, len(val))
		for i, s := range val {
			attrs[i] = Str(s)
		}
		return attrs
	case []Flag:
		attrs := make([]Attribute, len(val))
		for i, f := range val {
			attrs[i] = AtomStr(string(f))
		}
		return attrs
	case []interface{}:
		var attrs []Attribute
		for _, item := range val {
			attrs = append(attrs, encodeSearchValue(item)...)
		}
		return attrs
	default:
		return []Attribute{Str(fmt.Sprint(val))}
	}
}

// ParseSearch flattens the payload's "search" untagged records into a
// sorted, deduplicated list of message numbers. An empty or missing
// payload yields an empty (non-nil) slice.
func ParseSearch(resp *CommandResponse) []uint32 {
	out := []uint32{}
	if resp == nil || resp.Payload == nil {
		return out
	}
	seen := make(map[uint32]struct{})
	for _, rec := range resp.Payload["search"] {
		for _, a := range rec.Attrs {
			n, ok := numberOf(a)
			if !ok {
				continue
			}
			seen[uint32(n)] = struct{}{}
		}
	}
	for n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
