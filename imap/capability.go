package imap

import "strings"

// Cap is a case-insensitive IMAP capability atom.
//
// The atoms named below are the only ones this package's own logic
// reasons about; a server may advertise others, which are stored in
// the CapSet verbatim but never gate any behavior in this package.
type Cap string

const (
	CapIMAP4rev1   Cap = "IMAP4REV1"
	CapIdle        Cap = "IDLE"
	CapNamespace   Cap = "NAMESPACE"
	CapID          Cap = "ID"
	CapUIDPlus     Cap = "UIDPLUS"
	CapMove        Cap = "MOVE"
	CapCondStore   Cap = "CONDSTORE"
	CapSpecialUse  Cap = "SPECIAL-USE"
	CapAuthXOAuth2 Cap = "AUTH=XOAUTH2"
	CapStartTLS    Cap = "STARTTLS"
)

// AuthCap returns the capability atom naming SASL mechanism, e.g.
// AuthCap("XOAUTH2") == CapAuthXOAuth2.
func AuthCap(mechanism string) Cap {
	return Cap("AUTH=" + strings.ToUpper(mechanism))
}

// CapSet is an unordered, case-insensitive set of capability atoms. It
// is replaced wholesale on every negotiated update, never mutated
// element-by-element by callers.
type CapSet map[Cap]struct{}

// NewCapSet builds a CapSet from a list of raw atoms, uppercasing each
// for case-insensitive comparison.
func NewCapSet(atoms ...string) CapSet {
	set := make(CapSet, len(atoms))
	for _, a := range atoms {
		set[Cap(strings.ToUpper(a))] = struct{}{}
	}
	return set
}

// Has reports whether the set advertises cap, case-insensitively.
func (set CapSet) Has(c Cap) bool {
	if set == nil {
		return false
	}
	_, ok := set[Cap(strings.ToUpper(string(c)))]
	return ok
}

// Atoms returns the set's members as an unordered slice.
func (set CapSet) Atoms() []string {
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, string(c))
	}
	return out
}
