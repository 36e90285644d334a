package imapclient

import (
	"strings"

	"github.com/alex-mail/browserbox/imap"
)

// dispatchUntagged is the untagged-response demultiplexer: it routes
// capability/ok/exists/expunge/fetch kinds to session observers, and —
// when payload/accept are non-nil, i.e. the record arrived within an
// in-flight command's window — appends it to the issuer's collected
// payload too. Called only from the driver goroutine.
func (c *Client) dispatchUntagged(rec *imap.UntaggedRecord, payload map[string][]imap.UntaggedRecord, accept map[string]bool) {
	switch rec.Kind {
	case "capability":
		c.setCaps(imap.NewCapSet(imap.StrList(rec.Attrs)...))

	case "ok":
		if rec.Code == imap.ResponseCodeCapability {
			caps := make(imap.CapSet, len(rec.CodeArgs))
			for _, a := range rec.CodeArgs {
				if atom, ok := a.(imap.Atom); ok {
					caps[imap.Cap(strings.ToUpper(atom.Name))] = struct{}{}
				}
			}
			c.setCaps(caps)
		}

	case "exists":
		if rec.Nr != nil && c.options.OnUpdate != nil {
			c.options.OnUpdate("exists", uint32(*rec.Nr))
		}

	case "expunge":
		if rec.Nr != nil && c.options.OnUpdate != nil {
			c.options.OnUpdate("expunge", uint32(*rec.Nr))
		}

	case "fetch":
		if rec.Nr != nil && len(rec.Attrs) > 0 && c.options.OnUpdate != nil {
			if list, ok := rec.Attrs[0].(imap.List); ok {
				msg := imap.ParseFetchRecord(uint32(*rec.Nr), list)
				c.decodeEnvelope(msg.Envelope)
				c.options.OnUpdate("fetch", msg)
			}
		}
	}

	if payload != nil && accept[rec.Kind] {
		payload[rec.Kind] = append(payload[rec.Kind], *rec)
	}
}
