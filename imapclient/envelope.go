package imapclient

import (
	"github.com/emersion/go-message/mail"

	"github.com/alex-mail/browserbox/imap"
)

// decodeEnvelope RFC 2047-decodes an envelope's subject and every
// address display name in place, using the client's configured
// WordDecoder (imap itself stays free of a character-set dependency,
// per the imap.Envelope doc).
func (c *Client) decodeEnvelope(env *imap.Envelope) {
	if env == nil {
		return
	}
	env.Subject = c.options.decodeText(env.Subject)
	for _, list := range [][]imap.Address{env.From, env.Sender, env.ReplyTo, env.To, env.Cc, env.Bcc} {
		for i := range list {
			list[i].Name = c.options.decodeText(list[i].Name)
		}
	}
}

// FormatAddress renders a decoded envelope address as a mail header
// value ("Name <mailbox@host>"), using go-message/mail's RFC 5322
// formatting.
func FormatAddress(a imap.Address) string {
	addr := &mail.Address{Name: a.Name, Address: a.Addr()}
	return addr.String()
}
