package imapclient

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/alex-mail/browserbox/imap"
)

// UpdateCapability refreshes the capability set. If forced is false and
// a capability set has already been received, it is a no-op; ran
// reports whether CAPABILITY was actually issued.
func (c *Client) UpdateCapability(forced bool) (ran bool, err error) {
	c.mu.Lock()
	cached := len(c.caps) > 0
	c.mu.Unlock()
	if cached && !forced {
		return false, nil
	}

	resp, err := c.exec("CAPABILITY", nil, []string{"capability"})
	if err != nil {
		return true, err
	}
	if resp.Capability != nil {
		return true, nil
	}
	if recs := resp.Payload["capability"]; len(recs) > 0 {
		var atoms []string
		for _, rec := range recs {
			atoms = append(atoms, imap.StrList(rec.Attrs)...)
		}
		c.setCaps(imap.NewCapSet(atoms...))
	}
	return true, nil
}

// UpdateID sends the ID command (RFC 2971) and returns the server's
// identity dictionary, or ok=false if the server does not implement ID.
func (c *Client) UpdateID(id []imap.IDField) (serverID map[string]string, ok bool, err error) {
	req := imap.BuildID(id)
	resp, err := c.exec(req.Name, req.Attrs, []string{"id"})
	if err != nil {
		return nil, false, err
	}
	serverID, ok = imap.ParseID(resp)
	if ok {
		c.mu.Lock()
		c.serverID = serverID
		c.mu.Unlock()
		c.options.log("server id", serverID)
	}
	return serverID, ok, nil
}

// login runs the handshake's authentication step, choosing AUTHENTICATE
// XOAUTH2 over plain LOGIN when the server advertises AUTH=XOAUTH2 and
// a token was supplied.
func (c *Client) login(auth *AuthOptions) error {
	if auth.XOAuth2Token != "" && c.HasCapability(imap.CapAuthXOAuth2) {
		return c.AuthenticateXOAuth2(auth.User, auth.XOAuth2Token)
	}
	return c.Login(auth.User, auth.Pass)
}

// Login authenticates with a plain LOGIN command.
func (c *Client) Login(user, pass string) error {
	resp, err := c.exec("LOGIN", []imap.Attribute{imap.Str(user), imap.Str(pass)}, []string{"capability"})
	if err != nil {
		return err
	}
	return c.finishAuth(resp)
}

// AuthenticateXOAuth2 authenticates with AUTHENTICATE XOAUTH2 (RFC
// 6749 bearer token over SASL), sending imap.BuildXOAuth2Token as the
// initial response. On the server's continuation request, the payload
// is logged (as parsed JSON when it base64-decodes to JSON, otherwise
// as the decoded or raw text) before acknowledging with a bare CRLF.
func (c *Client) AuthenticateXOAuth2(user, token string) error {
	onCont := func(text string) ([]byte, error) {
		c.logContinuation(text)
		return []byte("\r\n"), nil
	}
	resp, err := c.execCont("AUTHENTICATE",
		[]imap.Attribute{imap.AtomStr("XOAUTH2"), imap.AtomStr(imap.BuildXOAuth2Token(user, token))},
		[]string{"capability"}, onCont)
	if err != nil {
		return err
	}
	return c.finishAuth(resp)
}

func (c *Client) logContinuation(text string) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		c.options.log("xoauth2", text)
		return
	}
	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.options.log("xoauth2", string(raw))
		return
	}
	c.options.log("xoauth2", parsed)
}

// finishAuth transitions the session to AUTHENTICATED and refreshes
// capabilities from (in priority order) the tagged CAPABILITY code, the
// untagged CAPABILITY collected alongside the command, or a fresh
// forced UpdateCapability call.
func (c *Client) finishAuth(resp *imap.CommandResponse) error {
	c.setState(imap.StateAuthenticated)

	if resp.Capability != nil {
		c.setCaps(resp.Capability)
		return nil
	}
	if recs := resp.Payload["capability"]; len(recs) > 0 {
		var atoms []string
		for _, rec := range recs {
			atoms = append(atoms, imap.StrList(rec.Attrs)...)
		}
		c.setCaps(imap.NewCapSet(atoms...))
		return nil
	}
	_, err := c.UpdateCapability(true)
	return err
}
