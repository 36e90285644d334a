package imapclient

import "github.com/alex-mail/browserbox/imap"

// ListMessages issues FETCH (or UID FETCH), defaulting items to "fast"
// when nil.
func (c *Client) ListMessages(seq imap.NumSet, items interface{}, opts imap.FetchOptions) ([]imap.Message, error) {
	if items == nil {
		items = "fast"
	}
	req := imap.BuildFetch(seq, items, opts)
	resp, err := c.exec(req.Name, req.Attrs, []string{"fetch"})
	if err != nil {
		return nil, err
	}
	messages := imap.ParseFetch(resp)
	for i := range messages {
		c.decodeEnvelope(messages[i].Envelope)
	}
	return messages, nil
}

// Search issues SEARCH (or UID SEARCH).
func (c *Client) Search(query imap.SearchQuery, opts imap.SearchOptions) ([]uint32, error) {
	req := imap.BuildSearch(query, opts)
	resp, err := c.exec(req.Name, req.Attrs, []string{"search"})
	if err != nil {
		return nil, err
	}
	return imap.ParseSearch(resp), nil
}

// SetFlags issues STORE (or UID STORE) and returns the resulting
// FETCH-shaped message list the server reports for the affected
// messages (empty when flags.Silent suppresses it).
func (c *Client) SetFlags(seq imap.NumSet, flags imap.StoreFlags, opts imap.StoreOptions) ([]imap.Message, error) {
	req := imap.BuildStore(seq, flags, opts)
	resp, err := c.exec(req.Name, req.Attrs, []string{"fetch"})
	if err != nil {
		return nil, err
	}
	return imap.ParseFetch(resp), nil
}

// DeleteMessages marks seq \Deleted and issues EXPUNGE (or UID EXPUNGE
// when byUid and the server advertises UIDPLUS), returning the expunged
// sequence numbers in arrival order — not sorted or deduplicated, since
// each EXPUNGE renumbers every later message in the same response.
func (c *Client) DeleteMessages(seq imap.NumSet, opts imap.StoreOptions) ([]uint32, error) {
	storeReq := imap.BuildStore(seq, imap.StoreFlags{Op: imap.StoreFlagsAdd, Silent: true, Flags: []imap.Flag{imap.FlagDeleted}}, opts)
	if _, err := c.exec(storeReq.Name, storeReq.Attrs, nil); err != nil {
		return nil, err
	}

	name := "EXPUNGE"
	var attrs []imap.Attribute
	if opts.ByUID && c.HasCapability(imap.CapUIDPlus) {
		name = "UID EXPUNGE"
		attrs = []imap.Attribute{imap.Sequence(seq.String())}
	}
	resp, err := c.exec(name, attrs, []string{"expunge"})
	if err != nil {
		return nil, err
	}
	return imap.ParseExpunge(resp), nil
}

// CopyMessages issues COPY (or UID COPY), returning the tagged
// completion's human-readable text.
func (c *Client) CopyMessages(seq imap.NumSet, dst string, opts imap.CopyOptions) (string, error) {
	req := imap.BuildCopy(seq, dst, opts)
	resp, err := c.exec(req.Name, req.Attrs, nil)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// MoveMessages issues MOVE (or UID MOVE) when the server advertises
// CapMove, falling back to COPY+STORE+EXPUNGE otherwise. It returns the
// expunged sequence numbers in arrival order, mirroring DeleteMessages.
func (c *Client) MoveMessages(seq imap.NumSet, dst string, opts imap.CopyOptions) ([]uint32, error) {
	if c.HasCapability(imap.CapMove) {
		req := imap.BuildMove(seq, dst, opts)
		resp, err := c.exec(req.Name, req.Attrs, []string{"expunge"})
		if err != nil {
			return nil, err
		}
		return imap.ParseExpunge(resp), nil
	}

	if _, err := c.CopyMessages(seq, dst, opts); err != nil {
		return nil, err
	}
	return c.DeleteMessages(seq, imap.StoreOptions{ByUID: opts.ByUID})
}
