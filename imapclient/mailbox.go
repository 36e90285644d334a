package imapclient

import "github.com/alex-mail/browserbox/imap"

// ListNamespaces issues NAMESPACE (RFC 2342). ok is false when the
// server never advertised a namespace payload, i.e. it does not
// implement the extension.
func (c *Client) ListNamespaces() (imap.NamespaceSet, bool, error) {
	req := imap.BuildNamespace()
	resp, err := c.exec(req.Name, req.Attrs, []string{"namespace"})
	if err != nil {
		return imap.NamespaceSet{}, false, err
	}
	set, ok := imap.ParseNamespace(resp)
	return set, ok, nil
}

// ListMailboxes issues LIST "" "*" and assembles the results into a
// mailbox tree, tagging each node with its special-use role via
// imap.CheckSpecialUse.
func (c *Client) ListMailboxes() (*imap.MailboxNode, error) {
	req := imap.BuildList(imap.ListOptions{})
	resp, err := c.exec(req.Name, req.Attrs, []string{"list"})
	if err != nil {
		return nil, err
	}

	tree := imap.NewMailboxTree()
	caps := c.Caps()
	for _, data := range imap.ParseList(resp) {
		node := imap.EnsurePath(tree, data.Mailbox, data.Delim)
		node.Flags = data.Attrs
		node.Listed = true
		imap.CheckSpecialUse(node, caps)
	}
	return tree, nil
}

// SelectMailbox issues SELECT or EXAMINE and, on success, updates the
// session's selected-mailbox state, firing OnSelectMailbox (and
// OnCloseMailbox for whichever mailbox was previously open).
func (c *Client) SelectMailbox(path string, opts imap.SelectOptions) (Mailbox, error) {
	req := imap.BuildSelect(path, opts)
	resp, err := c.exec(req.Name, req.Attrs, []string{"exists", "flags", "ok"})
	if err != nil {
		return Mailbox{}, err
	}

	data := imap.ParseSelect(resp)
	mbox := Mailbox{
		Exists:         data.NumMessages,
		Flags:          data.Flags,
		PermanentFlags: data.PermanentFlags,
		UIDValidity:    data.UIDValidity,
		UIDNext:        data.UIDNext,
		HighestModSeq:  data.HighestModSeq,
		ReadOnly:       data.ReadOnly || opts.ReadOnly,
	}
	c.setMailbox(path, mbox)
	return mbox, nil
}
