package imap

import (
	"strings"

	"github.com/alex-mail/browserbox/internal/utf7"
)

// MailboxNode is one node of the mailbox tree built up by successive
// calls to EnsurePath. The tree's root is an anonymous node with Root
// set and an empty Path.
type MailboxNode struct {
	Root       bool
	Name       string
	Delimiter  rune
	Path       string
	Children   map[string]*MailboxNode
	Flags      []MailboxAttr
	Listed     bool
	Subscribed bool
	SpecialUse MailboxAttr
}

// NewMailboxTree returns an empty root node.
func NewMailboxTree() *MailboxNode {
	return &MailboxNode{Root: true, Children: map[string]*MailboxNode{}}
}

// EnsurePath walks tree along path (split on delimiter), creating any
// missing intermediate nodes, and returns the leaf. Each segment's Name
// is modified-UTF-7-decoded; a node's Path is the original (encoded)
// prefix joined by delimiter. Re-invocation with the same path returns
// the same node.
func EnsurePath(tree *MailboxNode, path string, delimiter rune) *MailboxNode {
	if tree.Children == nil {
		tree.Children = map[string]*MailboxNode{}
	}
	if path == "" {
		return tree
	}
	sep := string(delimiter)
	if sep == "" {
		sep = "/"
	}
	parts := strings.Split(path, sep)

	node := tree
	var prefix []string
	for _, part := range parts {
		prefix = append(prefix, part)
		if node.Children == nil {
			node.Children = map[string]*MailboxNode{}
		}
		child, ok := node.Children[part]
		if !ok {
			name, err := utf7.Decode(part)
			if err != nil {
				name = part
			}
			child = &MailboxNode{
				Name:      name,
				Delimiter: delimiter,
				Path:      strings.Join(prefix, sep),
				Children:  map[string]*MailboxNode{},
			}
			node.Children[part] = child
		}
		node = child
	}
	return node
}
