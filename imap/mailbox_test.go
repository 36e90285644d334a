package imap

import "testing"

func TestEnsurePathCreatesNestedNodes(t *testing.T) {
	tree := NewMailboxTree()
	leaf := EnsurePath(tree, "hello/world", '/')

	if leaf.Name != "world" || leaf.Path != "hello/world" || leaf.Delimiter != '/' {
		t.Fatalf("leaf = %+v", leaf)
	}
	mid, ok := tree.Children["hello"]
	if !ok || mid.Name != "hello" || mid.Path != "hello" {
		t.Fatalf("mid = %+v, ok = %v", mid, ok)
	}
	if _, ok := mid.Children["world"]; !ok {
		t.Fatal("expected world under hello")
	}
}

func TestEnsurePathIdempotent(t *testing.T) {
	tree := NewMailboxTree()
	first := EnsurePath(tree, "hello/world", '/')
	second := EnsurePath(tree, "hello/world", '/')
	if first != second {
		t.Fatalf("EnsurePath returned distinct nodes for the same path")
	}
}

func TestCheckSpecialUseFromCapability(t *testing.T) {
	node := &MailboxNode{Name: "Anything", Flags: []MailboxAttr{MailboxAttrTrash}}
	CheckSpecialUse(node, NewCapSet("SPECIAL-USE"))
	if node.SpecialUse != MailboxAttrTrash {
		t.Fatalf("SpecialUse = %v, want Trash", node.SpecialUse)
	}
}

func TestCheckSpecialUseFromNameDictionary(t *testing.T) {
	node := &MailboxNode{Name: "Papierkorb"}
	CheckSpecialUse(node, NewCapSet())
	if node.SpecialUse != MailboxAttrTrash {
		t.Fatalf("SpecialUse = %v, want Trash", node.SpecialUse)
	}
}
