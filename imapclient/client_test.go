package imapclient

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/alex-mail/browserbox/imap"
)

// fakeServer is a minimal line-oriented IMAP server used to drive
// Client through net.Pipe without a real socket. It deliberately never
// advertises IDLE, so the driver's automatic idle re-entry falls back
// to the NOOP timer (no extra wire traffic to script in tests).
type fakeServer struct {
	t *testing.T
	r *bufio.Reader
	w *bufio.Writer
}

func newFakeServer(t *testing.T, conn net.Conn) *fakeServer {
	return &fakeServer{t: t, r: bufio.NewReader(conn), w: bufio.NewWriter(conn)}
}

func (s *fakeServer) send(format string, args ...interface{}) {
	s.t.Helper()
	line := fmt.Sprintf(format, args...)
	if _, err := s.w.WriteString(line + "\r\n"); err != nil {
		s.t.Fatalf("fakeServer: write: %v", err)
	}
	if err := s.w.Flush(); err != nil {
		s.t.Fatalf("fakeServer: flush: %v", err)
	}
}

// readCommand reads one client command line, split into its tag and
// the remainder.
func (s *fakeServer) readCommand() (tag, rest string) {
	s.t.Helper()
	line, err := s.r.ReadString('\n')
	if err != nil {
		s.t.Fatalf("fakeServer: read: %v", err)
	}
	line = strings.TrimRight(line, "\r\n")
	parts := strings.SplitN(line, " ", 2)
	tag = parts[0]
	if len(parts) > 1 {
		rest = parts[1]
	}
	return tag, rest
}

func dialFake(t *testing.T) (*fakeServer, net.Conn) {
	client, server := net.Pipe()
	return newFakeServer(t, server), client
}

func TestConnectAndLogin(t *testing.T) {
	server, conn := dialFake(t)

	resultCh := make(chan struct{})
	var client *Client
	var err error
	go func() {
		client, err = New(conn, &Options{Auth: &AuthOptions{User: "alice", Pass: "secret"}})
		close(resultCh)
	}()

	server.send("* OK IMAP4rev1 ready")

	tag, rest := server.readCommand()
	if rest != "CAPABILITY" {
		t.Fatalf("first command = %q, want CAPABILITY", rest)
	}
	server.send("* CAPABILITY IMAP4REV1 UIDPLUS MOVE")
	server.send("%s OK CAPABILITY completed", tag)

	tag, rest = server.readCommand()
	if !strings.HasPrefix(rest, "LOGIN ") {
		t.Fatalf("second command = %q, want LOGIN", rest)
	}
	server.send("%s OK [CAPABILITY IMAP4REV1 UIDPLUS MOVE] LOGIN completed", tag)

	select {
	case <-resultCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for New to return")
	}
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.State() != imap.StateAuthenticated {
		t.Fatalf("State() = %v, want Authenticated", client.State())
	}
	if !client.HasCapability(imap.CapMove) {
		t.Fatal("expected MOVE capability")
	}
}

func TestSelectMailboxFiresObservers(t *testing.T) {
	server, conn := dialFake(t)

	handshakeDone := make(chan *Client)
	var selected string
	go func() {
		client, err := New(conn, &Options{
			OnSelectMailbox: func(path string, info Mailbox) { selected = path },
		})
		if err != nil {
			t.Errorf("New() error = %v", err)
			return
		}
		handshakeDone <- client
	}()

	server.send("* OK ready")
	tag, _ := server.readCommand()
	server.send("* CAPABILITY IMAP4REV1")
	server.send("%s OK CAPABILITY completed", tag)

	var client *Client
	select {
	case client = <-handshakeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handshake")
	}

	selectDone := make(chan Mailbox)
	go func() {
		mbox, err := client.SelectMailbox("INBOX", imap.SelectOptions{})
		if err != nil {
			t.Errorf("SelectMailbox() error = %v", err)
			return
		}
		selectDone <- mbox
	}()

	tag, rest := server.readCommand()
	if rest != `SELECT "INBOX"` {
		t.Fatalf("command = %q, want SELECT \"INBOX\"", rest)
	}
	server.send("* 42 EXISTS")
	server.send("* FLAGS (\\Seen \\Deleted)")
	server.send("%s OK [READ-WRITE] SELECT completed", tag)

	select {
	case mbox := <-selectDone:
		if mbox.Exists != 42 {
			t.Fatalf("Exists = %d, want 42", mbox.Exists)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SelectMailbox")
	}
	if selected != "INBOX" {
		t.Fatalf("OnSelectMailbox path = %q, want INBOX", selected)
	}
	if path, _, ok := client.Mailbox(); !ok || path != "INBOX" {
		t.Fatalf("Mailbox() = %q, %v", path, ok)
	}
}

func TestSearchResultSortedDeduplicated(t *testing.T) {
	server, conn := dialFake(t)

	handshakeDone := make(chan *Client)
	go func() {
		client, err := New(conn, nil)
		if err != nil {
			t.Errorf("New() error = %v", err)
			return
		}
		handshakeDone <- client
	}()

	server.send("* OK ready")
	tag, _ := server.readCommand()
	server.send("* CAPABILITY IMAP4REV1")
	server.send("%s OK CAPABILITY completed", tag)

	var client *Client
	select {
	case client = <-handshakeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handshake")
	}

	searchDone := make(chan []uint32)
	go func() {
		nums, err := client.Search(imap.SearchQuery{{Key: "all", Value: true}}, imap.SearchOptions{})
		if err != nil {
			t.Errorf("Search() error = %v", err)
			return
		}
		searchDone <- nums
	}()

	tag, rest := server.readCommand()
	if rest != "SEARCH ALL" {
		t.Fatalf("command = %q, want SEARCH ALL", rest)
	}
	server.send("* SEARCH 5 7")
	server.send("* SEARCH 6")
	server.send("%s OK SEARCH completed", tag)

	select {
	case nums := <-searchDone:
		want := []uint32{5, 6, 7}
		if len(nums) != len(want) {
			t.Fatalf("Search() = %v, want %v", nums, want)
		}
		for i := range want {
			if nums[i] != want[i] {
				t.Fatalf("Search() = %v, want %v", nums, want)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Search")
	}
}
