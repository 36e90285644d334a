package imapclient

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alex-mail/browserbox/imap"
	"github.com/alex-mail/browserbox/internal/wire"
)

var dialer = &net.Dialer{Timeout: 30 * time.Second}

// Mailbox is the state a SELECT/EXAMINE completion leaves behind.
type Mailbox struct {
	Exists         uint32
	Flags          []imap.Flag
	PermanentFlags []imap.Flag
	UIDValidity    uint32
	UIDNext        imap.UID
	HighestModSeq  uint64
	ReadOnly       bool
}

// idleMode names how the driver keeps the connection alive between
// foreground commands.
type idleMode int

const (
	idleModeCommand idleMode = iota // "IDLE" sent, DONE breaks it
	idleModeNoop                    // no IDLE capability; timer-only, NOOP on tick
)

type idleState struct {
	mode  idleMode
	tag   string // set only in idleModeCommand
	timer *time.Timer
}

// line is one decoded unit the reader goroutine hands to the driver
// goroutine: either an untagged record, a command-continuation request,
// a tagged completion, or a fatal decode error.
type line struct {
	untagged *imap.UntaggedRecord
	cont     bool
	contText string
	tag      string
	resp     *imap.CommandResponse
	err      error
}

// pipelineRequest is one exec() call marshaled onto the driver
// goroutine: the driver goroutine is the only one that ever touches
// session/idle state, so every caller-side call is translated into a
// request sent over reqCh instead.
type pipelineRequest struct {
	req      imap.CommandRequest
	accept   []string
	onCont   func(text string) ([]byte, error)
	resultCh chan execResult
}

type execResult struct {
	resp *imap.CommandResponse
	err  error
}

// Client is a single IMAP4rev1 session: one TCP/TLS connection, one
// background driver goroutine owning all state mutation, and a
// synchronous exec() surface callers use from any goroutine.
type Client struct {
	conn    net.Conn
	options Options

	dec *wire.Decoder
	enc *wire.Encoder
	bw  *bufio.Writer

	linesCh chan line
	reqCh   chan *pipelineRequest
	closeCh chan struct{}
	closed  atomic.Bool

	greetingCh chan error

	tagMu   sync.Mutex
	tagNum  uint64

	mu          sync.Mutex
	state       imap.SessionState
	caps        imap.CapSet
	serverID    map[string]string
	mailboxPath string
	mailbox     *Mailbox
	lastErr     error

	idling *idleState
}

// New wraps an already-connected socket and runs the connect handshake:
// read the greeting, updateCapability, updateId (if options.ID is set)
// and login (if options.Auth is set). On any handshake error the
// connection is closed and the error returned.
func New(conn net.Conn, options *Options) (*Client, error) {
	if options == nil {
		options = &Options{}
	}
	br := bufio.NewReader(newDebugReader(conn, options.DebugWriter))
	bw := bufio.NewWriter(newDebugWriter(conn, options.DebugWriter))

	c := &Client{
		conn:       conn,
		options:    *options,
		dec:        wire.NewDecoder(br),
		enc:        wire.NewEncoder(bw),
		bw:         bw,
		linesCh:    make(chan line, 8),
		reqCh:      make(chan *pipelineRequest),
		closeCh:    make(chan struct{}),
		greetingCh: make(chan error, 1),
		state:      imap.StateConnecting,
		caps:       imap.CapSet{},
	}

	go c.readLoop()
	go c.driverLoop()

	timer := time.NewTimer(options.connectionTimeout())
	defer timer.Stop()
	select {
	case err := <-c.greetingCh:
		if err != nil {
			c.shutdown(err)
			return nil, err
		}
	case <-timer.C:
		err := fmt.Errorf("imapclient: timed out waiting for greeting")
		c.shutdown(err)
		return nil, err
	}

	if _, err := c.UpdateCapability(false); err != nil {
		c.Close()
		return nil, err
	}
	if options.ID != nil {
		if _, _, err := c.UpdateID(options.ID); err != nil {
			c.Close()
			return nil, err
		}
	}
	if options.Auth != nil {
		if err := c.login(options.Auth); err != nil {
			c.Close()
			return nil, err
		}
		if options.OnAuth != nil {
			options.OnAuth()
		}
	}

	return c, nil
}

// DialInsecure connects to address in the clear and runs New.
func DialInsecure(address string, options *Options) (*Client, error) {
	conn, err := dialer.Dial("tcp", address)
	if err != nil {
		return nil, err
	}
	return New(conn, options)
}

// DialTLS connects to address over TLS and runs New.
func DialTLS(address string, options *Options) (*Client, error) {
	var tlsConfig *tls.Config
	if options != nil {
		tlsConfig = options.TLSConfig
	}
	conn, err := tls.DialWithDialer(dialer, "tcp", address, tlsConfig)
	if err != nil {
		return nil, err
	}
	return New(conn, options)
}

func (c *Client) nextTag() string {
	c.tagMu.Lock()
	defer c.tagMu.Unlock()
	c.tagNum++
	return fmt.Sprintf("A%d", c.tagNum)
}

// readLoop is the sole goroutine reading the socket. It decodes one
// logical line at a time and hands it to the driver goroutine, keeping
// I/O and state mutation cleanly separated: the socket is exclusively
// owned by the wire codec.
func (c *Client) readLoop() {
	for {
		var ln line
		switch {
		case c.dec.Special('*'):
			if err := c.dec.ExpectSP(); err != nil {
				ln.err = err
				break
			}
			rec, err := imap.ReadUntagged(c.dec)
			if err != nil {
				// An unrecognized or malformed untagged line (e.g. a
				// flag token the parser can't make sense of) shouldn't
				// tear down the whole session: discard the rest of the
				// line and resume reading at the next one.
				if derr := c.dec.DiscardLine(); derr != nil {
					ln.err = derr
					break
				}
				continue
			}
			ln.untagged = rec
		case c.dec.Special('+'):
			c.dec.SP()
			text, err := imap.ReadRestOfLine(c.dec)
			if err != nil {
				ln.err = err
				break
			}
			ln.cont = true
			ln.contText = text
		default:
			tag, ok := c.dec.Atom()
			if !ok {
				ln.err = fmt.Errorf("imap: expected tag, atom or continuation")
				break
			}
			resp, err := imap.ReadTagged(c.dec)
			if err != nil {
				ln.err = err
				break
			}
			ln.tag = tag
			ln.resp = resp
		}

		select {
		case c.linesCh <- ln:
		case <-c.closeCh:
			return
		}
		if ln.err != nil {
			return
		}
	}
}

// driverLoop is the single goroutine that owns all session/idle/
// pipeline state. It multiplexes decoded lines against exec()
// submissions and the idle timer.
func (c *Client) driverLoop() {
	for {
		var timerC <-chan time.Time
		if c.idling != nil {
			timerC = c.idling.timer.C
		}

		select {
		case ln, ok := <-c.linesCh:
			if !ok {
				return
			}
			if ln.err != nil {
				c.shutdown(ln.err)
				return
			}
			if ln.untagged != nil {
				c.handleLine(ln.untagged)
			}
			// Stray tagged completions or continuations with nothing
			// in flight are tolerated and dropped.

		case req := <-c.reqCh:
			c.breakIdleLocked()
			c.runRequest(req)
			if !strings.EqualFold(req.req.Name, "LOGOUT") {
				c.maybeEnterIdle()
			}

		case <-timerC:
			mode := c.idling.mode
			c.breakIdleLocked()
			if mode == idleModeNoop {
				c.runRequest(&pipelineRequest{
					req:      imap.CommandRequest{Name: "NOOP"},
					resultCh: make(chan execResult, 1),
				})
			}
			c.maybeEnterIdle()

		case <-c.closeCh:
			return
		}
	}
}

// handleLine processes an untagged line seen with no command in
// flight: the greeting on first sight, otherwise the untagged
// demultiplexer's session-observer path (handler.go).
func (c *Client) handleLine(rec *imap.UntaggedRecord) {
	c.mu.Lock()
	greeted := c.state != imap.StateConnecting
	c.mu.Unlock()
	if !greeted {
		c.handleGreeting(rec)
		return
	}
	c.dispatchUntagged(rec, nil, nil)
}

func (c *Client) handleGreeting(rec *imap.UntaggedRecord) {
	var err error
	switch rec.Kind {
	case "ok":
		c.setState(imap.StateNotAuthenticated)
	case "preauth":
		c.setState(imap.StateAuthenticated)
	case "bye":
		err = fmt.Errorf("imapclient: server closed connection: %s", rec.Text)
	default:
		err = fmt.Errorf("imapclient: unexpected greeting %q", rec.Kind)
	}
	select {
	case c.greetingCh <- err:
	default:
	}
}

// runRequest writes req's command and blocks (from the driver's own
// point of view — it is still the single goroutine) reading lines until
// the matching tagged completion arrives, then replies on resultCh.
func (c *Client) runRequest(req *pipelineRequest) {
	tag := c.nextTag()
	if err := imap.WriteCommand(c.enc, tag, req.req); err != nil {
		req.resultCh <- execResult{nil, err}
		return
	}
	if err := c.enc.Flush(); err != nil {
		req.resultCh <- execResult{nil, err}
		return
	}

	payload := map[string][]imap.UntaggedRecord{}
	accept := make(map[string]bool, len(req.accept))
	for _, k := range req.accept {
		accept[strings.ToLower(k)] = true
	}

	for {
		ln, ok := <-c.linesCh
		if !ok {
			req.resultCh <- execResult{nil, io.ErrClosedPipe}
			return
		}
		if ln.err != nil {
			req.resultCh <- execResult{nil, ln.err}
			c.shutdown(ln.err)
			return
		}
		switch {
		case ln.untagged != nil:
			c.dispatchUntagged(ln.untagged, payload, accept)
		case ln.cont:
			if req.onCont == nil {
				continue
			}
			data, err := req.onCont(ln.contText)
			if err != nil {
				req.resultCh <- execResult{nil, err}
				return
			}
			if _, err := c.bw.Write(data); err != nil {
				req.resultCh <- execResult{nil, err}
				return
			}
			if err := c.bw.Flush(); err != nil {
				req.resultCh <- execResult{nil, err}
				return
			}
		case ln.tag != "":
			if ln.tag != tag {
				continue
			}
			resp := ln.resp
			resp.Payload = payload
			if resp.Capability != nil {
				c.setCaps(resp.Capability)
			}
			req.resultCh <- execResult{resp, resp.Err()}
			return
		}
	}
}

// breakIdleLocked tears down whatever idle mode is active, synchronously
// from the driver's viewpoint. Called only from the driver goroutine.
func (c *Client) breakIdleLocked() {
	if c.idling == nil {
		return
	}
	idling := c.idling
	c.idling = nil
	idling.timer.Stop()

	if idling.mode != idleModeCommand {
		return
	}

	if _, err := c.bw.WriteString("DONE\r\n"); err != nil {
		c.shutdown(err)
		return
	}
	if err := c.bw.Flush(); err != nil {
		c.shutdown(err)
		return
	}
	for {
		ln, ok := <-c.linesCh
		if !ok {
			return
		}
		if ln.err != nil {
			c.shutdown(ln.err)
			return
		}
		if ln.untagged != nil {
			c.dispatchUntagged(ln.untagged, nil, nil)
			continue
		}
		if ln.tag == idling.tag {
			return
		}
	}
}

// maybeEnterIdle re-enters server-push listening once the pipeline has
// drained: IDLE mode if the server advertises IDLE, otherwise a
// NOOP-polling timer. Called only from the driver goroutine.
func (c *Client) maybeEnterIdle() {
	if c.idling != nil || c.closed.Load() {
		return
	}
	c.mu.Lock()
	authenticated := c.state.Authenticated()
	c.mu.Unlock()
	if !authenticated {
		return
	}

	if !c.HasCapability(imap.CapIdle) {
		c.idling = &idleState{mode: idleModeNoop, timer: time.NewTimer(c.options.noopTimeout())}
		return
	}

	tag := c.nextTag()
	if err := imap.WriteCommand(c.enc, tag, imap.CommandRequest{Name: "IDLE"}); err != nil {
		c.shutdown(err)
		return
	}
	if err := c.enc.Flush(); err != nil {
		c.shutdown(err)
		return
	}
	for {
		ln, ok := <-c.linesCh
		if !ok {
			return
		}
		if ln.err != nil {
			c.shutdown(ln.err)
			return
		}
		if ln.untagged != nil {
			c.dispatchUntagged(ln.untagged, nil, nil)
			continue
		}
		if ln.cont {
			c.idling = &idleState{mode: idleModeCommand, tag: tag, timer: time.NewTimer(c.options.idleTimeout())}
			return
		}
		if ln.tag == tag {
			// server rejected IDLE outright; give up quietly this round.
			return
		}
	}
}

// exec submits a command to the driver goroutine and blocks for its
// tagged completion. It is the only entry point callers outside the
// driver goroutine use to talk to the server.
func (c *Client) exec(name string, attrs []imap.Attribute, accept []string) (*imap.CommandResponse, error) {
	return c.execCont(name, attrs, accept, nil)
}

func (c *Client) execCont(name string, attrs []imap.Attribute, accept []string, onCont func(string) ([]byte, error)) (*imap.CommandResponse, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("imapclient: connection closed")
	}
	req := &pipelineRequest{
		req:      imap.CommandRequest{Name: name, Attrs: attrs},
		accept:   accept,
		onCont:   onCont,
		resultCh: make(chan execResult, 1),
	}
	select {
	case c.reqCh <- req:
	case <-c.closeCh:
		return nil, fmt.Errorf("imapclient: connection closed")
	}
	res := <-req.resultCh
	return res.resp, res.err
}

// setState updates the session state, firing OnCloseMailbox when the
// transition leaves SELECTED.
func (c *Client) setState(state imap.SessionState) {
	c.mu.Lock()
	prevPath := c.mailboxPath
	leavingSelected := c.state == imap.StateSelected && state != imap.StateSelected
	if leavingSelected {
		c.mailboxPath = ""
		c.mailbox = nil
	}
	c.state = state
	c.mu.Unlock()

	if leavingSelected && prevPath != "" && c.options.OnCloseMailbox != nil {
		c.options.OnCloseMailbox(prevPath)
	}
}

func (c *Client) setCaps(caps imap.CapSet) {
	c.mu.Lock()
	c.caps = caps
	c.mu.Unlock()
}

func (c *Client) setMailbox(path string, mbox Mailbox) {
	c.mu.Lock()
	prevPath := c.mailboxPath
	c.mailboxPath = path
	c.mailbox = &mbox
	c.state = imap.StateSelected
	c.mu.Unlock()

	if prevPath != "" && prevPath != path && c.options.OnCloseMailbox != nil {
		c.options.OnCloseMailbox(prevPath)
	}
	if c.options.OnSelectMailbox != nil {
		c.options.OnSelectMailbox(path, mbox)
	}
}

// State returns the current session state.
func (c *Client) State() imap.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Caps returns the current capability set.
func (c *Client) Caps() imap.CapSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps
}

// HasCapability reports whether the server has advertised cap.
func (c *Client) HasCapability(cap imap.Cap) bool {
	return c.Caps().Has(cap)
}

// ServerID returns the server identity dictionary set by UpdateID, and
// whether one has ever been received.
func (c *Client) ServerID() (map[string]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.serverID == nil {
		return nil, false
	}
	return c.serverID, true
}

// Mailbox returns the currently selected mailbox's path and state, or
// ok=false if no mailbox is selected.
func (c *Client) Mailbox() (path string, info Mailbox, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mailbox == nil {
		return "", Mailbox{}, false
	}
	return c.mailboxPath, *c.mailbox, true
}

// LastError returns the fatal session error, if any, that would
// otherwise only have reached options.OnError when it is left nil.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) shutdown(err error) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.mu.Lock()
	c.lastErr = err
	c.state = imap.StateLogout
	c.mu.Unlock()

	close(c.closeCh)
	c.conn.Close()

	if err != nil && c.options.OnError != nil {
		c.options.OnError(err)
	}
	if c.options.OnClose != nil {
		c.options.OnClose()
	}
}

// Close issues LOGOUT and tears the connection down. It returns the
// LOGOUT command's error, if any; the underlying socket is closed
// either way.
func (c *Client) Close() error {
	if c.closed.Load() {
		return nil
	}
	_, err := c.exec("LOGOUT", nil, nil)
	c.shutdown(nil)
	return err
}
