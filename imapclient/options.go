// Package imapclient implements the session controller, command
// pipeline, idle manager and untagged-response demultiplexer of a
// high-level IMAP4rev1 client, built on top of the wire codec and
// command builders/response parsers in package imap.
//
// # Character-set decoding
//
// Envelope subjects and address display names are decoded with
// go-message's charset collection by default, so encoded words in any
// charset registered there (not just US-ASCII/UTF-8) come back
// readable. Set Options.WordDecoder to override this, e.g. to a bare
// &mime.WordDecoder{} to opt back out of charset conversion.
package imapclient

import (
	"crypto/tls"
	"io"
	"mime"
	"time"

	"github.com/emersion/go-message/charset"

	"github.com/alex-mail/browserbox/imap"
)

const (
	defaultConnectionTimeout = 90 * time.Second
	defaultNoopTimeout       = 180 * time.Second
	defaultIdleTimeout       = 180 * time.Second
)

// AuthOptions selects how New logs in: AUTHENTICATE XOAUTH2 when
// XOAuth2Token is set and the server advertises AUTH=XOAUTH2, plain
// LOGIN with User/Pass otherwise. Leave Options.Auth nil to stop the
// handshake at NOT_AUTHENTICATED.
type AuthOptions struct {
	User         string
	Pass         string
	XOAuth2Token string
}

// Options configures a Client. The observer fields default to no-ops
// except OnError, which is intentionally left absent by default: an
// unhandled error is instead retained and returned from LastError.
type Options struct {
	// TLSConfig is used by DialTLS. A nil value uses the default config.
	TLSConfig *tls.Config
	// DebugWriter, if set, receives a copy of every byte read from and
	// written to the connection — including AUTHENTICATE/LOGIN
	// credentials, so treat it as sensitive.
	DebugWriter io.Writer
	// WordDecoder decodes RFC 2047 encoded words in envelope subjects
	// and address display names. A nil value defaults to a
	// mime.WordDecoder backed by go-message/charset, which understands
	// the full charset collection registered there, not just
	// US-ASCII/UTF-8. Set this to a bare &mime.WordDecoder{} to opt back
	// out of charset conversion.
	WordDecoder *mime.WordDecoder

	// OnLog receives structured log records: session, client, idle,
	// server id and xoauth2 event kinds. Logging is never load-bearing.
	OnLog func(kind string, payload interface{})
	// OnClose fires once the connection is torn down, for any reason.
	OnClose func()
	// OnError fires on a fatal session error (handshake timeout, socket
	// failure). Left nil, the error is retained; see Client.LastError.
	OnError func(err error)
	// OnAuth fires once the post-connect handshake completes successfully.
	OnAuth func()
	// OnUpdate fires for every untagged EXISTS, EXPUNGE and FETCH,
	// whether or not it is also collected into an in-flight command's
	// payload: kind "exists"/"expunge" with a uint32 value, or kind
	// "fetch" with an imap.Message value.
	OnUpdate func(kind string, value interface{})
	// OnSelectMailbox fires when a SELECT/EXAMINE completes successfully.
	OnSelectMailbox func(path string, info Mailbox)
	// OnCloseMailbox fires when the previously selected mailbox is left,
	// either by a new SELECT or by any transition out of SELECTED.
	OnCloseMailbox func(path string)

	// Auth, if set, is used to log in during New.
	Auth *AuthOptions
	// ID, if non-nil, is sent via the ID command during New.
	ID []imap.IDField

	// TimeoutConnection bounds how long New waits for the greeting.
	TimeoutConnection time.Duration
	// TimeoutNoop is the NOOP polling period used when the server does
	// not advertise IDLE.
	TimeoutNoop time.Duration
	// TimeoutIdle is how long an automatically-entered IDLE runs before
	// being broken and restarted.
	TimeoutIdle time.Duration
}

func (options *Options) connectionTimeout() time.Duration {
	if options.TimeoutConnection > 0 {
		return options.TimeoutConnection
	}
	return defaultConnectionTimeout
}

func (options *Options) noopTimeout() time.Duration {
	if options.TimeoutNoop > 0 {
		return options.TimeoutNoop
	}
	return defaultNoopTimeout
}

func (options *Options) idleTimeout() time.Duration {
	if options.TimeoutIdle > 0 {
		return options.TimeoutIdle
	}
	return defaultIdleTimeout
}

// decodeText decodes an RFC 2047 encoded-word string using
// options.WordDecoder, falling back to the input string on error.
func (options *Options) decodeText(s string) string {
	wordDecoder := options.WordDecoder
	if wordDecoder == nil {
		wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}
	}
	out, err := wordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

func (options *Options) log(kind string, payload interface{}) {
	if options.OnLog != nil {
		options.OnLog(kind, payload)
	}
}
