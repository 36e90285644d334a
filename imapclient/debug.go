package imapclient

import "io"

// newDebugReader wraps r so that every byte read is also copied to w,
// a passive-observation hook for Options.DebugWriter. A nil w returns r
// unchanged.
func newDebugReader(r io.Reader, w io.Writer) io.Reader {
	if w == nil {
		return r
	}
	return io.TeeReader(r, w)
}

// newDebugWriter wraps w2 so that every byte written is also copied to
// w. A nil w returns w2 unchanged.
func newDebugWriter(w2 io.Writer, w io.Writer) io.Writer {
	if w == nil {
		return w2
	}
	return io.MultiWriter(w2, w)
}
