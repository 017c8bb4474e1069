package wire

import (
	"bytes"
	"io"

	iodlm "github.com/undernet-go/p10d/ioutils/delim"
	libsiz "github.com/undernet-go/p10d/size"
)

// readBufferSize is the internal bufio buffer for the line reader; generous
// enough to absorb one maximum tag section plus one maximum body without a
// reallocation on the common path.
const readBufferSize = libsiz.SizeKilo * 9

// Framer reads and writes P10/IRCv3 frames over a byte stream. One Framer
// wraps exactly one connection; it is not safe for concurrent Read calls
// from multiple goroutines, matching the single-reader-per-link model of
// §5 (per inbound link, frames are processed strictly in arrival order).
type Framer struct {
	r iodlm.BufferDelim
	w io.Writer
}

// NewFramer builds a Framer over rw. Reads are line-delimited on '\n';
// ReadFrame tolerates a lone '\n' with no preceding '\r'.
func NewFramer(rw io.ReadWriteCloser) *Framer {
	return &Framer{
		r: iodlm.New(rw, '\n', readBufferSize),
		w: rw,
	}
}

// ReadFrame blocks until one line is available, strips its terminator, and
// parses it into a Frame. io.EOF propagates unwrapped so callers can
// distinguish a clean disconnect from a protocol violation.
func (f *Framer) ReadFrame() (*Frame, error) {
	raw, err := f.r.ReadBytes()
	if err != nil && len(raw) == 0 {
		return nil, err
	}

	raw = bytes.TrimRight(raw, "\r\n")

	return Parse(raw)
}

// WriteFrame serializes fr and writes it terminated by CRLF.
func (f *Framer) WriteFrame(fr *Frame) error {
	line := Serialize(fr)

	_, err := f.w.Write(append([]byte(line), '\r', '\n'))
	return err
}

// Close releases the underlying line reader (and, transitively, the
// wrapped connection).
func (f *Framer) Close() error {
	return f.r.Close()
}
