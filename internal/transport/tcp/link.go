/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package tcp

import (
	"sync"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
	"github.com/undernet-go/p10d/internal/proto"
	"github.com/undernet-go/p10d/internal/state"
	"github.com/undernet-go/p10d/internal/wire"
)

var ErrLinkClosed = liberr.New((ircerr.MinTransport + 10).Uint16(), "link is closed")

// Link wraps one accepted net.Conn in a wire.Framer and satisfies
// proto.Link so the dispatcher can address it directly (§4.1, §4.3).
type Link struct {
	framer   *wire.Framer
	isServer bool
	numeric  string

	mu     sync.Mutex
	closed bool
}

// NewLink wraps c for reading/writing P10 frames. isServer distinguishes a
// server-to-server peer (tags stripped, full burst semantics) from a local
// client link; numeric is the peer's server numeric once known (empty
// until registration completes).
func NewLink(c Context, isServer bool, numeric string) *Link {
	return &Link{framer: wire.NewFramer(c), isServer: isServer, numeric: numeric}
}

func (l *Link) WriteFrame(fr *wire.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLinkClosed
	}
	return l.framer.WriteFrame(fr)
}

func (l *Link) ReadFrame() (*wire.Frame, error) {
	return l.framer.ReadFrame()
}

func (l *Link) IsServer() bool { return l.isServer }

func (l *Link) Numeric() string { return l.numeric }

// SetNumeric records the peer's numeric once the SERVER/S2S introduction
// handshake resolves it.
func (l *Link) SetNumeric(n string) { l.numeric = n }

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.framer.Close()
}

// Serve drives one link's read loop: parse frames off the wire and hand
// them to d.Dispatch until the connection errors or closes (§4.3 "Dispatch
// pipeline"). registry supplies the live link set for fan-out handlers.
func Serve(l *Link, d *proto.Dispatcher, store *state.Store, registry func() []proto.Link) error {
	defer func() { _ = l.Close() }()

	for {
		fr, err := l.ReadFrame()
		if err != nil {
			return err
		}

		origin := fr.Origin
		ctx := &proto.Context{
			Store:  store,
			Origin: origin,
			From:   l,
			Links:  registry,
		}

		if dispErr := d.Dispatch(ctx, fr); dispErr != nil {
			// unknown tokens are forward-compatibility, not link failure
			// (§4.3 step 5); numeric-reply translation for client links is
			// the caller's concern, not the read loop's.
			if dispErr == proto.ErrUnknownToken {
				continue
			}
			return dispErr
		}
	}
}
