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

package ws

import (
	"sync"
	"time"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
	"github.com/undernet-go/p10d/internal/proto"
	"github.com/undernet-go/p10d/internal/state"
	"github.com/undernet-go/p10d/internal/wire"
)

var ErrLinkClosed = liberr.New((ircerr.MinTransport + 20).Uint16(), "websocket link is closed")

// Link wraps one upgraded websocket connection in a wire.Framer and
// satisfies proto.Link. Unlike a raw TCP server link, a ws.Link is always a
// client connection (§4.1): IsServer reports false.
type Link struct {
	conn   *Conn
	framer *wire.Framer

	mu     sync.Mutex
	closed bool
	stop   chan struct{}
}

// NewLink wraps c for reading/writing P10 frames over websocket text
// messages.
func NewLink(c *Conn) *Link {
	return &Link{conn: c, framer: wire.NewFramer(c), stop: make(chan struct{})}
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

func (l *Link) IsServer() bool { return false }

func (l *Link) Numeric() string { return "" }

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	close(l.stop)
	return l.framer.Close()
}

// keepalive pings the peer every PingPeriod until the link closes, so an
// idle browser tab's connection survives intermediary proxies (§4.1).
func (l *Link) keepalive() {
	t := time.NewTicker(PingPeriod())
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			if err := l.conn.Ping(); err != nil {
				return
			}
		}
	}
}

// Serve drives one client link's read loop exactly like the TCP transport's
// Serve, plus a keepalive ping goroutine proxies need to keep the socket
// open.
func Serve(l *Link, d *proto.Dispatcher, store *state.Store, registry func() []proto.Link) error {
	defer func() { _ = l.Close() }()
	go l.keepalive()

	for {
		fr, err := l.ReadFrame()
		if err != nil {
			return err
		}

		ctx := &proto.Context{
			Store:  store,
			Origin: fr.Origin,
			From:   l,
			Links:  registry,
		}

		if dispErr := d.Dispatch(ctx, fr); dispErr != nil {
			if dispErr == proto.ErrUnknownToken {
				continue
			}
			return dispErr
		}
	}
}
