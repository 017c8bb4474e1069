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

// Package proto dispatches parsed wire.Frame values to registered protocol
// handlers (§4.3): strip tags, peek origin, look up the token, hand the
// frame to the handler. Dispatch is synchronous on the read path; a handler
// never blocks on remote I/O (§5 "Scheduling model").
package proto

import (
	"sync"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
	"github.com/undernet-go/p10d/internal/state"
	"github.com/undernet-go/p10d/internal/wire"
)

var (
	ErrUnknownToken      = liberr.New((ircerr.MinProto + 1).Uint16(), "no handler registered for token")
	ErrHandlerRegistered = liberr.New((ircerr.MinProto + 2).Uint16(), "token already has a registered handler")
)

// Link is the minimal outbound surface a handler needs: write one frame to
// one peer. Transports (tcp, ws) implement it; tests use a fake.
type Link interface {
	WriteFrame(fr *wire.Frame) error
	IsServer() bool
	Numeric() string
}

// Context carries everything a handler needs to consume one frame: the
// authoritative state store, the link the frame arrived on, and the
// already-resolved origin (empty if the frame carried none).
type Context struct {
	Store  *state.Store
	Origin string
	From   Link

	// Links enumerates every other live link so a handler can fan frames
	// out (burst relay, channel fan-out, S2S propagation) without the
	// dispatcher itself knowing about routing topology.
	Links func() []Link
}

// HandlerFunc consumes fr, mutates Store, and may call ctx.From.WriteFrame
// or write through ctx.Links() to propagate. It must return promptly: no
// blocking remote I/O (§4.3, §5).
type HandlerFunc func(ctx *Context, fr *wire.Frame) error

// Dispatcher is the token -> HandlerFunc registry. One Dispatcher serves the
// whole process; registration happens once at startup from cmd/ircd.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register binds token to h. It panics on a duplicate registration: that is
// a programming error caught at startup, not a runtime condition.
func (d *Dispatcher) Register(token string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[token]; exists {
		panic(ErrHandlerRegistered.Error() + ": " + token)
	}
	d.handlers[token] = h
}

// Lookup returns the handler bound to token, if any.
func (d *Dispatcher) Lookup(token string) (HandlerFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[token]
	return h, ok
}

// Dispatch runs the §4.3 pipeline for one already-parsed frame: strip tags
// (the caller decides tag policy per-peer before calling), peek origin
// (already done by wire.Parse), look up the token's handler, and invoke it.
// An unknown token is forward-compatibility, not an error (§4.3 step 5): on
// a server link it is silently dropped; on a client link the caller is
// expected to translate ErrUnknownToken into an "unknown command" reply.
func (d *Dispatcher) Dispatch(ctx *Context, fr *wire.Frame) error {
	h, ok := d.Lookup(fr.Token)
	if !ok {
		return ErrUnknownToken
	}
	return h(ctx, fr)
}
