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

// Package relay assembles the independently-built protocol, state, and
// transport packages into one running P10 server: a link registry shared
// by the TCP and WebSocket listeners, a dispatcher carrying both the core
// §4.5 tokens and the IRCv3 §4.6 tokens, and the config.Component adapters
// that let cmd/ircd start/reload/stop each moving part in dependency
// order through internal/config.Manager.
package relay

import (
	"sync"
	"time"

	"github.com/undernet-go/p10d/internal/capability"
	"github.com/undernet-go/p10d/internal/handlers"
	"github.com/undernet-go/p10d/internal/numeric"
	"github.com/undernet-go/p10d/internal/proto"
	"github.com/undernet-go/p10d/internal/state"
)

// Relay owns the process-wide state store, dispatcher and live link set
// that every transport component reads and writes through.
type Relay struct {
	Store      *state.Store
	Dispatcher *proto.Dispatcher
	Core       *handlers.Core
	IRCv3      *handlers.Registry

	mu    sync.RWMutex
	links map[proto.Link]struct{}
}

// New builds a Relay identified by numeric (the relay's own P10 server
// numeric) and serverName (used on generated IRCv3 tags).
func New(me numeric.Server, serverName string, metaTTL time.Duration) *Relay {
	d := proto.NewDispatcher()

	core := handlers.NewCore(serverName)
	core.Register(d)

	reg := handlers.NewRegistry(serverName, metaTTL)
	reg.Register(d)

	return &Relay{
		Store:      state.New(me),
		Dispatcher: d,
		Core:       core,
		IRCv3:      reg,
		links:      make(map[proto.Link]struct{}),
	}
}

// Links returns a snapshot of every currently-registered link, used by
// fan-out handlers (PRIVMSG to a channel, burst broadcast, ...).
func (r *Relay) Links() []proto.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]proto.Link, 0, len(r.links))
	for l := range r.links {
		out = append(out, l)
	}
	return out
}

// AddLink registers l so it appears in Links() and can receive fan-out
// traffic. Transports call this once a link is accepted.
func (r *Relay) AddLink(l proto.Link) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[l] = struct{}{}
}

// DelLink removes l, called once its Serve loop returns.
func (r *Relay) DelLink(l proto.Link) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, l)
}

// Capabilities exposes the shared capability table IRCv3 client links
// negotiate against.
func (r *Relay) Capabilities() *capability.Table {
	return r.IRCv3.Caps
}
