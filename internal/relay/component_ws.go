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

package relay

import (
	"context"
	"sync"
	"sync/atomic"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/undernet-go/p10d/errors"
	cfgpkg "github.com/undernet-go/p10d/internal/config"
	wstsp "github.com/undernet-go/p10d/internal/transport/ws"
)

// WSComponent exposes the IRCv3-over-WebSocket client listener (§4.1
// "webirc" transport) and satisfies internal/config.Component.
type WSComponent struct {
	r *Relay

	mu      sync.Mutex
	cancel  context.CancelFunc
	started atomic.Bool
}

// NewWSComponent returns a component serving r's dispatcher/store over
// WebSocket.
func NewWSComponent(r *Relay) *WSComponent {
	return &WSComponent{r: r}
}

func (c *WSComponent) Name() string           { return "ws" }
func (c *WSComponent) Dependencies() []string { return nil }

func (c *WSComponent) RegisterFlag(cmd *spfcbr.Command, _ *spfvpr.Viper) error {
	cmd.PersistentFlags().String("ws-listen", ":8067", "address the IRCv3-over-WebSocket listener binds to")
	return nil
}

func (c *WSComponent) Start(get cfgpkg.FuncConfigGet) liberr.Error {
	vpr := get("ws")
	addr := ":8067"
	if vpr != nil && vpr.GetString("listen") != "" {
		addr = vpr.GetString("listen")
	}

	srv := wstsp.New(c.r.Store, c.r.Dispatcher, c.r.Links,
		func(l *wstsp.Link) { c.r.AddLink(l) },
		func(l *wstsp.Link) { c.r.DelLink(l) },
	)

	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		_ = srv.Listen(ctx, addr)
	}()

	c.started.Store(true)
	return nil
}

func (c *WSComponent) Reload(get cfgpkg.FuncConfigGet) liberr.Error {
	c.Stop()
	return c.Start(get)
}

func (c *WSComponent) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.started.Store(false)
}

func (c *WSComponent) IsStarted() bool { return c.started.Load() }
