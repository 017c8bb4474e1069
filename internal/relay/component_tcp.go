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
	"crypto/tls"
	"sync"
	"sync/atomic"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/undernet-go/p10d/errors"
	cfgpkg "github.com/undernet-go/p10d/internal/config"
	tcptsp "github.com/undernet-go/p10d/internal/transport/tcp"
	tlstsp "github.com/undernet-go/p10d/internal/transport/tls"
)

// TCPComponent listens for server-to-server P10 links over plain or
// TLS-wrapped TCP, handing each accepted connection's frames to the
// Relay's dispatcher. It satisfies internal/config.Component so
// cmd/ircd can start/stop it through the Manager's dependency-ordered
// lifecycle instead of calling internal/transport/tcp directly.
type TCPComponent struct {
	r *Relay

	mu      sync.Mutex
	srv     *tcptsp.Server
	cancel  context.CancelFunc
	started atomic.Bool
}

// NewTCPComponent returns a component wrapping the given Relay's
// dispatcher/store/link-registry.
func NewTCPComponent(r *Relay) *TCPComponent {
	return &TCPComponent{r: r}
}

func (c *TCPComponent) Name() string           { return "tcp" }
func (c *TCPComponent) Dependencies() []string { return nil }

func (c *TCPComponent) RegisterFlag(cmd *spfcbr.Command, _ *spfvpr.Viper) error {
	cmd.PersistentFlags().String("tcp-listen", ":4400", "address the P10 server-link listener binds to")
	return nil
}

func (c *TCPComponent) handle(conn tcptsp.Context) {
	link := tcptsp.NewLink(conn, true, "")
	c.r.AddLink(link)
	defer c.r.DelLink(link)
	_ = tcptsp.Serve(link, c.r.Dispatcher, c.r.Store, c.r.Links)
}

func (c *TCPComponent) Start(get cfgpkg.FuncConfigGet) liberr.Error {
	vpr := get("tcp")
	addr := ":4400"
	if vpr != nil && vpr.GetString("listen") != "" {
		addr = vpr.GetString("listen")
	}

	var tlsCfg *tls.Config
	if vpr != nil && vpr.GetBool("tls.enabled") {
		tlsCfg = tlstsp.Build(tlstsp.LinkConfig{
			ServerName: vpr.GetString("tls.server-name"),
			VersionMin: tlstsp.DefaultVersionMin,
			VersionMax: tlstsp.DefaultVersionMax,
		})
	}

	srv := tcptsp.New(tlsCfg, c.handle)
	if err := srv.RegisterServer(addr); err != nil {
		return ErrListenFailed.IfError(err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.srv = srv
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		_ = srv.Listen(ctx)
	}()

	c.started.Store(true)
	return nil
}

func (c *TCPComponent) Reload(get cfgpkg.FuncConfigGet) liberr.Error {
	c.Stop()
	return c.Start(get)
}

func (c *TCPComponent) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.started.Store(false)
}

func (c *TCPComponent) IsStarted() bool { return c.started.Load() }
