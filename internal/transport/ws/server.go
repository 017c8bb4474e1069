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
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/undernet-go/p10d/internal/proto"
	"github.com/undernet-go/p10d/internal/state"
)

// Server exposes the IRCv3-over-WebSocket listener on one gin route,
// upgrading each accepted HTTP request and handing the resulting Link to
// Serve.
type Server struct {
	engine  *gin.Engine
	http    *http.Server
	store   *state.Store
	disp    *proto.Dispatcher
	links   func() []proto.Link
	addLink func(*Link)
	delLink func(*Link)

	upgrader websocket.Upgrader
}

// Option configures OriginPatterns or another aspect of the upgrader before
// Listen is called.
type Option func(*Server)

// WithCheckOrigin overrides the default allow-all origin check; a relay
// fronted by a reverse proxy should restrict this to its own domains.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// New builds a Server that dispatches every accepted client frame to disp
// against store. addLink/delLink maintain the caller's live-link registry
// (used by Links to fan frames to every open connection); they may be nil.
func New(store *state.Store, disp *proto.Dispatcher, links func() []proto.Link, addLink, delLink func(*Link), opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		store:   store,
		disp:    disp,
		links:   links,
		addLink: addLink,
		delLink: delLink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			Subprotocols:    []string{"text.ircv3.net"},
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	engine.GET("/webirc", s.handleUpgrade)
	return s
}

func (s *Server) handleUpgrade(c *gin.Context) {
	raw, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	link := NewLink(NewConn(raw))
	if s.addLink != nil {
		s.addLink(link)
	}
	defer func() {
		if s.delLink != nil {
			s.delLink(link)
		}
	}()

	_ = Serve(link, s.disp, s.store, s.links)
}

// Listen starts the HTTP server on addr and blocks until ctx is cancelled
// or the listener errors.
func (s *Server) Listen(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.engine}

	go func() {
		<-ctx.Done()
		_ = s.http.Shutdown(context.Background())
	}()

	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server, closing its listener and letting
// in-flight upgraded connections run their own Serve loop to completion.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
