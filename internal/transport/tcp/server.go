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

// Package tcp listens for P10 server-to-server links (§4.1 "Transport") over
// plain or TLS-wrapped TCP, one net.Conn per peer, and hands each accepted
// connection to a HandlerFunc. Server mirrors the lifecycle surface of a
// socket server: RegisterServer, Listen, IsRunning, Done, Shutdown,
// OpenConnections.
package tcp

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

var (
	ErrInvalidAddress = liberr.New((ircerr.MinTransport + 1).Uint16(), "no listen address registered")
	ErrInvalidHandler = liberr.New((ircerr.MinTransport + 2).Uint16(), "no connection handler registered")
	ErrAlreadyRunning = liberr.New((ircerr.MinTransport + 3).Uint16(), "server is already listening")
)

// Context is the per-connection handle a HandlerFunc consumes: a plain
// io.ReadWriteCloser plus the negotiated remote address.
type Context interface {
	net.Conn
}

// HandlerFunc consumes one accepted connection. It must Close c (or defer
// doing so) before returning.
type HandlerFunc func(c Context)

// Server accepts TCP connections on one registered address and dispatches
// each to a HandlerFunc until Shutdown or its context is cancelled.
type Server struct {
	mu      sync.Mutex
	addr    string
	tlsCfg  *tls.Config
	handler HandlerFunc

	lis     net.Listener
	running atomic.Bool
	open    atomic.Int64
	done    chan struct{}
}

// New returns a Server that will wrap accepted connections in tlsCfg (nil
// for plaintext) and dispatch them to handler.
func New(tlsCfg *tls.Config, handler HandlerFunc) *Server {
	return &Server{tlsCfg: tlsCfg, handler: handler}
}

// RegisterServer sets the listen address. It may be called again before
// Listen to change the address.
func (s *Server) RegisterServer(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addr = address
	return nil
}

// IsRunning reports whether the listener is currently accepting.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// OpenConnections reports the number of currently-accepted connections.
func (s *Server) OpenConnections() int64 {
	return s.open.Load()
}

// Done returns a channel closed once the listener has stopped accepting,
// whether from Shutdown or from an accept error.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
	}
	return s.done
}

// Listen binds the registered address and serves until ctx is cancelled or
// Shutdown is called. It blocks until the accept loop stops.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	if s.addr == "" {
		s.mu.Unlock()
		return ErrInvalidAddress
	}
	if s.handler == nil {
		s.mu.Unlock()
		return ErrInvalidHandler
	}
	if s.running.Load() {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if s.done == nil {
		s.done = make(chan struct{})
	}

	var (
		lis net.Listener
		err error
	)
	if s.tlsCfg != nil {
		lis, err = tls.Listen("tcp", s.addr, s.tlsCfg)
	} else {
		lis, err = net.Listen("tcp", s.addr)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.lis = lis
	s.running.Store(true)
	done := s.done
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()

	var wg sync.WaitGroup
	for {
		conn, acceptErr := lis.Accept()
		if acceptErr != nil {
			break
		}
		wg.Add(1)
		s.open.Add(1)
		go func() {
			defer wg.Done()
			defer s.open.Add(-1)
			s.handler(conn)
		}()
	}

	wg.Wait()
	s.running.Store(false)
	close(done)
	return nil
}

// Shutdown stops accepting new connections and closes the listener.
// In-flight connections are left for their handlers to close.
func (s *Server) Shutdown(_ context.Context) error {
	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()
	if lis == nil {
		return nil
	}
	return lis.Close()
}
