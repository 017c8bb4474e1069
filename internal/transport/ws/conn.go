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

// Package ws serves the client-facing IRCv3 WebSocket transport (§4.1
// "Transport", websocket sub-protocol "text.ircv3.net") on top of
// gin-gonic/gin for routing and gorilla/websocket for the frame upgrade.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 8) / 10
)

// Conn adapts one *websocket.Conn into an io.ReadWriteCloser so wire.Framer
// can drive it exactly like a raw TCP socket: each Write call becomes one
// text message, and Read drains one message at a time into the caller's
// buffer, carrying any unread remainder to the next call.
type Conn struct {
	ws *websocket.Conn

	mu      sync.Mutex // guards WriteMessage; gorilla requires one writer at a time
	readBuf []byte
}

// NewConn wraps an upgraded websocket connection.
func NewConn(c *websocket.Conn) *Conn {
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &Conn{ws: c}
}

// Read fills p from the current text message, fetching a new one from the
// socket once the buffered remainder is exhausted.
func (c *Conn) Read(p []byte) (int, error) {
	for len(c.readBuf) == 0 {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.readBuf = data
	}
	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

// Write sends p as one websocket text message.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Ping sends a protocol-level ping frame, for a caller-driven keepalive
// loop at pingPeriod.
func (c *Conn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// PingPeriod is the interval a keepalive loop should use between Ping
// calls, kept comfortably under pongWait.
func PingPeriod() time.Duration { return pingPeriod }

func (c *Conn) Close() error {
	return c.ws.Close()
}
