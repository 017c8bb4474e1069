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

// Package eventbus is the in-process publish/subscribe fabric that carries
// CPU-bound and blocking-I/O offload results (zstd batches, webpush HTTP
// responses, pending federated-query completions) back to the event loop
// without the offload goroutine ever touching internal/state directly
// (§5 "must communicate with the event loop through bounded,
// single-producer/single-consumer message queues"). An embedded NATS
// server backs the bus so the SPSC discipline comes from subject naming
// (one subject per producer/consumer pair) rather than hand-rolled
// channels.
package eventbus

import (
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

var (
	ErrNotRunning  = liberr.New((ircerr.MinEventBus + 1).Uint16(), "event bus is not running")
	ErrStartFailed = liberr.New((ircerr.MinEventBus + 2).Uint16(), "embedded nats server failed to start")
)

// Subjects used by the core's offload producers; one subject per
// SPSC-style pairing, never fanned in from multiple producers.
const (
	SubjectWebpushResult  = "p10d.webpush.result"
	SubjectChathistoryAns = "p10d.chathistory.answer"
	SubjectZstdResult     = "p10d.zstd.result"
	SubjectMetadataAnswer = "p10d.metadata.answer"
)

// Bus wraps an embedded, in-process NATS server plus an in-process client
// connection. No TCP socket is opened: nats.go connects via
// nats.InProcessServer, so the bus never crosses a network boundary.
type Bus struct {
	srv  *server.Server
	conn *nats.Conn
}

// Start launches the embedded server and connects an in-process client.
func Start() (*Bus, error) {
	srv, err := server.NewServer(&server.Options{
		DontListen: true, // in-process only; no external clients
	})
	if err != nil {
		return nil, ErrStartFailed
	}

	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		return nil, ErrStartFailed
	}

	conn, err := nats.Connect("", nats.InProcessServer(srv))
	if err != nil {
		srv.Shutdown()
		return nil, err
	}

	return &Bus{srv: srv, conn: conn}, nil
}

// Publish sends payload on subject.
func (b *Bus) Publish(subject string, payload []byte) error {
	if b.conn == nil {
		return ErrNotRunning
	}
	return b.conn.Publish(subject, payload)
}

// Subscribe registers a handler for subject; messages are delivered on
// nats.go's own dispatch goroutine, which hands off into the event loop
// via the caller's handler enqueuing onto the loop's own queue rather than
// mutating state directly from this goroutine (§5 "Shared resource
// policy").
func (b *Bus) Subscribe(subject string, handler func(payload []byte)) (*nats.Subscription, error) {
	if b.conn == nil {
		return nil, ErrNotRunning
	}
	return b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Request performs a request/reply round trip with a timeout, used by
// offload tasks (webpush POST, zstd compress) that need a correlated
// answer rather than a broadcast.
func (b *Bus) Request(subject string, payload []byte, timeout time.Duration) ([]byte, error) {
	if b.conn == nil {
		return nil, ErrNotRunning
	}
	msg, err := b.conn.Request(subject, payload, timeout)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

// Close drains the client connection and shuts down the embedded server.
func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
	if b.srv != nil {
		b.srv.Shutdown()
	}
}
