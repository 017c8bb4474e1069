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

package services

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

var (
	ErrEndpointNotHTTPS   = liberr.New((ircerr.MinServices + 20).Uint16(), "webpush endpoint must be https")
	ErrEndpointLoopback   = liberr.New((ircerr.MinServices + 21).Uint16(), "webpush endpoint resolves to a loopback or private address")
	ErrSubscriptionUnknown = liberr.New((ircerr.MinServices + 22).Uint16(), "no webpush subscription for user")
)

// Subscription is one registered browser push endpoint (§4.6 "WEBPUSH WP",
// subcommand "R").
type Subscription struct {
	Endpoint string
	P256DH   string
	Auth     string
}

// WebPush delivers push notifications over HTTPS via a retrying client,
// mirroring the teacher's own retryablehttp usage for external HTTP calls
// (artifact/gitlab). One WebPush instance serves the whole process; its
// subscription table is local-only bookkeeping, the authoritative store
// lives behind internal/kvstore's "webpush:" namespace.
type WebPush struct {
	client *retryablehttp.Client
	subs   map[string]Subscription // keyed by user numeric
	vapid  string
}

// NewWebPush builds a WebPush sender with retryablehttp's default backoff
// policy; retries are safe here since POSTs carry an idempotent encrypted
// payload keyed by the subscription, not a side-effecting command.
func NewWebPush() *WebPush {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.Logger = nil
	return &WebPush{client: c, subs: make(map[string]Subscription)}
}

// SetVAPID records the public key broadcast by services on link (§4.6
// "WEBPUSH WP", subcommand "V").
func (w *WebPush) SetVAPID(pub string) {
	w.vapid = pub
}

// VAPID returns the current public key, or "" if services never announced one.
func (w *WebPush) VAPID() string {
	return w.vapid
}

// Register validates the endpoint per §4.6 ("MUST be HTTPS and MUST NOT
// resolve to loopback/private ranges") and stores the subscription.
func (w *WebPush) Register(userNumeric string, sub Subscription) error {
	if err := validateEndpoint(sub.Endpoint); err != nil {
		return err
	}
	w.subs[userNumeric] = sub
	return nil
}

// Unregister drops a user's subscription (§4.6 "WEBPUSH WP", subcommand "U").
func (w *WebPush) Unregister(userNumeric string) {
	delete(w.subs, userNumeric)
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme != "https" {
		return ErrEndpointNotHTTPS
	}
	host := u.Hostname()
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return ErrEndpointLoopback
		}
	}
	if host == "localhost" {
		return ErrEndpointLoopback
	}
	return nil
}

// Push POSTs an encrypted payload to the subscription registered for
// userNumeric. The caller is expected to run this from an offload
// goroutine and deliver the outcome back to the event loop through
// internal/eventbus.SubjectWebpushResult, never by mutating state directly
// (§5 "Shared resource policy").
func (w *WebPush) Push(ctx context.Context, userNumeric string, payload []byte, timeout time.Duration) error {
	sub, ok := w.subs[userNumeric]
	if !ok {
		return ErrSubscriptionUnknown
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(reqCtx, http.MethodPost, sub.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Encoding", "aes128gcm")
	req.Header.Set("TTL", "86400")

	resp, err := w.client.Do(req)
	if err != nil {
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ErrUnreachable
	}
	return nil
}
