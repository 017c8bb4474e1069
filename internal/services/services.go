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

// Package services collaborates with the out-of-process services daemon
// (SASL authentication, WebPush delivery, and CHATHISTORY federation) that
// the core talks to over the S2S tokens defined in spec.md §4.6. Nothing
// here blocks the event loop directly: outbound HTTP and pending federated
// queries are driven from goroutines that report back through
// internal/eventbus, matching §5's "communicate through bounded,
// single-producer/single-consumer message queues" rule.
package services

import (
	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

var (
	ErrTimedOut       = liberr.New((ircerr.MinServices + 1).Uint16(), "request to services timed out")
	ErrUnreachable    = liberr.New((ircerr.MinServices + 2).Uint16(), "services collaborator is unreachable")
	ErrInvalidRequest = liberr.New((ircerr.MinServices + 3).Uint16(), "malformed request to services")
)
