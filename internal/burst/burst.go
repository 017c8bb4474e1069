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

// Package burst sequences the server-link handshake of spec.md §4.4: after
// SERVER is exchanged, each side bursts its authoritative subtree in a
// fixed order (server-subtree, glines, nicks, channels) then emits EB;
// intermixed incremental traffic must still be tolerated before the peer's
// EB arrives.
package burst

import (
	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
	"github.com/undernet-go/p10d/internal/state"
)

var ErrStepOutOfOrder = liberr.New((ircerr.MinBurst + 1).Uint16(), "burst step emitted out of order")

// Step identifies one stage of the fixed burst ordering (§4.4 a-e).
type Step uint8

const (
	StepServers Step = iota
	StepGlines
	StepUsers
	StepChannels
	StepEB
)

func (s Step) String() string {
	switch s {
	case StepServers:
		return "servers"
	case StepGlines:
		return "glines"
	case StepUsers:
		return "users"
	case StepChannels:
		return "channels"
	case StepEB:
		return "EB"
	default:
		return "unknown"
	}
}

// Session tracks one linked server's position through the handshake. It
// does not itself build or apply burst frames (that is §4.4's `B`/`N`
// handlers, already backed by state.Channel.MergeIncoming and
// state.Store.IntroduceUser); it only enforces the ordering and flips
// state.Server.Burst once both sides have sent EB/EA.
type Session struct {
	next   Step
	sentEB bool
	gotEA  bool
}

// NewSession starts a handshake at the first step, StepServers.
func NewSession() *Session {
	return &Session{next: StepServers}
}

// Advance records that step has been sent/received for this link. Steps
// must arrive in the fixed a-e order; StepEB is the terminal step and may
// repeat (it marks our own EB having been sent). ErrStepOutOfOrder on a
// regression signals a malformed peer and should close the link (§4.11).
func (sess *Session) Advance(step Step) error {
	if step < sess.next {
		return ErrStepOutOfOrder
	}
	if step == StepEB {
		sess.sentEB = true
		return nil
	}
	sess.next = step + 1
	return nil
}

// RecvEA records the peer's end-of-burst acknowledgement.
func (sess *Session) RecvEA() {
	sess.gotEA = true
}

// Done reports whether both EB (ours) and EA (peer's ack) have completed,
// at which point the engine drops burst-tolerant handling and the caller
// should flip the corresponding state.Server.Burst to state.BurstDone.
func (sess *Session) Done() bool {
	return sess.sentEB && sess.gotEA
}

// Bursting reports whether this link is still inside its burst window,
// during which incremental traffic must be tolerated but not yet treated
// as a second independent burst (§4.4 "MUST tolerate intermixed
// incremental traffic").
func (sess *Session) Bursting() bool {
	return !sess.Done()
}

// ApplyBurstState flips srv.Burst once the handshake completes; callers
// invoke it after every Advance/RecvEA to keep state.Server in sync.
func ApplyBurstState(srv *state.Server, sess *Session) {
	if sess.Done() {
		srv.Burst = state.BurstDone
	} else {
		srv.Burst = state.BurstBursting
	}
}
