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
	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

// SASLState is one client's position in the SASL exchange (§4.6 "SASL SA").
type SASLState uint8

const (
	SASLIdle SASLState = iota
	SASLStarted
	SASLContinuing
	SASLDone
)

var (
	ErrSASLAlreadyStarted = liberr.New((ircerr.MinServices + 10).Uint16(), "SASL exchange already started")
	ErrSASLNotStarted     = liberr.New((ircerr.MinServices + 11).Uint16(), "SASL continue/abort with no exchange in progress")
)

// SASLSession tracks one client connection's authentication exchange,
// relayed to the services collaborator via `S`/`H`/`C` and answered with
// `D`/`L` (§4.6). The core never validates credentials itself.
type SASLSession struct {
	State      SASLState
	Mechanism  string
	Account    string
	LoginTS    int64
}

// NewSASLSession returns an idle session.
func NewSASLSession() *SASLSession {
	return &SASLSession{State: SASLIdle}
}

// Start begins a mechanism exchange ("S" direction core->services).
func (s *SASLSession) Start(mechanism string) error {
	if s.State != SASLIdle && s.State != SASLDone {
		return ErrSASLAlreadyStarted
	}
	s.State = SASLStarted
	s.Mechanism = mechanism
	return nil
}

// Continue carries an opaque base64 blob in either direction ("C").
func (s *SASLSession) Continue() error {
	if s.State == SASLIdle {
		return ErrSASLNotStarted
	}
	s.State = SASLContinuing
	return nil
}

// Abort cancels an in-progress exchange, the reaction to client-side
// "AUTHENTICATE *" (§4.6 "SASL SA").
func (s *SASLSession) Abort() {
	s.State = SASLIdle
	s.Mechanism = ""
}

// Done applies the services collaborator's terminal "D" verdict: "S"
// success (paired with a "L" login carrying account/ts), "F" fail, "A"
// abort-acknowledged. A completed session may restart a fresh exchange
// without a distinct command, per §4.6's re-authentication allowance.
func (s *SASLSession) Done(verdict string) {
	s.State = SASLDone
	if verdict != "S" {
		s.Account = ""
	}
}

// Login records the account/timestamp carried by services' "L" reply.
func (s *SASLSession) Login(account string, ts int64) {
	s.Account = account
	s.LoginTS = ts
}

// MechanismTable holds the network-wide advertised SASL mechanism list,
// updated from the services collaborator's "M" broadcast and consumed by
// internal/handlers.Registry.SASL to refresh the sasl= capability value.
// An empty table means services is unreachable: the core then advertises
// no SASL mechanisms at all (§4.6).
type MechanismTable struct {
	mechanisms []string
}

// Set replaces the advertised mechanism list.
func (m *MechanismTable) Set(mechanisms []string) {
	m.mechanisms = mechanisms
}

// Clear empties the table, e.g. when the services link drops.
func (m *MechanismTable) Clear() {
	m.mechanisms = nil
}

// List returns the currently advertised mechanisms.
func (m *MechanismTable) List() []string {
	return m.mechanisms
}
