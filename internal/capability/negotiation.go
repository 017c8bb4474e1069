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

package capability

import (
	"strconv"
	"strings"

	"github.com/undernet-go/p10d/internal/state"
)

// RegState is a client's position in the registration state machine (§4.7).
type RegState uint8

const (
	Initial RegState = iota
	Negotiating
	AwaitingEnd
	Registered
)

// Session tracks one client connection's capability negotiation. The
// enabled-bits storage is the same state.Capabilities bitset attached to
// state.User.Caps, so a completed negotiation needs no copy: the handler
// just points state.User.Caps at sess.Enabled.
type Session struct {
	State      RegState
	Version    int // 0 if the client never sent a version; >=302 enables values
	Enabled    state.Capabilities
}

// NewSession starts a fresh negotiation in Initial state.
func NewSession() *Session {
	return &Session{State: Initial, Enabled: state.NewCapabilities(Width)}
}

// LS handles "CAP LS [version]". A non-empty, all-digit arg is the
// optional integer version; >=302 enables value-advertising in List().
// Entering LS for the first time moves Initial -> Negotiating and defers
// registration until CAP END (§4.7).
func (s *Session) LS(arg string) {
	if s.State == Initial {
		s.State = Negotiating
	}
	if arg == "" {
		return
	}
	if v, err := strconv.Atoi(arg); err == nil {
		s.Version = v
	}
}

// ValueAdvertising reports whether negotiated CAP LS version enables
// value-bearing tokens ("name=value") per §4.7.
func (s *Session) ValueAdvertising() bool {
	return s.Version >= 302
}

// LSLines renders the table's advertised tokens as one or more
// continuation lines per §4.7: every line but the last is prefixed with
// "*"; tokens are packed up to maxLen bytes per line (the caller supplies
// the 512-byte wire budget minus its own framing). When ValueAdvertising
// is false, "=value" suffixes are stripped from every token.
func (s *Session) LSLines(t *Table, maxLen int) []string {
	tokens := t.List()
	if !s.ValueAdvertising() {
		for i, tok := range tokens {
			if eq := strings.IndexByte(tok, '='); eq >= 0 {
				tokens[i] = tok[:eq]
			}
		}
	}

	var lines []string
	cur := ""
	for _, tok := range tokens {
		candidate := tok
		if cur != "" {
			candidate = cur + " " + tok
		}
		if len(candidate) > maxLen && cur != "" {
			lines = append(lines, cur)
			cur = tok
			continue
		}
		cur = candidate
	}
	lines = append(lines, cur)
	return lines
}

// REQResult is the atomic outcome of a "CAP REQ" per §4.7: either every
// requested token is acknowledged, or none are (NAK), the request never
// partially applies.
type REQResult struct {
	Ack     bool
	Unknown []string // only populated when Ack is false
}

// REQ evaluates tokens against t and, if every token is recognized and
// (for enabling tokens) currently advertised, enables them all on s and
// returns Ack. A '-' prefix requests disabling an already-enabled
// capability. Any unrecognized or currently-unavailable token NAKs the
// whole request with no partial effect.
func (s *Session) REQ(t *Table, tokens []string) REQResult {
	type op struct {
		name    Name
		bit     uint
		disable bool
	}
	var ops []op
	var unknown []string

	for _, raw := range tokens {
		disable := strings.HasPrefix(raw, "-")
		token := strings.TrimPrefix(raw, "-")
		name := Name(token)
		if eq := strings.IndexByte(token, '='); eq >= 0 {
			name = Name(token[:eq])
		}

		bit, ok := Bit(name)
		if !ok || (!disable && !t.Enabled(name)) {
			unknown = append(unknown, raw)
			continue
		}
		ops = append(ops, op{name: name, bit: bit, disable: disable})
	}

	if len(unknown) > 0 {
		return REQResult{Ack: false, Unknown: unknown}
	}

	for _, o := range ops {
		if o.disable {
			s.Enabled.Disable(o.bit)
		} else {
			s.Enabled.Enable(o.bit)
		}
	}
	return REQResult{Ack: true}
}

// List returns the currently enabled tokens for "CAP LIST".
func (s *Session) List(t *Table) []string {
	var out []string
	for _, n := range All {
		if b, ok := Bit(n); ok && s.Enabled.Enabled(b) {
			out = append(out, string(n))
		}
	}
	return out
}

// Has reports whether name is currently enabled on this session.
func (s *Session) Has(name Name) bool {
	b, ok := Bit(name)
	return ok && s.Enabled.Enabled(b)
}

// End handles "CAP END": completes registration if it was deferred
// awaiting this command.
func (s *Session) End() {
	if s.State == Negotiating || s.State == AwaitingEnd {
		s.State = Registered
	}
}
