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
	"sort"
	"time"

	"github.com/hashicorp/go-uuid"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

var ErrFederationDisabled = liberr.New((ircerr.MinServices + 30).Uint16(), "chathistory federation is disabled by configuration")

// HistoryEvent is one deduplicated, ordered chathistory row, assembled
// from the local store and/or peer "R" replies (§4.6 "CHATHISTORY CH").
type HistoryEvent struct {
	MsgID   string
	TS      int64
	Type    int
	Sender  string
	Account string // "*" if none
	Content string
}

// PendingQuery tracks one in-flight federated CHATHISTORY request while
// peer "R"/"E" replies trickle in. ReqID is a hashicorp/go-uuid value so
// replies from distinct concurrent queries never collide.
type PendingQuery struct {
	ReqID     string
	Target    string
	Limit     int
	Deadline  time.Time
	fromPeers map[string][]HistoryEvent // server name -> rows
	done      map[string]bool           // server name -> "E" received
	expected  map[string]bool           // server names a Q was sent to
}

// Federation tracks every pending cross-server CHATHISTORY query for one
// local client connection.
type Federation struct {
	Enabled bool
	Timeout time.Duration

	pending map[string]*PendingQuery
}

// NewFederation returns a Federation with the given enable flag and
// per-request timeout.
func NewFederation(enabled bool, timeout time.Duration) *Federation {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Federation{Enabled: enabled, Timeout: timeout, pending: make(map[string]*PendingQuery)}
}

// Open begins a new pending query fanned out to peers, generating a fresh
// reqid. Returns ErrFederationDisabled if federation is turned off by
// configuration, in which case the caller must serve purely from the
// local store.
func (f *Federation) Open(target string, limit int, peers []string) (*PendingQuery, error) {
	if !f.Enabled {
		return nil, ErrFederationDisabled
	}
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, err
	}

	expected := make(map[string]bool, len(peers))
	for _, p := range peers {
		expected[p] = true
	}

	q := &PendingQuery{
		ReqID:     id,
		Target:    target,
		Limit:     limit,
		Deadline:  time.Now().Add(f.Timeout),
		fromPeers: make(map[string][]HistoryEvent),
		done:      make(map[string]bool),
		expected:  expected,
	}
	f.pending[id] = q
	return q, nil
}

// Accept records one "R" result row from server for reqid. A reqid with
// no matching pending query (already timed out or answered) is silently
// dropped, per §4.6 "responses arriving late are dropped".
func (f *Federation) Accept(reqid, server string, ev HistoryEvent) {
	q, ok := f.pending[reqid]
	if !ok {
		return
	}
	q.fromPeers[server] = append(q.fromPeers[server], ev)
}

// End records server's "E" end-of-results marker and reports whether every
// expected peer has now answered, at which point the caller should call
// Merge and remove the query.
func (f *Federation) End(reqid, server string) bool {
	q, ok := f.pending[reqid]
	if !ok {
		return false
	}
	q.done[server] = true
	for peer := range q.expected {
		if !q.done[peer] {
			return false
		}
	}
	return true
}

// Merge combines every peer's rows for reqid with local into one
// deduplicated (by msgid), ts-ascending slice, and removes the pending
// query. Calling Merge twice for the same reqid is a no-op returning nil.
func (f *Federation) Merge(reqid string, local []HistoryEvent) []HistoryEvent {
	q, ok := f.pending[reqid]
	if !ok {
		return nil
	}
	delete(f.pending, reqid)

	seen := make(map[string]struct{}, len(local))
	out := make([]HistoryEvent, 0, len(local))
	for _, ev := range local {
		if _, dup := seen[ev.MsgID]; dup {
			continue
		}
		seen[ev.MsgID] = struct{}{}
		out = append(out, ev)
	}
	for _, rows := range q.fromPeers {
		for _, ev := range rows {
			if _, dup := seen[ev.MsgID]; dup {
				continue
			}
			seen[ev.MsgID] = struct{}{}
			out = append(out, ev)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

// Expire removes and returns every pending query past its deadline, for
// the caller to answer with whatever partial results arrived.
func (f *Federation) Expire(now time.Time) []*PendingQuery {
	var out []*PendingQuery
	for id, q := range f.pending {
		if now.After(q.Deadline) {
			out = append(out, q)
			delete(f.pending, id)
		}
	}
	return out
}
