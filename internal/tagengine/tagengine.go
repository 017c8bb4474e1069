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

// Package tagengine generates and forwards message tags per spec.md §4.9:
// @time/@msgid on emission to capable clients, and a fixed S2S forwarding
// allowlist that excludes client-scoped tags from crossing a server link.
package tagengine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/undernet-go/p10d/internal/wire"
)

// s2sForwarded is the fixed allowlist of tags carried across a server
// link (§4.9): time/msgid/batch plus any client-only '+' tag. @account
// travels via AC, never as a tag; @label is strictly client-scoped.
var s2sForwarded = map[string]struct{}{
	"time":  {},
	"msgid": {},
	"batch": {},
}

// Forwardable reports whether tag should cross an S2S link.
func Forwardable(tag wire.Tag) bool {
	if tag.ClientOnly {
		return true
	}
	_, ok := s2sForwarded[tag.Key]
	return ok
}

// FilterS2S returns the subset of tags eligible to forward to a peer
// server, preserving order.
func FilterS2S(tags []wire.Tag) []wire.Tag {
	out := make([]wire.Tag, 0, len(tags))
	for _, t := range tags {
		if Forwardable(t) {
			out = append(out, t)
		}
	}
	return out
}

// msgidCounter is a per-process monotonic suffix guaranteeing @msgid
// uniqueness within the server's emission window (§5 "@msgid uniqueness
// is guaranteed per emitting server within the retention window").
var msgidCounter uint64

// NewMsgID returns a fresh, server-unique message id. serverName is the
// emitting server's name, included so ids from distinct servers in the
// network never collide even if their counters align.
func NewMsgID(serverName string, now time.Time) string {
	n := atomic.AddUint64(&msgidCounter, 1)
	return fmt.Sprintf("%s-%d-%d", serverName, now.UnixNano(), n)
}

// NewTimeTag renders the ISO8601-UTC-millisecond @time value (§4.9).
func NewTimeTag(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04:05.000Z")
}

// EnsureOutboundTags attaches @time when wantTime is true and @msgid when
// wantMsgid is true, but only if the frame does not already carry them
// (§4.9 "generated at emission if absent"); existing tags are left
// untouched.
func EnsureOutboundTags(fr *wire.Frame, wantTime, wantMsgid bool, serverName string, now time.Time) {
	if wantTime {
		if _, ok := fr.Tag("time"); !ok {
			fr.Tags = append(fr.Tags, wire.Tag{Key: "time", Value: NewTimeTag(now)})
		}
	}
	if wantMsgid {
		if _, ok := fr.Tag("msgid"); !ok {
			fr.Tags = append(fr.Tags, wire.Tag{Key: "msgid", Value: NewMsgID(serverName, now)})
		}
	}
}
