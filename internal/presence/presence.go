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

// Package presence computes the effective per-account presence of spec.md
// §4.10 by aggregating every local connection's state.Away value.
package presence

import "github.com/undernet-go/p10d/internal/state"

// Effective is the computed presence of one account across all of its
// local connections.
type Effective struct {
	Present     bool
	Message     string // set only when Present is false and a message exists
	Hidden      bool   // true when every connection is away-star
	LastPresent int64  // unix seconds of the last present->away transition
}

// HiddenMessage is the configurable substitute shown when every connection
// is away-star (§4.10 "hidden with a substituted configurable message").
const defaultHiddenMessage = "away"

// Compute implements the §4.10 three-rule aggregation: present if any
// connection is present; else away-with-message using the oldest
// away-with-message connection's text; else hidden with a substitute
// message if every connection is away-star. conns must be non-empty.
func Compute(conns []state.Away, hiddenMessage string) Effective {
	if hiddenMessage == "" {
		hiddenMessage = defaultHiddenMessage
	}

	for _, a := range conns {
		if a.Kind == state.Present {
			return Effective{Present: true}
		}
	}

	var oldest *state.Away
	allStar := true
	for i, a := range conns {
		if a.Kind != state.AwayStar {
			allStar = false
		}
		if a.Kind == state.AwayMessage {
			if oldest == nil || a.Since < oldest.Since {
				oldest = &conns[i]
			}
		}
	}

	if oldest != nil {
		return Effective{Present: false, Message: oldest.Message, LastPresent: oldest.Since}
	}

	if allStar {
		var last int64
		for _, a := range conns {
			if a.Since > last {
				last = a.Since
			}
		}
		return Effective{Present: false, Hidden: true, Message: hiddenMessage, LastPresent: last}
	}

	return Effective{Present: true}
}

// Changed reports whether the effective presence differs from prev in a
// way that warrants an AWAY broadcast/away-notify (§4.10: "emits ... only
// when the effective value changes, not per individual connection flip").
func Changed(prev, next Effective) bool {
	return prev.Present != next.Present || prev.Hidden != next.Hidden || prev.Message != next.Message
}
