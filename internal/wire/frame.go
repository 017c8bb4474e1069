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

// Package wire implements the line-oriented P10/IRCv3 frame grammar:
// an optional "@tags " prefix, an optional origin numeric, a token,
// space-separated params and an optional ":"-prefixed trailing param.
package wire

import (
	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

const (
	// MaxTagSection is the maximum length, in bytes, of the "@tags" section
	// excluding the leading '@' and the separating space.
	MaxTagSection = 8191

	// MaxBody is the maximum length, in bytes, of a frame body including
	// the terminating CRLF.
	MaxBody = 512
)

var (
	ErrTagSectionTooLong = liberr.New((ircerr.MinWire + 1).Uint16(), "tag section exceeds 8191 bytes")
	ErrBodyTooLong       = liberr.New((ircerr.MinWire + 2).Uint16(), "frame body exceeds 512 bytes")
	ErrMalformedUTF8     = liberr.New((ircerr.MinWire + 3).Uint16(), "frame is not valid UTF-8")
	ErrInvalidEscape     = liberr.New((ircerr.MinWire + 4).Uint16(), "invalid tag value escape sequence")
	ErrMissingToken      = liberr.New((ircerr.MinWire + 5).Uint16(), "frame has no token")
)

// Tag is one parsed "@tags" item: [+]key[=value].
type Tag struct {
	Key        string
	Value      string
	ClientOnly bool // key carries the '+' prefix
}

// Frame is a fully parsed wire line.
type Frame struct {
	Tags     []Tag
	Origin   string // numeric of the sender, empty if absent
	Token    string // the 1- or 2-character (or client-command) token
	Params   []string
	Trailing string
	HasTrail bool
}

// Tag looks up a parsed tag by key, ignoring the client-only '+' prefix.
func (f *Frame) Tag(key string) (Tag, bool) {
	for _, t := range f.Tags {
		if t.Key == key {
			return t, true
		}
	}
	return Tag{}, false
}

// AllParams returns Params with Trailing appended when present, the shape
// most handlers want when they don't care about the wire-level distinction.
func (f *Frame) AllParams() []string {
	if !f.HasTrail {
		return f.Params
	}
	out := make([]string, 0, len(f.Params)+1)
	out = append(out, f.Params...)
	return append(out, f.Trailing)
}
