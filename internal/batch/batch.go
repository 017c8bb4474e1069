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

// Package batch implements the client-facing batch and draft/multiline
// coordinator of spec.md §4.8: an open-batch table keyed by (client, id),
// duplicate/unknown/mismatched-id standard-replies, and multiline byte/line
// caps with configurable defaults.
package batch

import (
	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

const (
	// DefaultMaxBytes is the draft/multiline default total-byte cap (§4.8).
	DefaultMaxBytes = 4096
	// DefaultMaxLines is the draft/multiline default total-line cap (§4.8).
	DefaultMaxLines = 24
)

var (
	ErrAlreadyOpen    = liberr.New((ircerr.MinBatch + 1).Uint16(), "batch id already open")
	ErrUnknownBatch   = liberr.New((ircerr.MinBatch + 2).Uint16(), "unknown batch id")
	ErrIDMismatch     = liberr.New((ircerr.MinBatch + 3).Uint16(), "batch close id mismatch")
	ErrMaxBytes       = liberr.New((ircerr.MinBatch + 4).Uint16(), "multiline batch exceeds max-bytes")
	ErrMaxLines       = liberr.New((ircerr.MinBatch + 5).Uint16(), "multiline batch exceeds max-lines")
	ErrWrongTarget    = liberr.New((ircerr.MinBatch + 6).Uint16(), "multiline message target does not match batch target")
)

// Open is one live batch: its type, target (only meaningful for
// draft/multiline), and accumulated lines for multiline reassembly.
type Open struct {
	ID       string
	Type     string // "netjoin", "netsplit", "draft/multiline", or a client-declared type
	Target   string
	Lines    []string
	Bytes    int
	MaxBytes int
	MaxLines int
}

// Coordinator holds the open-batch table for one client connection. A
// client has at most one Coordinator; each open batch is independent.
type Coordinator struct {
	open map[string]*Open
}

// NewCoordinator returns an empty Coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{open: make(map[string]*Open)}
}

// OpenBatch begins a batch with id and typ. maxBytes/maxLines of 0 fall
// back to the §4.8 defaults; non-multiline batches ignore them.
func (c *Coordinator) OpenBatch(id, typ, target string, maxBytes, maxLines int) error {
	if _, exists := c.open[id]; exists {
		return ErrAlreadyOpen
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	c.open[id] = &Open{ID: id, Type: typ, Target: target, MaxBytes: maxBytes, MaxLines: maxLines}
	return nil
}

// Append adds one multiline message to the batch identified by id,
// enforcing target match and byte/line caps (§4.8). concat removes the
// newline that would otherwise separate this line from the previous one
// (draft/multiline-concat).
func (c *Coordinator) Append(id, target, line string, concat bool) error {
	b, ok := c.open[id]
	if !ok {
		return ErrUnknownBatch
	}
	if b.Target != "" && target != b.Target {
		return ErrWrongTarget
	}

	if len(b.Lines) > 0 && concat {
		last := len(b.Lines) - 1
		b.Lines[last] += line
		b.Bytes += len(line)
	} else {
		b.Lines = append(b.Lines, line)
		b.Bytes += len(line)
	}

	if b.Bytes > b.MaxBytes {
		return ErrMaxBytes
	}
	if len(b.Lines) > b.MaxLines {
		return ErrMaxLines
	}
	return nil
}

// CloseBatch ends the batch id must equal the id passed to OpenBatch; a
// mismatch or an id that was never opened is an error (§4.8). On success
// the Open record is removed from the table and returned to the caller
// for final delivery.
func (c *Coordinator) CloseBatch(id string) (*Open, error) {
	b, ok := c.open[id]
	if !ok {
		return nil, ErrUnknownBatch
	}
	delete(c.open, id)
	return b, nil
}

// Lookup returns the currently open batch for id, if any — used to
// validate an "@batch=<id>" tag on an incoming message against
// ErrUnknownBatch (§4.8).
func (c *Coordinator) Lookup(id string) (*Open, bool) {
	b, ok := c.open[id]
	return b, ok
}

// ExpireAll force-closes every still-open batch, used when a client's
// batch timeout fires (§4.8 "unclosed batches expire after a bounded
// timeout"); the caller is responsible for emitting the FAIL per batch.
func (c *Coordinator) ExpireAll() []*Open {
	out := make([]*Open, 0, len(c.open))
	for _, b := range c.open {
		out = append(out, b)
	}
	c.open = make(map[string]*Open)
	return out
}
