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

package state

import "github.com/bits-and-blooms/bitset"

// Prefix bit positions for per-channel membership modes.
const (
	BitOp uint = iota
	BitHalfOp
	BitVoice

	bitPrefixWidth
)

// Prefix is the per-member channel-mode bitset ("op/halfop/voice" in §3).
// A zero-value Prefix has no bits set, matching a member introduced by `B`
// or `J` without a prefix.
type Prefix struct {
	b *bitset.BitSet
}

// NewPrefix returns an empty Prefix.
func NewPrefix() Prefix {
	return Prefix{b: bitset.New(bitPrefixWidth)}
}

func (p *Prefix) ensure() *bitset.BitSet {
	if p.b == nil {
		p.b = bitset.New(bitPrefixWidth)
	}
	return p.b
}

// Set raises bit.
func (p *Prefix) Set(bit uint) {
	p.ensure().Set(bit)
}

// Clear lowers bit.
func (p *Prefix) Clear(bit uint) {
	p.ensure().Clear(bit)
}

// Has reports whether bit is raised.
func (p *Prefix) Has(bit uint) bool {
	if p.b == nil {
		return false
	}
	return p.b.Test(bit)
}

// Union merges other's bits into p in place, used by the equal-TS channel
// merge rule (§4.4) where per-member prefixes are unioned, never cleared.
func (p *Prefix) Union(other Prefix) {
	if other.b == nil {
		return
	}
	p.b = p.ensure().Union(other.b)
}

// String renders the canonical prefix letter set, highest privilege first.
func (p Prefix) String() string {
	s := ""
	if p.Has(BitOp) {
		s += "o"
	}
	if p.Has(BitHalfOp) {
		s += "h"
	}
	if p.Has(BitVoice) {
		s += "v"
	}
	return s
}

// IsZero reports whether no prefix bit is set.
func (p Prefix) IsZero() bool {
	return p.b == nil || p.b.None()
}
