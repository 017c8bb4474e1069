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

import ircnum "github.com/undernet-go/p10d/internal/numeric"

// Privilege answers the authorization predicates shared by the handlers
// that must check a user's standing before mutating shared state: network
// operator status and channel-operator membership (§C "Oper privilege
// check surface").
type Privilege struct{}

// IsNetworkOper reports whether u holds the network operator user mode ("o").
func (Privilege) IsNetworkOper(u *User) bool {
	return u != nil && u.HasMode('o')
}

// IsChannelOp reports whether numeric holds the channel-operator prefix on ch.
func (Privilege) IsChannelOp(ch *Channel, numeric ircnum.User) bool {
	if ch == nil {
		return false
	}
	p, ok := ch.Members[numeric]
	return ok && p.Has(BitOp)
}
