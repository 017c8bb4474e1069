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

// Package numeric encodes and decodes P10 server and user numerics in the
// 64-symbol alphabet "A-Za-z0-9[]" and the base64 big-endian IP encoding
// carried on NICK introduction.
package numeric

import (
	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789[]"

const (
	// MaxServerValue is the largest representable 2-symbol server numeric (4095).
	MaxServerValue = 64*64 - 1
	// MaxUserSuffixValue is the largest representable 3-symbol local suffix (262143).
	MaxUserSuffixValue = 64*64*64 - 1
)

var (
	ErrInvalidLength = liberr.New((ircerr.MinNumeric + 1).Uint16(), "numeric has an invalid length")
	ErrInvalidSymbol = liberr.New((ircerr.MinNumeric + 2).Uint16(), "numeric contains a symbol outside the 64-symbol alphabet")
	ErrValueTooLarge = liberr.New((ircerr.MinNumeric + 3).Uint16(), "value exceeds the numeric space for its width")
)

var decodeTable = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i, c := range alphabet {
		t[byte(c)] = int8(i)
	}
	return t
}()

// Server is a 2-symbol server numeric (0-4095).
type Server string

// User is a 5-symbol user numeric: a Server prefix plus a 3-symbol local suffix.
type User string

// encodeBE renders v as a big-endian sequence of `width` alphabet symbols.
func encodeBE(v, width int) string {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = alphabet[v&63]
		v >>= 6
	}
	return string(buf)
}

// decodeBE parses a `width`-symbol big-endian numeric into its integer value.
func decodeBE(s string, width int) (int, error) {
	if len(s) != width {
		return 0, ErrInvalidLength
	}
	v := 0
	for i := 0; i < width; i++ {
		sym := decodeTable[s[i]]
		if sym < 0 {
			return 0, ErrInvalidSymbol
		}
		v = v<<6 | int(sym)
	}
	return v, nil
}

// EncodeServer encodes a server ordinal (0-4095) as a 2-symbol Server numeric.
func EncodeServer(v int) (Server, error) {
	if v < 0 || v > MaxServerValue {
		return "", ErrValueTooLarge
	}
	return Server(encodeBE(v, 2)), nil
}

// Value decodes s back into its integer ordinal.
func (s Server) Value() (int, error) {
	return decodeBE(string(s), 2)
}

// Valid reports whether s is a syntactically valid 2-symbol server numeric.
func (s Server) Valid() bool {
	_, err := s.Value()
	return err == nil
}

// EncodeUser encodes a server numeric plus a local suffix ordinal (0-262143)
// into a 5-symbol User numeric.
func EncodeUser(srv Server, suffix int) (User, error) {
	if !srv.Valid() {
		return "", ErrInvalidSymbol
	}
	if suffix < 0 || suffix > MaxUserSuffixValue {
		return "", ErrValueTooLarge
	}
	return User(string(srv) + encodeBE(suffix, 3)), nil
}

// Server returns the server-numeric prefix of u.
func (u User) Server() Server {
	if len(u) != 5 {
		return ""
	}
	return Server(u[:2])
}

// Suffix decodes the 3-symbol local-suffix ordinal of u.
func (u User) Suffix() (int, error) {
	if len(u) != 5 {
		return 0, ErrInvalidLength
	}
	return decodeBE(string(u[2:]), 3)
}

// Valid reports whether u is a syntactically valid 5-symbol user numeric.
func (u User) Valid() bool {
	if len(u) != 5 {
		return false
	}
	if !u.Server().Valid() {
		return false
	}
	_, err := u.Suffix()
	return err == nil
}
