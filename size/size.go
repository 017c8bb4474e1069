/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
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

// Package size provides a byte-size type with human-readable parsing and
// formatting, used across configuration surfaces that accept values such
// as "4K" or "16M" (log file buffers, multiline byte caps, chathistory
// limits).
package size

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a count of bytes.
type Size int64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo      = SizeUnit * 1024
	SizeMega      = SizeKilo * 1024
	SizeGiga      = SizeMega * 1024
	SizeTera      = SizeGiga * 1024
	SizePeta      = SizeTera * 1024
)

var units = []struct {
	suffix []string
	factor Size
}{
	{[]string{"P", "PB"}, SizePeta},
	{[]string{"T", "TB"}, SizeTera},
	{[]string{"G", "GB"}, SizeGiga},
	{[]string{"M", "MB"}, SizeMega},
	{[]string{"K", "KB"}, SizeKilo},
	{[]string{"B"}, SizeUnit},
}

// ParseInt64 converts a raw byte count into a Size.
func ParseInt64(i int64) Size {
	return Size(i)
}

// Int64 returns the size as an int64 byte count.
func (s Size) Int64() int64 {
	return int64(s)
}

// Float64 returns the size as a float64 byte count.
func (s Size) Float64() float64 {
	return float64(s)
}

// Parse parses a human-readable size such as "1K", "4MB", "512" (bytes
// when no unit is given).
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SizeNul, fmt.Errorf("size: empty value")
	}

	up := strings.ToUpper(s)

	for _, u := range units {
		for _, suf := range u.suffix {
			if strings.HasSuffix(up, suf) {
				num := strings.TrimSpace(up[:len(up)-len(suf)])
				if num == "" {
					return SizeNul, fmt.Errorf("size: missing numeric value in %q", s)
				}
				f, e := strconv.ParseFloat(num, 64)
				if e != nil {
					return SizeNul, fmt.Errorf("size: invalid numeric value in %q: %w", s, e)
				}
				return Size(f * float64(u.factor)), nil
			}
		}
	}

	f, e := strconv.ParseFloat(up, 64)
	if e != nil {
		return SizeNul, fmt.Errorf("size: cannot parse %q: %w", s, e)
	}
	return Size(f), nil
}

// String renders the size using the largest unit that keeps the mantissa >= 1.
func (s Size) String() string {
	v := s.Float64()
	neg := v < 0
	if neg {
		v = -v
	}

	for _, u := range units {
		if u.factor == SizeUnit {
			continue
		}
		if v >= float64(u.factor) {
			r := v / float64(u.factor)
			if neg {
				r = -r
			}
			return fmt.Sprintf("%.2f%s", r, u.suffix[0])
		}
	}

	if neg {
		v = -v
	}
	return fmt.Sprintf("%dB", int64(v))
}

// MarshalText implements encoding.TextMarshaler for config file round-tripping.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Size) UnmarshalText(b []byte) error {
	v, e := Parse(string(b))
	if e != nil {
		return e
	}
	*s = v
	return nil
}
