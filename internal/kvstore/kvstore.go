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

// Package kvstore is the persistent KV interface required by the core
// (spec.md §6), backed by nutsdb: put/get/delete/scan plus periodic
// maintenance (expire + watermark eviction). Namespaces in use:
// hist:<channel-or-target>:<ts>:<msgid>, meta:<target>:<key>,
// markread:<account>:<target>, webpush:<account>:<hash>.
package kvstore

import (
	"strings"
	"time"

	"github.com/nutsdb/nutsdb"

	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
)

const bucket = "p10d"

var (
	ErrNotFound         = liberr.New((ircerr.MinKVStore + 1).Uint16(), "key not found")
	ErrStoreUnavailable = liberr.New((ircerr.MinKVStore + 2).Uint16(), "kv store unavailable")
)

// Store wraps a nutsdb.DB with the narrow put/get/delete/scan/maintenance
// surface the core needs; every other nutsdb feature (multiple buckets,
// set/list/sorted-set types) is intentionally unused.
type Store struct {
	db *nutsdb.DB

	highWatermark int
	lowWatermark  int
}

// Options configures Open.
type Options struct {
	Dir           string
	HighWatermark int // maintenance evicts oldest entries above this count
	LowWatermark  int // ...until the bucket is back down to this count
}

// Open starts a nutsdb instance rooted at opt.Dir.
func Open(opt Options) (*Store, error) {
	db, err := nutsdb.Open(
		nutsdb.DefaultOptions,
		nutsdb.WithDir(opt.Dir),
	)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, highWatermark: opt.HighWatermark, lowWatermark: opt.LowWatermark}, nil
}

// Close releases the underlying nutsdb handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores value under key. A zero ttl means no expiry.
func (s *Store) Put(key, value []byte, ttl time.Duration) error {
	return s.db.Update(func(tx *nutsdb.Tx) error {
		if ttl <= 0 {
			return tx.Put(bucket, key, value, nutsdb.Persistent)
		}
		return tx.Put(bucket, key, value, uint32(ttl.Seconds()))
	})
}

// Get fetches the value stored under key, or ErrNotFound.
func (s *Store) Get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *nutsdb.Tx) error {
		v, err := tx.Get(bucket, key)
		if err != nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// Delete removes key, a no-op if it does not exist.
func (s *Store) Delete(key []byte) error {
	return s.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Delete(bucket, key)
	})
}

// Scan returns every key/value pair whose key has the given prefix, used
// for CHATHISTORY range reads over the hist: namespace and account sweeps
// over the webpush:/markread: namespaces.
func (s *Store) Scan(prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := s.db.View(func(tx *nutsdb.Tx) error {
		entries, _, err := tx.PrefixScan(bucket, []byte(prefix), 0, 1<<20)
		if err != nil {
			if err == nutsdb.ErrBucketNotFound || err == nutsdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		for _, e := range entries {
			out[string(e.Key)] = append([]byte(nil), e.Value...)
		}
		return nil
	})
	return out, err
}

// Maintenance runs nutsdb's own TTL-based eviction (handled internally by
// Get on expired reads) and then, if the bucket's live key count exceeds
// HighWatermark, deletes the oldest keys under prefix until the count is
// back at or below LowWatermark. Oldest is approximated by ascending key
// order, which holds for every namespace above since each key embeds an
// ascending timestamp.
func (s *Store) Maintenance(prefix string) error {
	if s.highWatermark <= 0 {
		return nil
	}
	keys, err := s.Scan(prefix)
	if err != nil {
		return err
	}
	if len(keys) <= s.highWatermark {
		return nil
	}

	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sortStrings(ordered)

	toEvict := len(ordered) - s.lowWatermark
	for i := 0; i < toEvict && i < len(ordered); i++ {
		if err := s.Delete([]byte(ordered[i])); err != nil {
			return err
		}
	}
	return nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && strings.Compare(s[j-1], s[j]) > 0; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// HistKey builds the hist:<channel-or-target>:<ts>:<msgid> namespace key.
func HistKey(target string, ts int64, msgid string) []byte {
	return []byte("hist:" + target + ":" + itoa(ts) + ":" + msgid)
}

// MetaKey builds the meta:<target>:<key> namespace key.
func MetaKey(target, key string) []byte {
	return []byte("meta:" + target + ":" + key)
}

// MarkReadKey builds the markread:<account>:<target> namespace key.
func MarkReadKey(account, target string) []byte {
	return []byte("markread:" + account + ":" + target)
}

// WebPushKey builds the webpush:<account>:<hash> namespace key.
func WebPushKey(account, hash string) []byte {
	return []byte("webpush:" + account + ":" + hash)
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
