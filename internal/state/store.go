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

// Package state holds the in-memory, event-loop-owned canonical tables for
// servers, users, and channels (§3), along with the TS-based merge and
// collision rules of §4.4.
package state

import (
	libatm "github.com/undernet-go/p10d/atomic"
	liberr "github.com/undernet-go/p10d/errors"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
	ircnum "github.com/undernet-go/p10d/internal/numeric"
)

var (
	ErrServerNumericCollision = liberr.New((ircerr.MinState + 1).Uint16(), "server numeric already in use")
	ErrServerNotFound         = liberr.New((ircerr.MinState + 2).Uint16(), "server numeric not found")
	ErrUserNotFound           = liberr.New((ircerr.MinState + 3).Uint16(), "user numeric not found")
	ErrChannelNotFound        = liberr.New((ircerr.MinState + 4).Uint16(), "channel not found")
)

// Store is the single authoritative replica of network state. It is owned
// by the event loop (§5 "Shared resource policy"): mutation methods are not
// safe to call concurrently with each other, but the underlying maps use
// atomic.MapTyped so read-only lookups (WHOIS, ISUPPORT assembly) may run
// from a different goroutine than the event loop without racing writers
// that only ever Store/Delete whole entries.
type Store struct {
	Me ircnum.Server

	servers libatm.MapTyped[ircnum.Server, *Server]
	users   libatm.MapTyped[ircnum.User, *User]
	byNick  libatm.MapTyped[string, ircnum.User]
	chans   libatm.MapTyped[string, *Channel]
}

// New builds an empty Store for the local server identified by me.
func New(me ircnum.Server) *Store {
	s := &Store{
		Me:      me,
		servers: libatm.NewMapTyped[ircnum.Server, *Server](),
		users:   libatm.NewMapTyped[ircnum.User, *User](),
		byNick:  libatm.NewMapTyped[string, ircnum.User](),
		chans:   libatm.NewMapTyped[string, *Channel](),
	}
	s.servers.Store(me, newServer(me, "", ""))
	return s
}

// AddServer admits a new server link. It returns ErrServerNumericCollision
// if the numeric is already known, per §4.4 "Server-numeric collision":
// the link must be rejected, neither side admitted twice.
func (s *Store) AddServer(numeric ircnum.Server, name string, uplink ircnum.Server) (*Server, error) {
	if _, ok := s.servers.Load(numeric); ok {
		return nil, ErrServerNumericCollision
	}

	srv := newServer(numeric, name, uplink)
	s.servers.Store(numeric, srv)

	if up, ok := s.servers.Load(uplink); ok {
		up.Downlinks[numeric] = struct{}{}
	}

	return srv, nil
}

// Server looks up a server by numeric.
func (s *Store) Server(numeric ircnum.Server) (*Server, bool) {
	return s.servers.Load(numeric)
}

// RemoveServerCascade implements SQUIT (§4.5 "SQ"): removes the named
// server and recursively all servers/users behind it, returning the set of
// removed user numerics so the caller can fan out quits and a set of
// removed server numerics so the caller can emit netsplit batch markers.
func (s *Store) RemoveServerCascade(numeric ircnum.Server) (removedUsers []ircnum.User, removedServers []ircnum.Server) {
	srv, ok := s.servers.Load(numeric)
	if !ok {
		return nil, nil
	}

	for down := range srv.Downlinks {
		u, sv := s.RemoveServerCascade(down)
		removedUsers = append(removedUsers, u...)
		removedServers = append(removedServers, sv...)
	}

	s.users.Range(func(un ircnum.User, u *User) bool {
		if un.Server() == numeric {
			removedUsers = append(removedUsers, un)
		}
		return true
	})

	for _, un := range removedUsers {
		s.removeUserMemberships(un)
		if u, ok := s.users.Load(un); ok {
			s.byNick.CompareAndDelete(u.NickLower(), un)
		}
		s.users.Delete(un)
	}

	if up, ok := s.servers.Load(srv.Uplink); ok {
		delete(up.Downlinks, numeric)
	}
	s.servers.Delete(numeric)
	removedServers = append(removedServers, numeric)

	return removedUsers, removedServers
}

// IntroduceUser implements `N` nick introduction (§4.4). It does not itself
// resolve nick collisions; callers must run ResolveNickCollision first when
// a nick is already claimed by a different numeric.
func (s *Store) IntroduceUser(numeric ircnum.User, nick string, nickTS int64) *User {
	u := newUser(numeric, nick, nickTS)
	s.users.Store(numeric, u)
	s.byNick.Store(u.NickLower(), numeric)
	return u
}

// User looks up a user by numeric.
func (s *Store) User(numeric ircnum.User) (*User, bool) {
	return s.users.Load(numeric)
}

// UserByNick looks up a user by case-folded nick.
func (s *Store) UserByNick(nick string) (*User, bool) {
	numeric, ok := s.byNick.Load(toLower(nick))
	if !ok {
		return nil, false
	}
	return s.users.Load(numeric)
}

// UsersByAccount returns every known connection logged into account, the
// input presence.Compute aggregates over (§4.10).
func (s *Store) UsersByAccount(account string) []*User {
	if account == "" {
		return nil
	}
	var out []*User
	s.users.Range(func(_ ircnum.User, u *User) bool {
		if u.Account == account {
			out = append(out, u)
		}
		return true
	})
	return out
}

// RenameUser changes a user's nick (§4.4 "Nick-change N"). A case-only
// change preserves the existing nick-TS; any other change adopts newTS.
func (s *Store) RenameUser(numeric ircnum.User, newNick string, newTS int64) error {
	u, ok := s.users.Load(numeric)
	if !ok {
		return ErrUserNotFound
	}

	oldLower := u.NickLower()
	caseOnly := oldLower == toLower(newNick)

	s.byNick.Delete(oldLower)
	u.Nick = newNick
	if !caseOnly {
		u.NickTS = newTS
	}
	s.byNick.Store(u.NickLower(), numeric)

	return nil
}

// CollisionLoser applies the nick-collision rule of §4.4 and returns the
// numeric of the user that must be killed, or both if the TS and
// user@host are equal.
func CollisionLoser(a, b *User) []ircnum.User {
	hostA := a.Ident + "@" + a.Host
	hostB := b.Ident + "@" + b.Host

	if hostA != hostB {
		if a.NickTS > b.NickTS {
			return []ircnum.User{a.Numeric}
		}
		return []ircnum.User{b.Numeric}
	}

	if a.NickTS == b.NickTS {
		return []ircnum.User{a.Numeric, b.Numeric}
	}
	if a.NickTS < b.NickTS {
		return []ircnum.User{a.Numeric}
	}
	return []ircnum.User{b.Numeric}
}

// RemoveUser implements Q/K/cascading-SQ user removal.
func (s *Store) RemoveUser(numeric ircnum.User) {
	u, ok := s.users.Load(numeric)
	if !ok {
		return
	}
	s.removeUserMemberships(numeric)
	s.byNick.CompareAndDelete(u.NickLower(), numeric)
	s.users.Delete(numeric)
}

func (s *Store) removeUserMemberships(numeric ircnum.User) {
	u, ok := s.users.Load(numeric)
	if !ok {
		return
	}
	for name := range u.Memberships {
		if ch, ok := s.chans.Load(name); ok {
			delete(ch.Members, numeric)
			if len(ch.Members) == 0 && len(ch.Glines) == 0 {
				s.chans.Delete(name)
			}
		}
	}
}

// Channel looks up a channel by case-folded name.
func (s *Store) Channel(name string) (*Channel, bool) {
	return s.chans.Load(toLower(name))
}

// GetOrCreateChannel returns the existing channel or creates it with ts
// (§4.5 "J": "initialize channel with current time if empty").
func (s *Store) GetOrCreateChannel(name string, ts int64) *Channel {
	lower := toLower(name)
	if ch, ok := s.chans.Load(lower); ok {
		return ch
	}
	ch := newChannel(name, ts)
	s.chans.Store(lower, ch)
	return ch
}

// JoinChannel adds a local membership and records it on the user, used by
// the `J` handler.
func (s *Store) JoinChannel(ch *Channel, u *User, p Prefix) {
	ch.Members[u.Numeric] = p
	u.Memberships[ch.NameLower()] = p
}

// PartChannel removes a membership, used by the `L` handler and by KICK.
func (s *Store) PartChannel(ch *Channel, numeric ircnum.User) {
	delete(ch.Members, numeric)
	if u, ok := s.users.Load(numeric); ok {
		delete(u.Memberships, ch.NameLower())
	}
	if len(ch.Members) == 0 {
		s.chans.Delete(ch.NameLower())
	}
}

// RenameChannel implements RENAME (§4.6 "RN"): migrates memberships, modes,
// topic, and lists atomically under the new name. Fails with
// ErrChannelNotFound if old does not exist; callers must separately check
// the new name does not already exist (collision precondition).
func (s *Store) RenameChannel(oldName, newName string) (*Channel, error) {
	ch, ok := s.chans.Load(toLower(oldName))
	if !ok {
		return nil, ErrChannelNotFound
	}

	s.chans.Delete(toLower(oldName))
	ch.Name = newName
	s.chans.Store(toLower(newName), ch)

	for numeric := range ch.Members {
		if u, ok := s.users.Load(numeric); ok {
			p := u.Memberships[toLower(oldName)]
			delete(u.Memberships, toLower(oldName))
			u.Memberships[toLower(newName)] = p
		}
	}

	return ch, nil
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
