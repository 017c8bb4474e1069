package state

import (
	"strings"
	"time"

	ircnum "github.com/undernet-go/p10d/internal/numeric"
)

// Channel is a network-wide channel record (§3 "Channel").
type Channel struct {
	Name    string // as received, case preserved for display
	TS      int64
	Modes   map[byte]string // mode flag -> param ("" if the mode takes none)
	Members map[ircnum.User]Prefix
	Bans    map[string]struct{}
	Excepts map[string]struct{}
	Invites map[string]struct{}

	Topic      string
	TopicSetBy string
	TopicTS    int64

	Metadata map[string]string

	Glines map[string]Gline
}

// Gline is a global ban record (§C "Glines" supplement). Its wire
// representation travels inside the burst ordering (§4.4 step b).
type Gline struct {
	Mask   string
	Reason string
	Setter string
	Expiry int64
}

// NameLower is the case-folded lookup key for the channel index.
func (c *Channel) NameLower() string {
	return strings.ToLower(c.Name)
}

func newChannel(name string, ts int64) *Channel {
	if ts == 0 {
		ts = time.Now().Unix()
	}
	return &Channel{
		Name:    name,
		TS:      ts,
		Modes:   make(map[byte]string),
		Members: make(map[ircnum.User]Prefix),
		Bans:    make(map[string]struct{}),
		Excepts: make(map[string]struct{}),
		Invites: make(map[string]struct{}),
		Glines:  make(map[string]Gline),
	}
}

// HasMode reports whether channel mode m is set.
func (c *Channel) HasMode(m byte) bool {
	_, ok := c.Modes[m]
	return ok
}

// MergeIncoming applies the TS-merge rule of §4.4 for an inbound `B` burst or
// mode-bearing channel message. members carries only the numerics and
// prefixes present on the incoming frame; bans is the incoming ban mask set
// (may be nil). The caller is responsible for having already resolved each
// member numeric to a live User before calling.
func (c *Channel) MergeIncoming(incomingTS int64, modes map[byte]string, members map[ircnum.User]Prefix, bans map[string]struct{}) {
	switch {
	case incomingTS < c.TS:
		// older TS wins outright: clear local modes/bans/prefixes, adopt remote.
		c.TS = incomingTS
		c.Modes = cloneModes(modes)
		c.Bans = cloneSet(bans)
		for n := range c.Members {
			c.Members[n] = Prefix{}
		}
		for n, p := range members {
			c.Members[n] = p
		}

	case incomingTS == c.TS:
		// equal TS: union of modes, bans, and per-member prefixes.
		for m, param := range modes {
			c.Modes[m] = param
		}
		for mask := range bans {
			c.Bans[mask] = struct{}{}
		}
		for n, p := range members {
			cur := c.Members[n]
			cur.Union(p)
			c.Members[n] = cur
		}

	default:
		// newer TS: ignore remote modes/bans, keep local state, add new
		// members without prefixes.
		for n := range members {
			if _, exists := c.Members[n]; !exists {
				c.Members[n] = Prefix{}
			}
		}
	}
}

func cloneModes(m map[byte]string) map[byte]string {
	out := make(map[byte]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
