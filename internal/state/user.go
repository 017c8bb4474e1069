package state

import (
	"net"
	"strings"

	ircnum "github.com/undernet-go/p10d/internal/numeric"
)

// AwayKind distinguishes the three away states of §4.10.
type AwayKind uint8

const (
	Present AwayKind = iota
	AwayMessage
	AwayStar
)

// Away is a user's current away state.
type Away struct {
	Kind    AwayKind
	Message string
	Since   int64 // unix seconds of the last present<->away transition
}

// User is a network-wide user record (§3 "User"). Fields marked "local only"
// are meaningful only when the user is locally connected.
type User struct {
	Numeric ircnum.User
	Nick    string
	NickTS  int64

	Ident    string
	Host     string
	VHost    string // +h
	FakeHost string // +f
	CloakedHost string // +C
	CloakedIP   string // +c
	Real     string // truncated to 50 bytes
	Account  string // present iff +r
	ConnectTS int64
	IP       net.IP
	Modes    map[byte]struct{}

	Memberships map[string]Prefix // channel name (lower-cased) -> prefix bits

	Away Away

	// local-only
	Caps         Capabilities
	PendingLabel string
	PendingBatch string
}

func newUser(numeric ircnum.User, nick string, nickTS int64) *User {
	return &User{
		Numeric:     numeric,
		Nick:        nick,
		NickTS:      nickTS,
		Modes:       make(map[byte]struct{}),
		Memberships: make(map[string]Prefix),
	}
}

// HasMode reports whether user mode m is set.
func (u *User) HasMode(m byte) bool {
	_, ok := u.Modes[m]
	return ok
}

// SetMode raises user mode m.
func (u *User) SetMode(m byte) {
	u.Modes[m] = struct{}{}
}

// ClearMode lowers user mode m.
func (u *User) ClearMode(m byte) {
	delete(u.Modes, m)
}

// SetRealname truncates to the 50-byte limit from §3.
func (u *User) SetRealname(r string) {
	if len(r) > 50 {
		r = r[:50]
	}
	u.Real = r
}

// NickLower is the case-folded nick used as the by-nick index key.
func (u *User) NickLower() string {
	return strings.ToLower(u.Nick)
}
