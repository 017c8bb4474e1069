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

// Package handlers implements the one-line contracts of spec.md §4.5 (core
// tokens) and §4.6 (IRCv3 tokens) as proto.HandlerFunc values, registered
// onto a proto.Dispatcher at startup.
package handlers

import (
	"strconv"
	"strings"
	"time"

	liberr "github.com/undernet-go/p10d/errors"
	"github.com/undernet-go/p10d/internal/burst"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
	"github.com/undernet-go/p10d/internal/kvstore"
	"github.com/undernet-go/p10d/internal/numeric"
	"github.com/undernet-go/p10d/internal/presence"
	"github.com/undernet-go/p10d/internal/proto"
	"github.com/undernet-go/p10d/internal/state"
	"github.com/undernet-go/p10d/internal/tagengine"
	"github.com/undernet-go/p10d/internal/wire"
)

var (
	ErrNeedMoreParams = liberr.New((ircerr.MinHandlers + 1).Uint16(), "handler received too few params")
	ErrUnknownOrigin  = liberr.New((ircerr.MinHandlers + 2).Uint16(), "frame origin does not resolve to a known numeric")
	ErrUnknownTarget  = liberr.New((ircerr.MinHandlers + 3).Uint16(), "message target not found")
)

// History row kinds stored under kvstore's "hist:" namespace (§C supplement
// backing CHATHISTORY and REDACT's own-message check).
const (
	histPrivmsg = 0
	histNotice  = 1
)

// Core holds the shared, long-lived §4.5 handler state that does not
// belong on state.Store: one burst.Session per linked server and the
// last-broadcast presence.Effective per account, the same way
// handlers.Registry owns the IRCv3-side long-lived state.
type Core struct {
	ServerName    string
	hiddenMessage string

	bursts   map[string]*burst.Session     // keyed by link numeric
	presence map[string]presence.Effective // keyed by account

	kv *kvstore.Store
}

// NewCore builds a Core advertising serverName on generated @msgid tags.
func NewCore(serverName string) *Core {
	return &Core{
		ServerName: serverName,
		bursts:     make(map[string]*burst.Session),
		presence:   make(map[string]presence.Effective),
	}
}

// SetKV attaches the persistent store Privmsg/Notice record channel history
// into, and Redact/ChatHistory later read from. A nil store (the default)
// disables history recording without affecting relay behavior.
func (c *Core) SetKV(kv *kvstore.Store) {
	c.kv = kv
}

// SetHiddenMessage overrides the substitute message shown when every
// connection of an account is away-star (§4.10).
func (c *Core) SetHiddenMessage(msg string) {
	c.hiddenMessage = msg
}

func (c *Core) burstSession(linkNumeric string) *burst.Session {
	s, ok := c.bursts[linkNumeric]
	if !ok {
		s = burst.NewSession()
		c.bursts[linkNumeric] = s
	}
	return s
}

// Register binds every §4.5 core token handler onto d.
func (c *Core) Register(d *proto.Dispatcher) {
	d.Register("G", Ping)
	d.Register("Z", Pong)
	d.Register("S", Server)
	d.Register("SQ", Squit)
	d.Register("N", Nick)
	d.Register("Q", Quit)
	d.Register("K", Kick)
	d.Register("J", Join)
	d.Register("L", Part)
	d.Register("M", Mode)
	d.Register("B", Burst)
	d.Register("EB", c.EndOfBurst)
	d.Register("EA", c.EndOfBurstAck)
	d.Register("P", c.Privmsg)
	d.Register("O", c.Notice)
	d.Register("AC", Account)
	d.Register("FA", Fakehost)
	d.Register("I", Invite)
	d.Register("A", c.Away)
}

func frame(token string, params ...string) *wire.Frame {
	return &wire.Frame{Token: token, Params: params}
}

func frameWithTrailing(token string, trailing string, params ...string) *wire.Frame {
	return &wire.Frame{Token: token, Params: params, Trailing: trailing, HasTrail: true}
}

// stdReplyFrame renders a *ircerr.StdReply as the wire frame carrying it:
// "<SEVERITY> <COMMAND> <CODE> [<context>...] :<description>".
func stdReplyFrame(reply *ircerr.StdReply) *wire.Frame {
	params := append([]string{reply.Command, string(reply.Code)}, reply.Context...)
	return frameWithTrailing(string(reply.Severity), reply.StringError(), params...)
}

func broadcastLinks(ctx *proto.Context, except proto.Link, fr *wire.Frame) {
	for _, l := range ctx.Links() {
		if l == except {
			continue
		}
		_ = l.WriteFrame(fr)
	}
}

func decodeServer(s string) (numeric.Server, error) {
	n := numeric.Server(s)
	if !n.Valid() {
		return "", ErrUnknownOrigin
	}
	return n, nil
}

func decodeUser(s string) (numeric.User, error) {
	n := numeric.User(s)
	if !n.Valid() {
		return "", ErrUnknownOrigin
	}
	return n, nil
}

// Ping replies Z (PONG) to the sender with the echoed token (§4.5 "G").
func Ping(ctx *proto.Context, fr *wire.Frame) error {
	return ctx.From.WriteFrame(frame("Z", fr.AllParams()...))
}

// Pong resets liveness tracking on the link (§4.5 "Z"). Actual timer
// bookkeeping lives on the transport's Link implementation; the handler's
// contract here is simply "do not treat this as an error".
func Pong(ctx *proto.Context, fr *wire.Frame) error {
	return nil
}

// Server admits an uplink/downlink after a numeric-collision check
// (§4.5 "S", §4.4 "Server-numeric collision"). params: numeric, name,
// [hopcount, token, ...], LinkTS.
func Server(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	numericStr, name := fr.Params[0], fr.Params[1]
	num, err := decodeServer(numericStr)
	if err != nil {
		return err
	}

	uplink, _ := decodeServer("AA")
	if ctx.Origin != "" {
		if u, err := decodeServer(ctx.Origin); err == nil {
			uplink = u
		}
	}

	if _, err := ctx.Store.AddServer(num, name, uplink); err != nil {
		return err
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Squit removes the named server and cascades quits for every user behind
// it (§4.5 "SQ"). The batch/netsplit-marker emission to batch-capable
// clients is the caller's responsibility (internal/batch + internal/tagengine
// own that concern); this handler only mutates state.Store and propagates.
func Squit(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	num, err := decodeServer(fr.Params[0])
	if err != nil {
		return err
	}
	ctx.Store.RemoveServerCascade(num)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Nick introduces a new user (server-sourced, numeric origin resolves to
// a server) or renames an existing one (user-sourced origin); collision
// resolution is the caller's responsibility once both candidates are
// known, per §4.4 (state.CollisionLoser already implements the rule).
func Nick(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}

	if _, err := decodeUser(ctx.Origin); err == nil {
		nickTS, _ := strconv.ParseInt(fr.Params[1], 10, 64)
		u, _ := decodeUser(ctx.Origin)
		if err := ctx.Store.RenameUser(u, fr.Params[0], nickTS); err != nil {
			return err
		}
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}

	if len(fr.Params) < 8 {
		return ErrNeedMoreParams
	}
	nick := fr.Params[0]
	nickTS, _ := strconv.ParseInt(fr.Params[2], 10, 64)
	userNumeric, err := decodeUser(fr.Params[len(fr.Params)-2])
	if err != nil {
		return err
	}
	u := ctx.Store.IntroduceUser(userNumeric, nick, nickTS)
	u.Ident = fr.Params[3]
	u.Host = fr.Params[4]
	u.SetRealname(fr.Trailing)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Quit removes the user and fans out to common-channel members and peers
// (§4.5 "Q").
func Quit(ctx *proto.Context, fr *wire.Frame) error {
	u, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	ctx.Store.RemoveUser(u)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Kick removes a member from a channel (§4.5 "K"). Permission enforcement
// on a local source is the transport layer's concern (it knows whether
// the source is local); this handler only applies the resulting mutation.
func Kick(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	ch, ok := ctx.Store.Channel(fr.Params[0])
	if !ok {
		return ErrUnknownTarget
	}
	target, err := decodeUser(fr.Params[1])
	if err != nil {
		return err
	}
	ctx.Store.PartChannel(ch, target)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Join adds a local user to a channel, creating it with the current time
// if it does not exist yet (§4.5 "J").
func Join(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	u, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	user, ok := ctx.Store.User(u)
	if !ok {
		return ErrUnknownOrigin
	}
	ch := ctx.Store.GetOrCreateChannel(fr.Params[0], 0)
	ctx.Store.JoinChannel(ch, user, state.Prefix{})
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Part removes a membership (§4.5 "L").
func Part(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	u, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	ch, ok := ctx.Store.Channel(fr.Params[0])
	if !ok {
		return ErrUnknownTarget
	}
	ctx.Store.PartChannel(ch, u)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Mode applies a channel or user mode delta and propagates it (§4.5 "M").
// Arity/privilege enforcement belongs to a mode-specific validator layered
// above this handler; this contract only covers the bare +/-flag toggle on
// already-validated frames.
func Mode(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	target, delta := fr.Params[0], fr.Params[1]

	if ch, ok := ctx.Store.Channel(target); ok {
		applyChannelModeDelta(ch, delta, fr.Params[2:])
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}

	u, err := decodeUser(target)
	if err != nil {
		return ErrUnknownTarget
	}
	user, ok := ctx.Store.User(u)
	if !ok {
		return ErrUnknownTarget
	}
	applyUserModeDelta(user, delta)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

func applyChannelModeDelta(ch *state.Channel, delta string, params []string) {
	adding := true
	pi := 0
	for _, c := range delta {
		switch c {
		case '+':
			adding = true
		case '-':
			adding = false
		default:
			if adding {
				param := ""
				if pi < len(params) {
					param = params[pi]
					pi++
				}
				ch.Modes[byte(c)] = param
			} else {
				delete(ch.Modes, byte(c))
			}
		}
	}
}

func applyUserModeDelta(u *state.User, delta string) {
	adding := true
	for _, c := range delta {
		switch c {
		case '+':
			adding = true
		case '-':
			adding = false
		default:
			if adding {
				u.SetMode(byte(c))
			} else {
				u.ClearMode(byte(c))
			}
		}
	}
}

// Burst merges an inbound channel burst frame per §4.4's TS-merge rule
// (state.Channel.MergeIncoming already implements the three-way merge).
// params: name, TS, modestring[:params...], member list, optional %bans.
func Burst(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	ts, _ := strconv.ParseInt(fr.Params[1], 10, 64)
	ch := ctx.Store.GetOrCreateChannel(fr.Params[0], ts)

	modes := make(map[byte]string)
	members := make(map[numeric.User]state.Prefix)
	var bans map[string]struct{}

	for _, tok := range fr.Params[2:] {
		switch {
		case strings.HasPrefix(tok, "%"):
			if bans == nil {
				bans = make(map[string]struct{})
			}
			bans[strings.TrimPrefix(tok, "%")] = struct{}{}
		case strings.HasPrefix(tok, "+"):
			for _, c := range tok[1:] {
				modes[byte(c)] = ""
			}
		default:
			parts := strings.SplitN(tok, ":", 2)
			un, err := decodeUser(parts[0])
			if err != nil {
				continue
			}
			var p state.Prefix
			if len(parts) == 2 {
				for _, c := range parts[1] {
					switch c {
					case 'o':
						p.Set(state.BitOp)
					case 'h':
						p.Set(state.BitHalfOp)
					case 'v':
						p.Set(state.BitVoice)
					}
				}
			}
			members[un] = p
		}
	}

	ch.MergeIncoming(ts, modes, members, bans)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// burstServer resolves the linked state.Server an EB/EA frame's origin
// refers to, or nil if it does not resolve to a known server numeric.
func burstServer(ctx *proto.Context) *state.Server {
	num, err := decodeServer(ctx.Origin)
	if err != nil {
		return nil
	}
	srv, ok := ctx.Store.Server(num)
	if !ok {
		return nil
	}
	return srv
}

// EndOfBurst records the peer's EB on this link's burst.Session and acks
// with EA (§4.4, §4.5 "EB"/"EA"). Advance enforces that EB cannot regress
// an already-completed handshake (internal/burst.ErrStepOutOfOrder on a
// malformed peer).
func (c *Core) EndOfBurst(ctx *proto.Context, fr *wire.Frame) error {
	sess := c.burstSession(ctx.From.Numeric())
	if err := sess.Advance(burst.StepEB); err != nil {
		return err
	}
	if srv := burstServer(ctx); srv != nil {
		burst.ApplyBurstState(srv, sess)
	}
	return ctx.From.WriteFrame(frame("EA"))
}

// EndOfBurstAck records the peer's EA and flips state.Server.Burst to
// BurstDone once both our EB and their EA have been observed on this link.
func (c *Core) EndOfBurstAck(ctx *proto.Context, fr *wire.Frame) error {
	sess := c.burstSession(ctx.From.Numeric())
	sess.RecvEA()
	if srv := burstServer(ctx); srv != nil {
		burst.ApplyBurstState(srv, sess)
	}
	return nil
}

// Privmsg and Notice route a message to a channel (fan out to members) or
// a user (single hop), per §4.5 "P"/"O". @time/@msgid are attached if
// absent (§4.9) and, for channel targets, the message is recorded into the
// history store CHATHISTORY serves from (§C supplement).
func (c *Core) Privmsg(ctx *proto.Context, fr *wire.Frame) error {
	return c.routeMessage(ctx, fr, histPrivmsg)
}

func (c *Core) Notice(ctx *proto.Context, fr *wire.Frame) error {
	return c.routeMessage(ctx, fr, histNotice)
}

func (c *Core) routeMessage(ctx *proto.Context, fr *wire.Frame, kind int) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	target := fr.Params[0]

	tagengine.EnsureOutboundTags(fr, true, true, c.ServerName, time.Now())

	if ch, ok := ctx.Store.Channel(target); ok {
		for member := range ch.Members {
			_ = member // fan-out to local members is the transport's job once it resolves Link by numeric
		}
		c.recordHistory(ctx, target, kind, fr)
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}

	if _, ok := ctx.Store.UserByNick(target); ok {
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}
	if _, err := decodeUser(target); err == nil {
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}
	return ErrUnknownTarget
}

// recordHistory persists one hist:<target>:<ts>:<msgid> row so CHATHISTORY
// and REDACT's own-message check have a local store to read from. A nil
// kv (the default, no kvstore configured) makes this a no-op.
func (c *Core) recordHistory(ctx *proto.Context, target string, kind int, fr *wire.Frame) {
	if c.kv == nil {
		return
	}
	tag, ok := fr.Tag("msgid")
	if !ok {
		return
	}
	account := "*"
	if u, ok := ctx.Store.User(numeric.User(ctx.Origin)); ok && u.Account != "" {
		account = u.Account
	}
	ts := time.Now().Unix()
	_ = c.kv.Put(kvstore.HistKey(target, ts, tag.Value), encodeHistValue(kind, ctx.Origin, account, fr.Trailing), 0)
}

// Account sets or unsets a user's account (§4.5 "AC"). Subtype is
// fr.Params[0]: "R" register, "M" modify, "U" unregister.
func Account(ctx *proto.Context, fr *wire.Frame) error {
	u, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	user, ok := ctx.Store.User(u)
	if !ok {
		return ErrUnknownOrigin
	}
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	switch fr.Params[0] {
	case "U":
		user.Account = ""
	default:
		user.Account = fr.Params[1]
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Fakehost sets a virtual host and propagates (§4.5 "FA").
func Fakehost(ctx *proto.Context, fr *wire.Frame) error {
	u, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	user, ok := ctx.Store.User(u)
	if !ok {
		return ErrUnknownOrigin
	}
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	user.FakeHost = fr.Params[0]
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Invite carries an invite through without state mutation (§4.5 "I"); the
// channel-side invite-list bookkeeping is a client-command concern layered
// above this S2S relay contract.
func Invite(ctx *proto.Context, fr *wire.Frame) error {
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Away sets or clears away state, distinguishing message/present/away-star
// per §4.10 (§4.5 "A"), then recomputes the account's effective presence
// across every local connection and broadcasts only on a real change.
func (c *Core) Away(ctx *proto.Context, fr *wire.Frame) error {
	u, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	user, ok := ctx.Store.User(u)
	if !ok {
		return ErrUnknownOrigin
	}

	now := time.Now().Unix()
	switch {
	case fr.HasTrail && fr.Trailing == "*":
		user.Away = state.Away{Kind: state.AwayStar, Since: now}
	case fr.HasTrail && fr.Trailing != "":
		user.Away = state.Away{Kind: state.AwayMessage, Message: fr.Trailing, Since: now}
	default:
		user.Away = state.Away{Kind: state.Present, Since: now}
	}

	c.broadcastPresence(ctx, user.Account, fr)
	return nil
}

// broadcastPresence aggregates every local connection of account into one
// presence.Effective value and fans out the AWAY frame only when that
// effective value changed (§4.10). Accounts with no Account set (anonymous
// connections) always broadcast, since there is nothing to aggregate.
func (c *Core) broadcastPresence(ctx *proto.Context, account string, fr *wire.Frame) {
	if account == "" {
		broadcastLinks(ctx, ctx.From, fr)
		return
	}

	conns := ctx.Store.UsersByAccount(account)
	aways := make([]state.Away, 0, len(conns))
	for _, u := range conns {
		aways = append(aways, u.Away)
	}
	if len(aways) == 0 {
		broadcastLinks(ctx, ctx.From, fr)
		return
	}

	next := presence.Compute(aways, c.hiddenMessage)
	if !presence.Changed(c.presence[account], next) {
		return
	}
	c.presence[account] = next
	broadcastLinks(ctx, ctx.From, fr)
}
