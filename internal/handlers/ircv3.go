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

package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	liberr "github.com/undernet-go/p10d/errors"
	"github.com/undernet-go/p10d/internal/batch"
	"github.com/undernet-go/p10d/internal/capability"
	"github.com/undernet-go/p10d/internal/eventbus"
	ircerr "github.com/undernet-go/p10d/internal/ircerr"
	"github.com/undernet-go/p10d/internal/kvstore"
	"github.com/undernet-go/p10d/internal/proto"
	"github.com/undernet-go/p10d/internal/services"
	"github.com/undernet-go/p10d/internal/tagengine"
	"github.com/undernet-go/p10d/internal/wire"
)

var (
	ErrUnknownRequest = liberr.New((ircerr.MinHandlers + 4).Uint16(), "unknown request id")
	ErrStaleMarkRead  = liberr.New((ircerr.MinHandlers + 5).Uint16(), "markread timestamp is older than the stored value")
)

// webpushTimeout bounds the offload goroutine's HTTP POST (§4.11 "Retry
// policy": retries/backoff happen in internal/services, not here).
const webpushTimeout = 10 * time.Second

// metadataEntry is one cached (target,key) METADATA value, refreshed on an
// MDQ round trip and expired after TTL (§4.6 "METADATA"/"METADATAQUERY").
type metadataEntry struct {
	Value      string
	Zstd       bool
	Visibility string
	ExpiresAt  time.Time
}

// Registry holds the shared, long-lived IRCv3-handler state that does not
// belong on state.Store: the capability table, per-link batch coordinators,
// the local METADATA cache, and the markread watermark table. One Registry
// serves the whole process, the same way one proto.Dispatcher does.
type Registry struct {
	ServerName string
	Caps       *capability.Table

	batches  map[string]*batch.Coordinator // keyed by link numeric
	metadata map[string]map[string]metadataEntry
	markread map[string]int64 // "<account>\x00<target>" -> last ts
	metaTTL  time.Duration

	kv  *kvstore.Store
	bus *eventbus.Bus

	sasl    map[string]*services.SASLSession // keyed by client numeric
	mechs   services.MechanismTable
	webpush *services.WebPush

	chathistory *services.Federation
	chLocal     map[string][]services.HistoryEvent // reqid -> local rows
	chRequester map[string]proto.Link              // reqid -> client link to answer
	chLimit     map[string]int                     // reqid -> client's requested limit
	chTarget    map[string]string                  // reqid -> channel/user queried
}

// NewRegistry builds a Registry advertising serverName's identity on
// generated tags, with every capability in capability.NewTable enabled.
func NewRegistry(serverName string, metaTTL time.Duration) *Registry {
	if metaTTL <= 0 {
		metaTTL = 5 * time.Minute
	}
	return &Registry{
		ServerName:  serverName,
		Caps:        capability.NewTable(),
		batches:     make(map[string]*batch.Coordinator),
		metadata:    make(map[string]map[string]metadataEntry),
		markread:    make(map[string]int64),
		metaTTL:     metaTTL,
		sasl:        make(map[string]*services.SASLSession),
		webpush:     services.NewWebPush(),
		chathistory: services.NewFederation(true, 0),
		chLocal:     make(map[string][]services.HistoryEvent),
		chRequester: make(map[string]proto.Link),
		chLimit:     make(map[string]int),
		chTarget:    make(map[string]string),
	}
}

// SetKV attaches the persistent store ChatHistory serves local rows from.
func (r *Registry) SetKV(kv *kvstore.Store) {
	r.kv = kv
}

// SetBus attaches the event bus WebPush's offload goroutine reports
// delivery outcomes on (internal/eventbus.SubjectWebpushResult).
func (r *Registry) SetBus(bus *eventbus.Bus) {
	r.bus = bus
}

func (r *Registry) batchFor(linkNumeric string) *batch.Coordinator {
	c, ok := r.batches[linkNumeric]
	if !ok {
		c = batch.NewCoordinator()
		r.batches[linkNumeric] = c
	}
	return c
}

func (r *Registry) saslSession(client string) *services.SASLSession {
	s, ok := r.sasl[client]
	if !ok {
		s = services.NewSASLSession()
		r.sasl[client] = s
	}
	return s
}

// serverLinks filters ctx.Links() down to the other servers on the mesh,
// the fan-out set for a federated CHATHISTORY "Q".
func serverLinks(ctx *proto.Context, except proto.Link) []proto.Link {
	var out []proto.Link
	for _, l := range ctx.Links() {
		if l == except || !l.IsServer() {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Register binds every IRCv3 token handler in §4.6 onto d.
func (r *Registry) Register(d *proto.Dispatcher) {
	d.Register("SE", r.SetName)
	d.Register("TM", r.TagMsg)
	d.Register("BT", r.Batch)
	d.Register("RD", r.Redact)
	d.Register("RN", r.Rename)
	d.Register("MD", r.Metadata)
	d.Register("MDQ", r.MetadataQuery)
	d.Register("WP", r.WebPush)
	d.Register("ML", r.Multiline)
	d.Register("SA", r.SASL)
	d.Register("MR", r.MarkRead)
	d.Register("RG", r.Register0)
	d.Register("VF", r.Verify)
	d.Register("RR", r.RegReply)
	d.Register("CH", r.ChatHistory)
}

// ChatHistory implements the S2S chathistory subcommands ("Q" query, "R"
// result row, "E" end-of-results): "Q <target> <L|B|A|R|W|T> <ref> <limit>
// <reqid>", "R <reqid> <msgid> <ts> <type-int> <sender> <account|*>
// :<content>", "E <reqid> <count>" (§4.6 "CHATHISTORY CH"). A "Q" arriving
// from a peer is answered from the local store; a "Q" arriving from a
// local client opens a federated internal/services.Federation query,
// fanning "Q" out to every server link and merging the "R"/"E" replies
// once every peer has answered.
func (r *Registry) ChatHistory(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}

	switch fr.Params[0] {
	case "Q":
		return r.chatHistoryQuery(ctx, fr)
	case "R":
		return r.chatHistoryResult(ctx, fr)
	case "E":
		return r.chatHistoryEnd(ctx, fr)
	}
	return ErrNeedMoreParams
}

func (r *Registry) chatHistoryQuery(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 6 {
		return ErrNeedMoreParams
	}
	target := fr.Params[1]
	limit, _ := strconv.Atoi(fr.Params[4])

	if ctx.From.IsServer() {
		rows := scanHistory(r.kv, target)
		if limit > 0 && len(rows) > limit {
			rows = rows[len(rows)-limit:]
		}
		reqid := fr.Params[5]
		for _, ev := range rows {
			row := frameWithTrailing("R", ev.Content, reqid, ev.MsgID,
				strconv.FormatInt(ev.TS, 10), strconv.Itoa(ev.Type), ev.Sender, ev.Account)
			_ = ctx.From.WriteFrame(row)
		}
		return ctx.From.WriteFrame(frame("E", reqid, strconv.Itoa(len(rows))))
	}

	// A local client's query entering federation: serve what we have
	// locally, then fan out to peers and merge on "E".
	local := scanHistory(r.kv, target)
	peers := serverLinks(ctx, ctx.From)
	peerNames := make([]string, 0, len(peers))
	for _, p := range peers {
		peerNames = append(peerNames, p.Numeric())
	}

	if len(peers) == 0 {
		if limit > 0 && len(local) > limit {
			local = local[len(local)-limit:]
		}
		return r.emitChatHistoryBatch(ctx.From, target, local)
	}

	q, err := r.chathistory.Open(target, limit, peerNames)
	if err != nil {
		// Federation disabled by configuration: local store only.
		if limit > 0 && len(local) > limit {
			local = local[len(local)-limit:]
		}
		return r.emitChatHistoryBatch(ctx.From, target, local)
	}

	r.chLocal[q.ReqID] = local
	r.chRequester[q.ReqID] = ctx.From
	r.chLimit[q.ReqID] = limit
	r.chTarget[q.ReqID] = target

	for _, p := range peers {
		_ = p.WriteFrame(frame("Q", target, fr.Params[2], fr.Params[3], fr.Params[4], q.ReqID))
	}
	return nil
}

func (r *Registry) chatHistoryResult(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 6 {
		return ErrNeedMoreParams
	}
	ts, _ := strconv.ParseInt(fr.Params[2], 10, 64)
	typ, _ := strconv.Atoi(fr.Params[3])
	r.chathistory.Accept(fr.Params[0], ctx.From.Numeric(), services.HistoryEvent{
		MsgID:   fr.Params[1],
		TS:      ts,
		Type:    typ,
		Sender:  fr.Params[4],
		Account: fr.Params[5],
		Content: fr.Trailing,
	})
	return nil
}

func (r *Registry) chatHistoryEnd(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	reqid := fr.Params[0]
	if !r.chathistory.End(reqid, ctx.From.Numeric()) {
		return nil
	}

	local := r.chLocal[reqid]
	limit := r.chLimit[reqid]
	requester := r.chRequester[reqid]
	target := r.chTarget[reqid]
	delete(r.chLocal, reqid)
	delete(r.chLimit, reqid)
	delete(r.chRequester, reqid)
	delete(r.chTarget, reqid)

	merged := r.chathistory.Merge(reqid, local)
	if limit > 0 && len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}
	if requester == nil {
		return nil
	}
	return r.emitChatHistoryBatch(requester, target, merged)
}

// emitChatHistoryBatch streams rows for target to link wrapped in a
// "chathistory" BATCH, each row carrying the @time/@msgid tags a
// server-time/message-tags capable client expects (§4.9, example flow in
// spec.md §8.5).
func (r *Registry) emitChatHistoryBatch(link proto.Link, target string, rows []services.HistoryEvent) error {
	id := tagengine.NewMsgID(r.ServerName, time.Now())
	if err := link.WriteFrame(frame("BT", "+"+id, "chathistory")); err != nil {
		return err
	}
	for _, ev := range rows {
		row := frameWithTrailing("P", ev.Content, target)
		row.Origin = ev.Sender
		row.Tags = []wire.Tag{
			{Key: "batch", Value: id},
			{Key: "msgid", Value: ev.MsgID},
			{Key: "time", Value: tagengine.NewTimeTag(time.Unix(ev.TS, 0).UTC())},
		}
		if err := link.WriteFrame(row); err != nil {
			return err
		}
	}
	return link.WriteFrame(frame("BT", "-"+id))
}

// SetName updates realname and propagates (§4.6 "SETNAME SE").
func (r *Registry) SetName(ctx *proto.Context, fr *wire.Frame) error {
	u, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	user, ok := ctx.Store.User(u)
	if !ok {
		return ErrUnknownOrigin
	}
	user.SetRealname(fr.Trailing)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// TagMsg relays client-only tags without accompanying text (§4.6 "TAGMSG TM").
func (r *Registry) TagMsg(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	fr.Tags = tagengine.FilterS2S(fr.Tags)
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Batch opens or closes a network batch on behalf of the link's server
// record (§4.6 "BATCH BT"): "+<id> <type> [params...]" or "-<id>".
func (r *Registry) Batch(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	raw := fr.Params[0]
	c := r.batchFor(ctx.From.Numeric())

	switch {
	case strings.HasPrefix(raw, "+"):
		if len(fr.Params) < 2 {
			return ErrNeedMoreParams
		}
		id := strings.TrimPrefix(raw, "+")
		typ := fr.Params[1]
		if err := c.OpenBatch(id, typ, "", 0, 0); err != nil {
			return err
		}
	case strings.HasPrefix(raw, "-"):
		id := strings.TrimPrefix(raw, "-")
		if _, err := c.CloseBatch(id); err != nil {
			return err
		}
	default:
		return ErrNeedMoreParams
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Rename atomically migrates a channel to a new name (§4.6 "RENAME RN").
func (r *Registry) Rename(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	oldName, newName := fr.Params[0], fr.Params[1]
	if _, exists := ctx.Store.Channel(newName); exists {
		return ErrUnknownTarget
	}
	if _, err := ctx.Store.RenameChannel(oldName, newName); err != nil {
		return err
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

func metadataKey(target, key string) string { return target + "\x00" + key }

// Metadata stores or clears a key (§4.6 "METADATA MD"): "<target> <key>
// <visibility> [Z] :<value>" sets; bare "<target> <key>" clears.
func (r *Registry) Metadata(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	target, key := fr.Params[0], fr.Params[1]

	bucket, ok := r.metadata[target]
	if !ok {
		bucket = make(map[string]metadataEntry)
		r.metadata[target] = bucket
	}

	if len(fr.Params) == 2 && !fr.HasTrail {
		delete(bucket, key)
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}
	if len(fr.Params) < 3 {
		return ErrNeedMoreParams
	}

	visibility := fr.Params[2]
	zstd := false
	if len(fr.Params) > 3 && fr.Params[3] == "Z" {
		zstd = true
	}
	bucket[key] = metadataEntry{
		Value:      fr.Trailing,
		Zstd:       zstd,
		Visibility: visibility,
		ExpiresAt:  time.Now().Add(r.metaTTL),
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// MetadataQuery answers from the local cache when fresh, otherwise forwards
// the query to the services collaborator (§4.6 "METADATAQUERY MDQ").
func (r *Registry) MetadataQuery(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	target, key := fr.Params[0], fr.Params[1]

	if key != "*" {
		if bucket, ok := r.metadata[target]; ok {
			if entry, ok := bucket[key]; ok && time.Now().Before(entry.ExpiresAt) {
				params := []string{target, key, entry.Visibility}
				if entry.Zstd {
					params = append(params, "Z")
				}
				return ctx.From.WriteFrame(frameWithTrailing("MD", entry.Value, params...))
			}
		}
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// WebPush implements every WEBPUSH subcommand (§4.6 "WEBPUSH WP"): "V
// :<vapid-public-key>" broadcast, "R <user> <endpoint> <p256dh> <auth>"
// register, "U <user> <endpoint>" unregister, "P <account> :<message>"
// push, "E <user> <code> :<msg>" error relay. Endpoint safety is enforced
// by internal/services.WebPush.Register (HTTPS, no loopback/private); a
// rejected endpoint answers with a standard-reply instead of registering.
func (r *Registry) WebPush(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}

	switch fr.Params[0] {
	case "V":
		r.webpush.SetVAPID(fr.Trailing)
		broadcastLinks(ctx, ctx.From, fr)
		return nil

	case "R":
		if len(fr.Params) < 4 {
			return ErrNeedMoreParams
		}
		user, endpoint, p256dh, auth := fr.Params[1], fr.Params[2], fr.Params[3], ""
		if len(fr.Params) > 4 {
			auth = fr.Params[4]
		}
		if err := r.webpush.Register(user, services.Subscription{Endpoint: endpoint, P256DH: p256dh, Auth: auth}); err != nil {
			reply := ircerr.NewStdReply(ircerr.Fail, "WEBPUSH", ircerr.InvalidParams, err.Error(), user)
			return ctx.From.WriteFrame(stdReplyFrame(reply))
		}
		broadcastLinks(ctx, ctx.From, fr)
		return nil

	case "U":
		if len(fr.Params) < 2 {
			return ErrNeedMoreParams
		}
		r.webpush.Unregister(fr.Params[1])
		broadcastLinks(ctx, ctx.From, fr)
		return nil

	case "P":
		if len(fr.Params) < 2 {
			return ErrNeedMoreParams
		}
		account := fr.Params[1]
		payload := []byte(fr.Trailing)
		bus := r.bus
		go func() {
			err := r.webpush.Push(context.Background(), account, payload, webpushTimeout)
			if bus == nil {
				return
			}
			result := account + "\x00" + "E"
			if err == nil {
				result = account + "\x00" + "OK"
			}
			_ = bus.Publish(eventbus.SubjectWebpushResult, []byte(result))
		}()
		return nil

	default:
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}
}

// Multiline relays the S2S multiline batch-id prefix forms (§4.6 "MULTILINE ML").
func (r *Registry) Multiline(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	raw := fr.Params[0]
	c := r.batchFor(ctx.From.Numeric())

	switch {
	case strings.HasPrefix(raw, "+"):
		id := strings.TrimPrefix(raw, "+")
		target := ""
		if len(fr.Params) > 1 {
			target = fr.Params[1]
		}
		if err := c.OpenBatch(id, "draft/multiline", target, 0, 0); err != nil {
			return err
		}
		if err := c.Append(id, target, fr.Trailing, false); err != nil {
			return err
		}
	case strings.HasPrefix(raw, "c"):
		id := strings.TrimPrefix(raw, "c")
		b, ok := c.Lookup(id)
		if !ok {
			return batch.ErrUnknownBatch
		}
		if err := c.Append(id, b.Target, fr.Trailing, true); err != nil {
			return err
		}
	case strings.HasPrefix(raw, "-"):
		id := strings.TrimPrefix(raw, "-")
		if _, err := c.CloseBatch(id); err != nil {
			return err
		}
	default:
		if _, ok := c.Lookup(raw); !ok {
			return batch.ErrUnknownBatch
		}
		if err := c.Append(raw, "", fr.Trailing, false); err != nil {
			return err
		}
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// SASL drives the per-client services.SASLSession state machine across
// every subcommand (§4.6 "SASL SA"): wire form is "<client> <subcmd>
// [...]". "S" Start and "H" Host info flow core->services; "C" Continue
// flows both ways, with a client-sent trailing "*" aborting (translated to
// numeric 906, mirroring the client-side "AUTHENTICATE *" abort); "D" Done,
// "L" Login and "M" Mechanisms flow services->core, with "M" refreshing
// the advertised sasl= capability value and a non-"S" "D" also emitting
// 906. "I" Impersonate is relayed without a local state transition.
func (r *Registry) SASL(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	client, subcmd := fr.Params[0], fr.Params[1]

	switch subcmd {
	case "S":
		mech := ""
		if len(fr.Params) > 2 {
			mech = fr.Params[2]
		}
		if err := r.saslSession(client).Start(mech); err != nil {
			return err
		}

	case "H":
		// Host info passthrough; no session state transition.

	case "C":
		sess := r.saslSession(client)
		if fr.HasTrail && fr.Trailing == "*" {
			sess.Abort()
			broadcastLinks(ctx, ctx.From, fr)
			return ctx.From.WriteFrame(frameWithTrailing("906", "SASL authentication aborted", client))
		}
		if err := sess.Continue(); err != nil {
			return err
		}

	case "D":
		if len(fr.Params) < 3 {
			return ErrNeedMoreParams
		}
		verdict := fr.Params[2]
		sess := r.saslSession(client)
		sess.Done(verdict)
		if verdict != "S" {
			delete(r.sasl, client)
			broadcastLinks(ctx, ctx.From, fr)
			return ctx.From.WriteFrame(frameWithTrailing("906", "SASL authentication failed", client))
		}

	case "L":
		if len(fr.Params) < 4 {
			return ErrNeedMoreParams
		}
		account := fr.Params[2]
		ts, _ := strconv.ParseInt(fr.Params[3], 10, 64)
		r.saslSession(client).Login(account, ts)
		if u, err := decodeUser(client); err == nil {
			if user, ok := ctx.Store.User(u); ok {
				user.Account = account
			}
		}

	case "M":
		if fr.HasTrail {
			mechs := fr.Trailing
			r.mechs.Set(strings.Split(mechs, ","))
			r.Caps.SetValue(capability.SASL, func() string { return mechs })
		}

	case "I":
		// Impersonate passthrough; no local state transition.
	}

	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// MarkRead enforces the monotonic-per-(account,target) watermark invariant
// and relays toward/from the services collaborator (§4.6 "MARKREAD MR").
func (r *Registry) MarkRead(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 1 {
		return ErrNeedMoreParams
	}
	switch fr.Params[0] {
	case "S":
		if len(fr.Params) < 4 {
			return ErrNeedMoreParams
		}
		account, target := fr.Params[1], fr.Params[2]
		ts, _ := strconv.ParseInt(fr.Params[3], 10, 64)
		key := account + "\x00" + target
		if cur, ok := r.markread[key]; ok && ts < cur {
			return ErrStaleMarkRead
		}
		r.markread[key] = ts
	case "R":
		if len(fr.Params) < 4 {
			return ErrNeedMoreParams
		}
		account, target := fr.Params[2], fr.Params[3]
		if len(fr.Params) >= 5 {
			ts, _ := strconv.ParseInt(fr.Params[4], 10, 64)
			key := account + "\x00" + target
			if cur, ok := r.markread[key]; !ok || ts > cur {
				r.markread[key] = ts
			}
		}
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

// Register0, Verify and RegReply relay the account-registration handshake
// to/from the services collaborator (§4.6 "REGISTER RG / VERIFY VF / REGREPLY RR").
func (r *Registry) Register0(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

func (r *Registry) Verify(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}

func (r *Registry) RegReply(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 3 {
		return ErrNeedMoreParams
	}
	broadcastLinks(ctx, ctx.From, fr)
	return nil
}
