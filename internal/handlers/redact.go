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
	"time"

	"github.com/undernet-go/p10d/internal/ircerr"
	"github.com/undernet-go/p10d/internal/proto"
	"github.com/undernet-go/p10d/internal/state"
	"github.com/undernet-go/p10d/internal/wire"
)

// RedactWindow bounds how long after sending a user may redact their own
// message; channel operators and network operators are not bound by it (§7).
const RedactWindow = 300 * time.Second

var redactPrivilege state.Privilege

// Redact authorizes and relays a "RD" token: <target> <msgid> :<reason>.
// Authorization order is network operator (unbounded), channel operator on
// target (unbounded), else the original sender within RedactWindow.
func (r *Registry) Redact(ctx *proto.Context, fr *wire.Frame) error {
	if len(fr.Params) < 2 {
		return ErrNeedMoreParams
	}
	target, msgid := fr.Params[0], fr.Params[1]

	actorNumeric, err := decodeUser(ctx.Origin)
	if err != nil {
		return ErrUnknownOrigin
	}
	actor, ok := ctx.Store.User(actorNumeric)
	if !ok {
		return ErrUnknownOrigin
	}

	if redactPrivilege.IsNetworkOper(actor) {
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}

	if ch, ok := ctx.Store.Channel(target); ok && redactPrivilege.IsChannelOp(ch, actorNumeric) {
		broadcastLinks(ctx, ctx.From, fr)
		return nil
	}

	ev, ok := lookupHistoryByMsgID(r.kv, target, msgid)
	if !ok {
		reply := ircerr.NewStdReply(ircerr.Fail, "REDACT", ircerr.UnknownMsgID, "no such message", target, msgid)
		return ctx.From.WriteFrame(stdReplyFrame(reply))
	}
	if ev.Sender != ctx.Origin {
		reply := ircerr.NewStdReply(ircerr.Fail, "REDACT", ircerr.RedactForbidden, "you may not redact this message", target, msgid)
		return ctx.From.WriteFrame(stdReplyFrame(reply))
	}
	if time.Since(time.Unix(ev.TS, 0)) > RedactWindow {
		reply := ircerr.NewStdReply(ircerr.Fail, "REDACT", ircerr.RedactWindowExpired, "redaction window has expired", target, msgid)
		return ctx.From.WriteFrame(stdReplyFrame(reply))
	}

	broadcastLinks(ctx, ctx.From, fr)
	return nil
}
