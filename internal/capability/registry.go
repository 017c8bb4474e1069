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

// Package capability implements the IRCv3 CAP negotiation state machine of
// spec.md §4.7: LS/LIST/REQ/ACK/NAK/END/NEW/DEL over a fixed, individually
// disableable capability table, backed by state.Capabilities bitsets.
package capability

// Name is one of the fixed, stably-bit-assigned capability tokens of
// §4.7. The bit index is the position in All, never renumbered: it is the
// same index space state.Capabilities bitsets are keyed by.
type Name string

const (
	MultiPrefix          Name = "multi-prefix"
	UserhostInNames      Name = "userhost-in-names"
	ExtendedJoin         Name = "extended-join"
	AwayNotify           Name = "away-notify"
	AccountNotify        Name = "account-notify"
	AccountTag           Name = "account-tag"
	InviteNotify         Name = "invite-notify"
	ChgHost              Name = "chghost"
	ServerTime           Name = "server-time"
	EchoMessage          Name = "echo-message"
	CapNotify            Name = "cap-notify"
	Batch                Name = "batch"
	LabeledResponse      Name = "labeled-response"
	SetName              Name = "setname"
	MessageTags          Name = "message-tags"
	StandardReplies      Name = "standard-replies"
	SASL                 Name = "sasl" // value-bearing: advertised mechanism list
	NoImplicitNames      Name = "draft/no-implicit-names"
	ExtendedISupport     Name = "draft/extended-isupport"
	PreAway              Name = "draft/pre-away"
	Multiline            Name = "draft/multiline" // value-bearing: max-bytes=N,max-lines=N
	ChatHistory          Name = "draft/chathistory" // value-bearing: optional pm=<mode>
	EventPlayback        Name = "draft/event-playback"
	MessageRedaction     Name = "draft/message-redaction"
	AccountRegistration  Name = "draft/account-registration" // value-bearing: optional flags
	ReadMarker           Name = "draft/read-marker"
	ChannelRename        Name = "draft/channel-rename"
	Metadata2            Name = "draft/metadata-2"
	WebPush              Name = "draft/webpush"
)

// All lists every recognized capability in stable bit order. Index i is the
// bit position passed to state.Capabilities.Enable/Disable/Enabled.
var All = []Name{
	MultiPrefix, UserhostInNames, ExtendedJoin, AwayNotify, AccountNotify,
	AccountTag, InviteNotify, ChgHost, ServerTime, EchoMessage, CapNotify,
	Batch, LabeledResponse, SetName, MessageTags, StandardReplies, SASL,
	NoImplicitNames, ExtendedISupport, PreAway, Multiline, ChatHistory,
	EventPlayback, MessageRedaction, AccountRegistration, ReadMarker,
	ChannelRename, Metadata2, WebPush,
}

// Width is the bitset width a state.Capabilities value must be sized for.
var Width = uint(len(All))

var bitOf = func() map[Name]uint {
	m := make(map[Name]uint, len(All))
	for i, n := range All {
		m[n] = uint(i)
	}
	return m
}()

// Bit returns the stable bit index for name, and whether it is recognized.
func Bit(name Name) (uint, bool) {
	b, ok := bitOf[name]
	return b, ok
}

// ValueFunc produces the advertised value for a value-bearing capability
// (e.g. "sasl=PLAIN,EXTERNAL"), or "" if the capability has none. Registered
// per deployment since the values are runtime configuration, not constants.
type ValueFunc func() string

// Table is the set of enabled, individually-configurable capabilities for
// one server instance, along with their optional value providers.
type Table struct {
	enabled map[Name]bool
	values  map[Name]ValueFunc
}

// NewTable builds a Table with every capability in All enabled and no
// values registered; callers disable per configuration and register value
// providers (sasl, multiline, chathistory, account-registration) before
// negotiation starts.
func NewTable() *Table {
	t := &Table{enabled: make(map[Name]bool, len(All)), values: make(map[Name]ValueFunc)}
	for _, n := range All {
		t.enabled[n] = true
	}
	return t
}

// Disable removes name from the advertised set.
func (t *Table) Disable(name Name) {
	t.enabled[name] = false
}

// SetValue registers a value provider for a value-bearing capability.
func (t *Table) SetValue(name Name, f ValueFunc) {
	t.values[name] = f
}

// Enabled reports whether name is currently advertised by this server.
func (t *Table) Enabled(name Name) bool {
	return t.enabled[name]
}

// Advertised returns the current LS token for name: "name" or
// "name=value" if a non-empty value is registered.
func (t *Table) Advertised(name Name) string {
	if f, ok := t.values[name]; ok {
		if v := f(); v != "" {
			return string(name) + "=" + v
		}
	}
	return string(name)
}

// List returns the LS tokens for every currently enabled capability.
func (t *Table) List() []string {
	out := make([]string, 0, len(All))
	for _, n := range All {
		if t.enabled[n] {
			out = append(out, t.Advertised(n))
		}
	}
	return out
}
