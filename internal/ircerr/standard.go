package ircerr

import liberr "github.com/undernet-go/p10d/errors"

// StdCode is one of the standard-reply codes from the IRCv3 standard-replies
// specification (FAIL/WARN/NOTE <COMMAND> <CODE> ... :<description>).
type StdCode string

const (
	NeedMoreParams         StdCode = "NEED_MORE_PARAMS"
	InvalidParams          StdCode = "INVALID_PARAMS"
	InvalidTarget          StdCode = "INVALID_TARGET"
	TemporarilyUnavailable StdCode = "TEMPORARILY_UNAVAILABLE"
	AccountExists          StdCode = "ACCOUNT_EXISTS"
	BadAccountName         StdCode = "BAD_ACCOUNT_NAME"
	AccountNameMustBeNick  StdCode = "ACCOUNT_NAME_MUST_BE_NICK"
	NeedNick               StdCode = "NEED_NICK"
	AlreadyAuthenticated   StdCode = "ALREADY_AUTHENTICATED"
	WeakPassword           StdCode = "WEAK_PASSWORD"
	InvalidEmail           StdCode = "INVALID_EMAIL"
	InvalidCode            StdCode = "INVALID_CODE"
	MultilineMaxBytes      StdCode = "MULTILINE_MAX_BYTES"
	MultilineMaxLines      StdCode = "MULTILINE_MAX_LINES"
	MultilineInvalidTarget StdCode = "MULTILINE_INVALID_TARGET"
	MultilineInvalid       StdCode = "MULTILINE_INVALID"
	BatchAlreadyOpen       StdCode = "BATCH_ALREADY_OPEN"
	InvalidBatchID         StdCode = "INVALID_BATCH_ID"
	BatchIDMismatch        StdCode = "BATCH_ID_MISMATCH"
	UnsupportedType        StdCode = "UNSUPPORTED_TYPE"
	RedactForbidden        StdCode = "REDACT_FORBIDDEN"
	RedactWindowExpired    StdCode = "REDACT_WINDOW_EXPIRED"
	UnknownMsgID           StdCode = "UNKNOWN_MSGID"
	ChannelNameInUse       StdCode = "CHANNEL_NAME_IN_USE"
	CannotRename           StdCode = "CANNOT_RENAME"
	ChannelRenamed         StdCode = "CHANNEL_RENAMED"
	MessageError           StdCode = "MESSAGE_ERROR"
	InvalidMsgRefType      StdCode = "INVALID_MSGREFTYPE"
)

// Severity is the standard-reply line prefix: FAIL, WARN or NOTE.
type Severity string

const (
	Fail Severity = "FAIL"
	Warn Severity = "WARN"
	Note Severity = "NOTE"
)

// StdReply is a coded error.Error carrying the three standard-reply fields
// (severity, command, code) so a handler can map it straight onto the wire
// without re-deriving FAIL/WARN/NOTE at the call site.
type StdReply struct {
	liberr.Error
	Severity Severity
	Command  string
	Code     StdCode
	Context  []string
}

// NewStdReply builds a coded Error in the MinStdReply range that also carries
// enough information to render a standard-reply line.
func NewStdReply(sev Severity, command string, code StdCode, description string, ctx ...string) *StdReply {
	return &StdReply{
		Error:    liberr.New(MinStdReply.Uint16(), description),
		Severity: sev,
		Command:  command,
		Code:     code,
		Context:  ctx,
	}
}

// Line renders the standard-reply wire form:
// "<SEVERITY> <COMMAND> <CODE> [<context>...] :<description>".
func (s *StdReply) Line() string {
	out := string(s.Severity) + " " + s.Command + " " + string(s.Code)
	for _, c := range s.Context {
		out += " " + c
	}
	return out + " :" + s.StringError()
}
