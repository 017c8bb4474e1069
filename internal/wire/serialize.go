package wire

import "strings"

// Serialize renders a Frame back into a wire line without the trailing CRLF.
func Serialize(f *Frame) string {
	var b strings.Builder

	if len(f.Tags) > 0 {
		b.WriteByte('@')
		for i, t := range f.Tags {
			if i > 0 {
				b.WriteByte(';')
			}
			if t.ClientOnly {
				b.WriteByte('+')
			}
			b.WriteString(t.Key)
			if t.Value != "" {
				b.WriteByte('=')
				b.WriteString(escapeTagValue(t.Value))
			}
		}
		b.WriteByte(' ')
	}

	if f.Origin != "" {
		b.WriteByte(':')
		b.WriteString(f.Origin)
		b.WriteByte(' ')
	}

	b.WriteString(f.Token)

	for _, p := range f.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}

	if f.HasTrail {
		b.WriteString(" :")
		b.WriteString(f.Trailing)
	}

	return b.String()
}
