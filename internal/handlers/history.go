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
	"sort"
	"strconv"
	"strings"

	"github.com/undernet-go/p10d/internal/kvstore"
	"github.com/undernet-go/p10d/internal/services"
)

// encodeHistValue packs one recorded message under its hist: key. The
// layout is deliberately flat (NUL-separated fields, no codec dependency)
// since it never crosses the wire, only the local kvstore.
func encodeHistValue(kind int, origin, account, content string) []byte {
	return []byte(strconv.Itoa(kind) + "\x00" + origin + "\x00" + account + "\x00" + content)
}

func decodeHistValue(b []byte) (kind int, origin, account, content string, ok bool) {
	parts := strings.SplitN(string(b), "\x00", 4)
	if len(parts) != 4 {
		return 0, "", "", "", false
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", "", "", false
	}
	return kind, parts[1], parts[2], parts[3], true
}

// parseHistKey splits a "hist:<target>:<ts>:<msgid>" key back into its parts.
func parseHistKey(key string) (target string, ts int64, msgid string, ok bool) {
	rest := strings.TrimPrefix(key, "hist:")
	if rest == key {
		return "", 0, "", false
	}
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) != 3 {
		return "", 0, "", false
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, "", false
	}
	return parts[0], ts, parts[2], true
}

// scanHistory returns every recorded row for target, oldest first. A nil kv
// (no store configured) returns nil.
func scanHistory(kv *kvstore.Store, target string) []services.HistoryEvent {
	if kv == nil {
		return nil
	}
	raw, err := kv.Scan("hist:" + target + ":")
	if err != nil {
		return nil
	}

	out := make([]services.HistoryEvent, 0, len(raw))
	for key, val := range raw {
		_, ts, msgid, ok := parseHistKey(key)
		if !ok {
			continue
		}
		kind, origin, account, content, ok := decodeHistValue(val)
		if !ok {
			continue
		}
		out = append(out, services.HistoryEvent{
			MsgID:   msgid,
			TS:      ts,
			Type:    kind,
			Sender:  origin,
			Account: account,
			Content: content,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

// lookupHistoryByMsgID finds the row matching msgid among target's history,
// used by REDACT's own-message and window checks.
func lookupHistoryByMsgID(kv *kvstore.Store, target, msgid string) (services.HistoryEvent, bool) {
	for _, ev := range scanHistory(kv, target) {
		if ev.MsgID == msgid {
			return ev, true
		}
	}
	return services.HistoryEvent{}, false
}
