// Package wire encodes and decodes the line-oriented command vocabulary
// spoken between the central station and worker stations. Every message is
// a single newline-terminated text line; keywords match case-insensitively.
package wire

import (
	"fmt"
	"strings"
	"time"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
)

// TimestampLayout is the on-wire timestamp format, always UTC.
const TimestampLayout = "2006-01-02 15:04:05.000"

// FormatTimestamp renders t in the wire format, millisecond precision, UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a wire timestamp. The result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// CutPrefixFold returns the remainder of line after prefix, matching the
// prefix case-insensitively.
func CutPrefixFold(line, prefix string) (string, bool) {
	if len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
		return line[len(prefix):], true
	}
	return "", false
}

// QuoteString wraps s in double quotes, escaping '"' and '\' with a
// backslash, so multi-word titles survive single-line framing.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// parseQuoted consumes a quoted string from the front of s and returns the
// unescaped value and the remainder after the closing quote.
func parseQuoted(s string) (value, rest string, ok bool) {
	if len(s) == 0 || s[0] != '"' {
		return "", "", false
	}
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(c)
		}
	}
	return "", "", false
}

// parseInt consumes a non-negative decimal integer from the front of s.
func parseInt(s string) (value int64, rest string, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		value = value*10 + int64(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	return value, s[i:], true
}

// TaskHeader is the first line of a task block in a RETRIEVE TASKS reply.
type TaskHeader struct {
	ID           int64
	Title        string
	SecondsSpent int64
}

// FormatTaskHeader renders a TASK line: TASK <id> TITLE <quoted> SPENT <secs>.
func FormatTaskHeader(h TaskHeader) string {
	return fmt.Sprintf("TASK %d TITLE %s SPENT %d", h.ID, QuoteString(h.Title), h.SecondsSpent)
}

// ParseTaskHeader parses a TASK line.
func ParseTaskHeader(line string) (TaskHeader, bool) {
	var h TaskHeader
	rest, ok := CutPrefixFold(line, "TASK ")
	if !ok {
		return h, false
	}
	h.ID, rest, ok = parseInt(rest)
	if !ok {
		return h, false
	}
	rest, ok = CutPrefixFold(rest, " TITLE ")
	if !ok {
		return h, false
	}
	h.Title, rest, ok = parseQuoted(rest)
	if !ok {
		return h, false
	}
	rest, ok = CutPrefixFold(rest, " SPENT ")
	if !ok {
		return h, false
	}
	h.SecondsSpent, rest, ok = parseInt(rest)
	if !ok || rest != "" {
		return h, false
	}
	return h, true
}

// FormatEntry renders a log entry line:
//
//	<timestamp> <login> LOGIN|LOGOUT
//	<timestamp> <login> TASK <id> START|PAUSE|FINISH
func FormatEntry(e worklog.Entry) (string, error) {
	head := FormatTimestamp(e.Timestamp) + " " + e.Login
	switch e.Type {
	case worklog.EntryLogin:
		return head + " LOGIN", nil
	case worklog.EntryLogout:
		return head + " LOGOUT", nil
	case worklog.EntryTaskStart, worklog.EntryTaskPause, worklog.EntryTaskFinish:
		if e.TaskID == nil {
			return "", fmt.Errorf("task entry without task id")
		}
		verb := "START"
		switch e.Type {
		case worklog.EntryTaskPause:
			verb = "PAUSE"
		case worklog.EntryTaskFinish:
			verb = "FINISH"
		}
		return fmt.Sprintf("%s TASK %d %s", head, *e.TaskID, verb), nil
	default:
		return "", fmt.Errorf("unknown entry type %d", e.Type)
	}
}

// ParseEntry parses a log entry line. The timestamp occupies a fixed-width
// prefix; the login is the following whitespace-delimited token.
func ParseEntry(line string) (worklog.Entry, error) {
	var e worklog.Entry
	if len(line) < len(TimestampLayout)+1 {
		return e, fmt.Errorf("log entry line too short: %q", line)
	}
	ts, err := ParseTimestamp(line[:len(TimestampLayout)])
	if err != nil {
		return e, err
	}
	rest := line[len(TimestampLayout):]
	if rest[0] != ' ' {
		return e, fmt.Errorf("malformed log entry line: %q", line)
	}
	rest = rest[1:]
	space := strings.IndexByte(rest, ' ')
	if space <= 0 {
		return e, fmt.Errorf("log entry line missing login: %q", line)
	}
	e.Timestamp = ts
	e.Login = rest[:space]
	verb := rest[space+1:]

	switch {
	case strings.EqualFold(verb, "LOGIN"):
		e.Type = worklog.EntryLogin
	case strings.EqualFold(verb, "LOGOUT"):
		e.Type = worklog.EntryLogout
	default:
		taskRest, ok := CutPrefixFold(verb, "TASK ")
		if !ok {
			return e, fmt.Errorf("unknown log entry verb %q", verb)
		}
		id, taskRest, ok := parseInt(taskRest)
		if !ok {
			return e, fmt.Errorf("log entry missing task id: %q", line)
		}
		switch {
		case strings.EqualFold(taskRest, " START"):
			e.Type = worklog.EntryTaskStart
		case strings.EqualFold(taskRest, " PAUSE"):
			e.Type = worklog.EntryTaskPause
		case strings.EqualFold(taskRest, " FINISH"):
			e.Type = worklog.EntryTaskFinish
		default:
			return e, fmt.Errorf("unknown task verb in %q", line)
		}
		e.TaskID = &id
	}
	return e, nil
}
