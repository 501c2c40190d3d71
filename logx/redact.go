package logx

import (
	"context"
	"log/slog"
	"regexp"
)

// Failure reasons and caller-supplied attributes can carry secrets that
// were never meant for a log file: connection strings, tokens, addresses
// pulled out of an error message. These patterns cover the usual
// suspects. They favour recall over precision; a false positive costs a
// placeholder, a false negative costs a credential.
var (
	connStringPattern = regexp.MustCompile(`(?i)\b([a-z][a-z0-9+]*)://[^@\s]+@`)
	passwordPattern   = regexp.MustCompile(`(?i)(password|passwd|pwd)(['"\s:=]+)[^'"&\s]{3,}`)
	secretPattern     = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)
	emailPattern      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

const redactedPlaceholder = "[REDACTED]"

// RedactString replaces credential-shaped substrings with a placeholder.
func RedactString(s string) string {
	if s == "" {
		return s
	}
	s = passwordPattern.ReplaceAllString(s, "$1$2"+redactedPlaceholder)
	s = secretPattern.ReplaceAllString(s, "$1$2"+redactedPlaceholder)
	// Emails before connection strings, so the placeholder inserted for
	// userinfo is never itself mistaken for an address.
	s = emailPattern.ReplaceAllString(s, redactedPlaceholder)
	s = connStringPattern.ReplaceAllString(s, "$1://"+redactedPlaceholder+"@")
	return s
}

// RedactSink wraps another sink and scrubs every record on the way
// through: the message and all string-valued attributes are passed
// through RedactString before the inner sink sees them.
type RedactSink struct {
	inner Sink
}

func NewRedactSink(inner Sink) *RedactSink {
	return &RedactSink{inner: inner}
}

func (s *RedactSink) Emit(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, RedactString(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		if a.Value.Kind() == slog.KindString {
			a.Value = slog.StringValue(RedactString(a.Value.String()))
		}
		out.AddAttrs(a)
		return true
	})
	return s.inner.Emit(ctx, out)
}

func (s *RedactSink) Close() error { return s.inner.Close() }
