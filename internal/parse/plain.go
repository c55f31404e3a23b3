package parse

import (
	"strings"

	"logtarget/internal/record"
)

// ParsePlain sets s as a text payload. A leading level marker such as
// "ERROR", "[warn]" or "INFO:" sets the record level; the text is kept whole.
func ParsePlain(rec *record.LogRecord, s string) {
	rec.Payload = s

	first, _, _ := strings.Cut(s, " ")
	bracketed := strings.HasPrefix(first, "[") && strings.HasSuffix(first, "]")
	token := strings.TrimSuffix(strings.Trim(first, "[]"), ":")
	if token == "" || (!bracketed && token != strings.ToUpper(token)) {
		return
	}
	if l, ok := record.ParseLevel(token); ok {
		rec.Level = l
	}
}
