package normalize

import (
	"strings"

	"logtarget/internal/record"
)

// PrefixTemplate returns a prefix function for Options.Prefix. The template
// substitutes {category} and {level} from the record; any other {name} is
// passed to lookup, and an unknown name renders as "-". A brace without a
// closing partner is copied as is.
//
//	"[{userId}][{HOSTNAME}]" -> "[42][web-1]"
func PrefixTemplate(tmpl string, lookup func(name string) (string, bool)) func(record.LogRecord) string {
	return func(rec record.LogRecord) string {
		var b strings.Builder
		rest := tmpl
		for {
			open := strings.IndexByte(rest, '{')
			if open < 0 {
				b.WriteString(rest)
				break
			}
			end := strings.IndexByte(rest[open:], '}')
			if end < 0 {
				b.WriteString(rest)
				break
			}
			b.WriteString(rest[:open])
			name := rest[open+1 : open+end]
			b.WriteString(placeholder(name, rec, lookup))
			rest = rest[open+end+1:]
		}
		return b.String()
	}
}

func placeholder(name string, rec record.LogRecord, lookup func(string) (string, bool)) string {
	switch name {
	case KeyCategory:
		return rec.Category
	case KeyLevel:
		return rec.Level.Name()
	}
	if lookup != nil {
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
	}
	return "-"
}
