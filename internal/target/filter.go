package target

import (
	"strings"

	"logtarget/internal/record"
)

// FilterFunc selects the records a target accepts. It belongs to the host
// framework; FilterRecords is the stock implementation.
type FilterFunc func(records []record.LogRecord, levels record.Mask, categories, except []string) []record.LogRecord

// FilterRecords keeps records whose level is in levels, whose category
// matches categories (all when empty) and does not match except. A pattern
// ending in "*" matches by prefix.
func FilterRecords(records []record.LogRecord, levels record.Mask, categories, except []string) []record.LogRecord {
	out := make([]record.LogRecord, 0, len(records))
	for _, r := range records {
		if !levels.Accepts(r.Level) {
			continue
		}
		if len(categories) > 0 && !matchAny(r.Category, categories) {
			continue
		}
		if matchAny(r.Category, except) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchAny(category string, patterns []string) bool {
	for _, p := range patterns {
		if matchCategory(category, p) {
			return true
		}
	}
	return false
}

func matchCategory(category, pattern string) bool {
	if category == pattern {
		return true
	}
	prefix := strings.TrimRight(pattern, "*")
	return prefix != pattern && strings.HasPrefix(category, prefix)
}
