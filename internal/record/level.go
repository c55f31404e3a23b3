package record

import "strings"

// Level is a severity bit flag. Values match the host framework's ordinals
// so a set of levels can be expressed as a bitmask.
type Level int

const (
	LevelError        Level = 0x01
	LevelWarning      Level = 0x02
	LevelInfo         Level = 0x04
	LevelTrace        Level = 0x08
	LevelProfile      Level = 0x40
	LevelProfileBegin Level = 0x50
	LevelProfileEnd   Level = 0x60
)

var levelNames = map[Level]string{
	LevelError:        "error",
	LevelWarning:      "warning",
	LevelInfo:         "info",
	LevelTrace:        "trace",
	LevelProfile:      "profile",
	LevelProfileBegin: "profile begin",
	LevelProfileEnd:   "profile end",
}

// Name returns the fixed text name of l, or "unknown".
func (l Level) Name() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return "unknown"
}

func (l Level) String() string { return l.Name() }

// ParseLevel maps a level name, including common aliases, to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "err", "fatal", "critical", "crit", "panic", "emergency", "alert":
		return LevelError, true
	case "warning", "warn":
		return LevelWarning, true
	case "info", "notice", "information":
		return LevelInfo, true
	case "trace", "debug":
		return LevelTrace, true
	case "profile":
		return LevelProfile, true
	case "profile begin", "profile_begin":
		return LevelProfileBegin, true
	case "profile end", "profile_end":
		return LevelProfileEnd, true
	}
	return 0, false
}

// Mask is a set of levels. The zero Mask accepts every level.
type Mask int

// MaskOf builds a Mask from levels.
func MaskOf(levels ...Level) Mask {
	var m Mask
	for _, l := range levels {
		m |= Mask(l)
	}
	return m
}

// Accepts reports whether l is in the mask.
func (m Mask) Accepts(l Level) bool {
	return m == 0 || int(m)&int(l) != 0
}
