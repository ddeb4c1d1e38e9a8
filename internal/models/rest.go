package models

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultRestSeconds is used when a set carries no usable rest prescription.
const DefaultRestSeconds = 60

// restRe matches the first "<integer><unit>" in free text such as "Rest 90s",
// "Rest 2 min" or "Rest 45". Longer unit spellings come first so that the
// alternation does not stop at a one-letter prefix.
var restRe = regexp.MustCompile(`(?i)(\d+)\s*(seconds|second|secs|sec|s|minutes|minute|mins|min|m)?`)

// ParseRestSeconds extracts a rest duration in seconds from free text.
// A missing unit means seconds. Zero or unparsable input returns false.
func ParseRestSeconds(rest string) (int, bool) {
	if rest == "" {
		return 0, false
	}
	m := restRe.FindStringSubmatch(rest)
	if m == nil {
		return 0, false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value <= 0 {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "m") {
		return value * 60, true
	}
	return value, true
}

// RestDuration resolves the rest for a set: explicit RestSeconds when positive,
// otherwise the parsed Rest text, otherwise DefaultRestSeconds.
func (s ProgramSetSchema) RestDuration() int {
	if s.RestSeconds != nil && *s.RestSeconds > 0 {
		return *s.RestSeconds
	}
	if v, ok := ParseRestSeconds(s.Rest); ok {
		return v
	}
	return DefaultRestSeconds
}
