package extract

import (
	"strings"
)

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes adds
// despite instructions. The trailing fence is trimmed only when a leading one
// was removed; a fence appearing mid-prose must not truncate the reply.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)

	if !strings.HasPrefix(s, "```") {
		return s
	}
	idx := strings.Index(s, "\n")
	if idx == -1 {
		return s
	}
	s = strings.TrimSpace(s[idx+1:])

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced top-level {...} span in s.
// It tracks string literals and escapes so braces inside string values do not
// skew the depth count; a regex cannot do this correctly. When the model
// concatenates several top-level objects, only the first is returned.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
