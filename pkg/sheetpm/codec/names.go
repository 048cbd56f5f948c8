package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxSheetNameLength is the xlsx limit on worksheet name length, in characters.
const MaxSheetNameLength = 31

// SanitizeSheetName rewrites name so the container accepts it:
// forbidden characters become '_', surrounding apostrophes and blanks
// are trimmed and the result is cut to MaxSheetNameLength characters.
// An empty result falls back to fallback.
func SanitizeSheetName(name, fallback string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	name = truncate(name, MaxSheetNameLength)
	if name == "" {
		return fallback
	}
	return name
}

// UniqueSheetNames sanitizes names and makes them unique without regard to case,
// suffixing later duplicates with " (2)", " (3)" and so on.
func UniqueSheetNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		base := SanitizeSheetName(n, fmt.Sprintf("Sheet%d", i+1))
		candidate := base
		for k := 2; used[strings.ToLower(candidate)]; k++ {
			suffix := fmt.Sprintf(" (%d)", k)
			candidate = truncate(base, MaxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
		}
		used[strings.ToLower(candidate)] = true
		out[i] = candidate
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
