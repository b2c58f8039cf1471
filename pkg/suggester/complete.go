package suggester

import (
	"unicode"
	"unicode/utf8"
)

// Complete returns the ghost completion for text against best: the part of
// best that follows a case-insensitive match of text, with best's original
// casing. ok is false when either string is empty or text is not a prefix of
// best, in which case no completion is shown.
func Complete(text, best string) (suffix string, ok bool) {
	if text == "" || best == "" {
		return "", false
	}
	n, ok := foldPrefixLen(best, text)
	if !ok {
		return "", false
	}
	return best[n:], true
}

// foldPrefixLen reports whether prefix is a case-insensitive prefix of s and,
// if so, how many bytes of s it covers.
func foldPrefixLen(s, prefix string) (int, bool) {
	i := 0
	for _, pr := range prefix {
		if i >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[i:])
		if sr != pr && unicode.ToLower(sr) != unicode.ToLower(pr) {
			return 0, false
		}
		i += size
	}
	return i, true
}
