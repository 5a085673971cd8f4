package plugin

import "strings"

// NormalizeNewlines rewrites CRLF and bare CR line endings to LF so parser
// positions stay stable across platforms.
func NormalizeNewlines(src string) (string, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return strings.ReplaceAll(src, "\r", "\n"), nil
}

// StripComments removes /* ... */ comments from the source. Comment openers
// inside double-quoted string literals are left alone. The core parser has
// no comment support, so sources with comments run through this first.
func StripComments(src string) (string, error) {
	var b strings.Builder
	b.Grow(len(src))

	var inString, inComment bool
	for i := 0; i < len(src); i++ {
		c := src[i]

		if inComment {
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				inComment = false
				i++
			}
			continue
		}

		if inString {
			if c == '"' && (i == 0 || src[i-1] != '\\') {
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			inComment = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
