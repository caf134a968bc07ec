package session

import (
	"net/url"
	"runtime"
	"strings"
)

// ParseDrop splits text pasted into a terminal by a file-manager drag into
// individual paths.
//
// Terminals differ in how they paste dropped files, so all of these are
// accepted and may be mixed:
//
//	/home/me/a.pdf /home/me/b.pdf        space separated
//	'/home/me/my file.pdf'               single or double quoted
//	/home/me/my\ file.pdf                backslash escaped
//	file:///home/me/my%20file.pdf        file URIs, one per line
//
// A quote only opens at the start of a path or right after a closing quote,
// so an apostrophe inside an unquoted path such as /home/me/O'Brien.pdf is
// kept literally. Empty tokens are dropped. On Windows backslashes are path separators, not
// escapes.
func ParseDrop(text string) []string {
	return parseDrop(text, runtime.GOOS != "windows")
}

func parseDrop(text string, backslashEscapes bool) []string {
	var (
		paths   []string
		cur     strings.Builder
		quote   rune
		inToken bool
		closed  bool // the previous rune ended a quoted section
	)
	flush := func() {
		if inToken {
			if p := normalizeDropped(cur.String()); p != "" {
				paths = append(paths, p)
			}
		}
		cur.Reset()
		inToken = false
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		opensQuote := (r == '\'' || r == '"') && (!inToken || closed)
		closed = false
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				closed = true
				continue
			}
			if r == '\\' && quote == '"' && backslashEscapes && i+1 < len(runes) {
				i++
				r = runes[i]
			}
			cur.WriteRune(r)
		case opensQuote:
			quote = r
			inToken = true
		case r == '\\' && backslashEscapes && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return paths
}

// normalizeDropped converts file URIs to plain paths.
func normalizeDropped(token string) string {
	if !strings.HasPrefix(token, "file://") {
		return token
	}
	u, err := url.Parse(token)
	if err != nil || (u.Host != "" && u.Host != "localhost") {
		return token
	}
	p := u.Path
	// file:///C:/dir/x.pdf
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return p
}

// QuotePath renders p so that ParseDrop reads it back as a single path.
func QuotePath(p string) string {
	if p != "" && !strings.ContainsAny(p, " \t\r\n'\"\\") {
		return p
	}
	if !strings.Contains(p, "'") {
		return "'" + p + "'"
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range p {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
