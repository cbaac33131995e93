package ingest

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// SplitDropped parses the text a terminal emits when files are dropped on it
// into individual paths. Terminals differ: some separate paths with newlines,
// some with spaces and backslash-escape the spaces inside names, some quote
// each path, and a few send file:// URLs. All of these are handled.
func SplitDropped(content string) []string {
	var paths []string
	for _, line := range strings.Split(content, "\n") {
		for _, tok := range tokenize(strings.TrimSpace(line)) {
			if p := normalizePath(tok); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// tokenize splits a line on unquoted, unescaped whitespace.
func tokenize(line string) []string {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
		inTok  bool
		escape bool
	)

	flush := func() {
		if inTok {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inTok = false
		}
	}

	for _, r := range line {
		switch {
		case escape:
			cur.WriteRune(r)
			escape = false
		case r == '\\' && quote != '\'':
			escape = true
			inTok = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inTok = true
		case r == ' ' || r == '\t' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	flush()

	return tokens
}

func normalizePath(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}

	if strings.HasPrefix(tok, "file://") {
		u, err := url.Parse(tok)
		if err != nil || u.Path == "" {
			return ""
		}
		return filepath.FromSlash(u.Path)
	}

	if tok == "~" || strings.HasPrefix(tok, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(tok, "~"))
		}
	}

	return tok
}
