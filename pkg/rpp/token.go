package rpp

import "strings"

// Quote characters accepted by the tokenizer. REAPER writes double quotes
// by default, falls back to single quotes for values containing double
// quotes, and to backticks for values containing both.
const quoteChars = "\"'`"

// Tokenize splits an RPP line into whitespace-separated tokens. A token
// beginning with a quote character runs to the matching close quote and is
// returned with the quotes stripped; an unterminated quote swallows the
// rest of the line.
func Tokenize(line string) []string {
	var tokens []string
	i := 0
	n := len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		if q := line[i]; strings.IndexByte(quoteChars, q) >= 0 {
			i++
			start := i
			for i < n && line[i] != q {
				i++
			}
			tokens = append(tokens, line[start:i])
			if i < n {
				i++ // closing quote
			}
			continue
		}
		start := i
		for i < n && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		tokens = append(tokens, line[start:i])
	}
	return tokens
}

// needsQuoting reports whether a parameter must be quoted when written.
// Empty values, whitespace, slashes and leading quote characters all force
// quoting, matching how REAPER itself escapes parameters.
func needsQuoting(p string) bool {
	if p == "" {
		return true
	}
	if strings.ContainsAny(p, " \t/") {
		return true
	}
	return strings.IndexByte(quoteChars, p[0]) >= 0
}

// quoteParam wraps p in the least intrusive quote kind. A value containing
// both double and single quotes is backtick-quoted; embedded backticks are
// then degraded to single quotes, which is the lossy corner REAPER shares.
func quoteParam(p string) string {
	if !needsQuoting(p) {
		return p
	}
	switch {
	case !strings.Contains(p, `"`):
		return `"` + p + `"`
	case !strings.Contains(p, "'"):
		return "'" + p + "'"
	default:
		return "`" + strings.ReplaceAll(p, "`", "'") + "`"
	}
}
