package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Attribute value extraction works on lexer tokens, not on raw selector
// text, so quoted strings, escapes and combinators cannot produce false
// matches. Only the exact '=' match operator counts - ~=, |= and friends
// name sets or prefixes, not a single owning value.

// AttributeValues returns every value of attribute selectors with the
// given key, in source order, across the whole selector list. Values are
// case sensitive; quote style is irrelevant.
func AttributeValues(selectorList, key string) []string {
	l := css.NewLexer(parse.NewInput(bytes.NewReader([]byte(selectorList))))

	const (
		stateNone = iota
		stateOpen  // saw '['
		stateKey   // saw '[' ident, ident == key
		stateEqual // saw '[' key '='
	)

	var values []string
	state := stateNone
	for {
		tt, text := l.Next()
		if tt == css.ErrorToken {
			return values
		}
		if tt == css.WhitespaceToken || tt == css.CommentToken {
			continue
		}
		switch state {
		case stateNone:
			if tt == css.LeftBracketToken {
				state = stateOpen
			}
		case stateOpen:
			if tt == css.IdentToken && string(text) == key {
				state = stateKey
			} else {
				state = stateNone
			}
		case stateKey:
			if tt == css.DelimToken && string(text) == "=" {
				state = stateEqual
			} else {
				state = stateNone
			}
		case stateEqual:
			switch tt {
			case css.StringToken:
				values = append(values, unquote(string(text)))
			case css.IdentToken:
				values = append(values, string(text))
			}
			state = stateNone
		}
	}
}

// DistinctAttributeValues returns the union of attribute values across the
// selector list, preserving first-seen order.
func DistinctAttributeValues(selectorList, key string) []string {
	var distinct []string
	seen := make(map[string]bool)
	for _, v := range AttributeValues(selectorList, key) {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	return distinct
}

// unquote removes surrounding quotes from a string token.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
