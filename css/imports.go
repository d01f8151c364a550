package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// IsImport reports whether the node is an @import directive.
func (n Node) IsImport() bool {
	return n.Kind == NodeAtRule && n.Name == "@import"
}

// ImportTarget extracts the referenced path from an @import node.
// Handles: @import "p"; @import url("p"); @import url(p);
// Returns "" for anything else.
func (n Node) ImportTarget() string {
	if !n.IsImport() {
		return ""
	}
	l := css.NewLexer(parse.NewInput(bytes.NewReader([]byte(n.Raw))))
	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			return ""
		case css.StringToken:
			return unquote(string(text))
		case css.URLToken:
			s := string(text)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
}
