// Package css splits stylesheet text into top-level nodes suitable for
// routing and pruning. Unlike a full AST parser it never rewrites anything:
// every node carries the verbatim byte range it was scanned from, so
// serialization is exact by construction.
package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// NodeKind discriminates top-level stylesheet constructs.
type NodeKind int

const (
	NodeRule    NodeKind = iota // selector list + declaration block
	NodeAtRule                  // @-rule, with or without a block
	NodeComment                 // /* ... */
	NodeBad                     // malformed top-level construct, raw text preserved
)

func (k NodeKind) String() string {
	switch k {
	case NodeRule:
		return "rule"
	case NodeAtRule:
		return "at-rule"
	case NodeComment:
		return "comment"
	case NodeBad:
		return "malformed"
	default:
		return "unknown"
	}
}

// Node is a single top-level stylesheet construct.
type Node struct {
	Kind    NodeKind
	Raw     string // verbatim source text of the node
	Prelude string // rule only: selector list text before the block
	Name    string // at-rule only: lowercased name including '@'

	blockStart int // index in Raw of the opening brace, -1 when none
}

// HasBlock reports whether the node carries a {} block.
func (n Node) HasBlock() bool {
	return n.blockStart >= 0
}

// BlockHeader returns the trimmed node text before the opening brace: the
// selector list of a rule, or the name and params of an at-rule.
func (n Node) BlockHeader() string {
	if n.blockStart < 0 {
		return strings.TrimSpace(n.Raw)
	}
	return strings.TrimSpace(n.Raw[:n.blockStart])
}

// Block returns the node's inner block text without the surrounding braces.
func (n Node) Block() string {
	if n.blockStart < 0 {
		return ""
	}
	inner := n.Raw[n.blockStart+1:]
	inner = strings.TrimSuffix(inner, "}")
	return inner
}

// Scan splits stylesheet text into top-level nodes. Whitespace and stray
// semicolons between nodes are dropped; everything else is preserved
// verbatim inside the returned nodes. An unterminated block or a lexer
// failure aborts the whole scan - callers treat that as an unparseable
// input, not as a partial result.
func Scan(data []byte) ([]Node, error) {
	s := &scanner{
		lexer: css.NewLexer(parse.NewInput(bytes.NewReader(data))),
		data:  data,
	}
	return s.run()
}

type scanner struct {
	lexer *css.Lexer
	data  []byte
	pos   int
}

// next advances the lexer keeping byte position in sync with the input.
func (s *scanner) next() (css.TokenType, []byte) {
	tt, text := s.lexer.Next()
	s.pos += len(text)
	return tt, text
}

func (s *scanner) run() ([]Node, error) {
	nodes := make([]Node, 0)
	for {
		start := s.pos
		tt, text := s.next()
		switch tt {
		case css.ErrorToken:
			if errors.Is(s.lexer.Err(), io.EOF) {
				return nodes, nil
			}
			return nil, fmt.Errorf("stylesheet scan failed at offset %d: %w", start, s.lexer.Err())
		case css.WhitespaceToken, css.SemicolonToken:
			// not attributable to any node
		case css.CommentToken:
			nodes = append(nodes, Node{Kind: NodeComment, Raw: string(s.data[start:s.pos]), blockStart: -1})
		case css.AtKeywordToken:
			node, err := s.scanAtRule(start, string(text))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		default:
			node, err := s.scanRule(start)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
	}
}

// scanAtRule consumes an @-rule that either ends with a semicolon
// (@import, @charset) or with a balanced block (@media, @font-face, ...).
func (s *scanner) scanAtRule(start int, name string) (Node, error) {
	node := Node{Kind: NodeAtRule, Name: strings.ToLower(name), blockStart: -1}
	depth := 0
	for {
		tokStart := s.pos
		tt, _ := s.next()
		switch tt {
		case css.ErrorToken:
			return node, fmt.Errorf("unterminated %s at offset %d: %w", name, start, scanErr(s.lexer.Err()))
		case css.SemicolonToken:
			if depth == 0 {
				node.Raw = string(s.data[start:s.pos])
				return node, nil
			}
		case css.LeftBraceToken:
			if depth == 0 {
				node.blockStart = tokStart - start
			}
			depth++
		case css.RightBraceToken:
			depth--
			if depth == 0 {
				node.Raw = string(s.data[start:s.pos])
				return node, nil
			}
			if depth < 0 {
				return node, fmt.Errorf("unbalanced block in %s at offset %d", name, tokStart)
			}
		}
	}
}

// scanRule consumes a qualified rule: selector list up to the opening
// brace, then a balanced declaration block. A construct that terminates
// before any block opens (stray declaration, trailing garbage) comes back
// as a single bad node so one malformed construct never takes down the
// scan of everything around it.
func (s *scanner) scanRule(start int) (Node, error) {
	node := Node{Kind: NodeRule, blockStart: -1}
	depth := 0
	for {
		tokStart := s.pos
		tt, _ := s.next()
		switch tt {
		case css.ErrorToken:
			if depth == 0 && errors.Is(s.lexer.Err(), io.EOF) {
				node.Kind = NodeBad
				node.Raw = strings.TrimSpace(string(s.data[start:s.pos]))
				return node, nil
			}
			return node, fmt.Errorf("unterminated rule at offset %d: %w", start, scanErr(s.lexer.Err()))
		case css.SemicolonToken:
			if depth == 0 {
				node.Kind = NodeBad
				node.Raw = string(s.data[start:s.pos])
				return node, nil
			}
		case css.LeftBraceToken:
			if depth == 0 {
				node.blockStart = tokStart - start
				node.Prelude = strings.TrimSpace(string(s.data[start:tokStart]))
			}
			depth++
		case css.RightBraceToken:
			depth--
			if depth == 0 {
				node.Raw = string(s.data[start:s.pos])
				return node, nil
			}
			if depth < 0 {
				return node, fmt.Errorf("unbalanced block in rule at offset %d", tokStart)
			}
		}
	}
}

func scanErr(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return errors.New("unexpected end of input")
	}
	return err
}

// conditional at-rules group nested rules and are routed as one unit
var conditionalAtRules = map[string]bool{
	"@media":    true,
	"@supports": true,
}

// IsConditional reports whether the at-rule groups nested rules
// (@media/@supports) rather than carrying declarations of its own.
func (n Node) IsConditional() bool {
	return n.Kind == NodeAtRule && conditionalAtRules[n.Name]
}

// NestedPreludes collects selector lists of all rules nested inside a
// conditional at-rule, descending through nested conditionals. The at-rule
// is always treated as one indivisible unit by callers, so only the
// aggregate matters.
func (n Node) NestedPreludes() ([]string, error) {
	if !n.IsConditional() || !n.HasBlock() {
		return nil, nil
	}
	return nestedPreludes(n)
}

func nestedPreludes(n Node) ([]string, error) {
	inner, err := Scan([]byte(n.Block()))
	if err != nil {
		return nil, fmt.Errorf("scan of %s block failed: %w", n.Name, err)
	}
	var preludes []string
	for _, child := range inner {
		switch {
		case child.Kind == NodeRule:
			preludes = append(preludes, child.Prelude)
		case child.IsConditional():
			nested, err := nestedPreludes(child)
			if err != nil {
				return nil, err
			}
			preludes = append(preludes, nested...)
		}
	}
	return preludes, nil
}

// HasDeclarations reports whether block text contains anything besides
// whitespace, comments and stray semicolons. For a plain rule block that
// means at least one declaration.
func HasDeclarations(block string) bool {
	l := css.NewLexer(parse.NewInput(bytes.NewReader([]byte(block))))
	for {
		switch tt, _ := l.Next(); tt {
		case css.ErrorToken:
			return false
		case css.WhitespaceToken, css.CommentToken, css.SemicolonToken:
			// keep looking
		default:
			return true
		}
	}
}
