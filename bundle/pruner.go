package bundle

import (
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
)

// Pruner removes vestigial content from a built bundle: rules with no
// declarations, at-rules left empty by that, file markers that no longer
// announce anything (or announce the wrong widget), and leftover one-line
// comments. It runs as a late bundling stage and never touches the
// resolver's output for files that still carry content.
type Pruner struct {
	layout config.Layout
	log    *zap.Logger
}

// NewPruner creates a pruner for the given layout.
func NewPruner(layout config.Layout, log *zap.Logger) *Pruner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{layout: layout, log: log.Named("pruner")}
}

// Prune applies the pruning passes in order and returns the rewritten
// bundle text.
func (p *Pruner) Prune(bundle string) (string, error) {
	nodes, err := css.Scan([]byte(bundle))
	if err != nil {
		return "", err
	}

	nodes = p.dropEmpty(nodes)         // passes 1+2, recursive
	nodes = p.dropStaleHeaders(nodes)  // pass 3
	nodes = p.dropLooseComments(nodes) // pass 4

	return render(nodes), nil
}

// dropEmpty removes declaration-less rules and at-rules whose remaining
// children carry no rule, at-rule or declaration. Conditional blocks are
// pruned from the inside out, so an @media holding only empty rules
// disappears entirely.
func (p *Pruner) dropEmpty(nodes []css.Node) []css.Node {
	kept := make([]css.Node, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n.Kind == css.NodeComment, n.Kind == css.NodeBad:
			kept = append(kept, n)

		case n.Kind == css.NodeRule:
			if css.HasDeclarations(n.Block()) {
				kept = append(kept, n)
			} else {
				p.log.Debug("Pruning empty rule", zap.String("selector", n.Prelude))
			}

		case !n.HasBlock():
			// @import / @charset statements are manifest material
			kept = append(kept, n)

		case n.IsConditional():
			if rebuilt, keep := p.pruneConditional(n); keep {
				kept = append(kept, rebuilt)
			}

		default:
			// @font-face, @keyframes and the rest live or die by their
			// own block content
			if css.HasDeclarations(n.Block()) {
				kept = append(kept, n)
			} else {
				p.log.Debug("Pruning empty at-rule", zap.String("name", n.Name))
			}
		}
	}
	return kept
}

func (p *Pruner) pruneConditional(n css.Node) (css.Node, bool) {
	inner, err := css.Scan([]byte(n.Block()))
	if err != nil {
		// not ours to judge, keep verbatim
		return n, true
	}
	pruned := p.dropEmpty(inner)

	substantive := 0
	for _, child := range pruned {
		if child.Kind != css.NodeComment {
			substantive++
		}
	}
	if substantive == 0 {
		p.log.Debug("Pruning empty conditional block", zap.String("name", n.Name))
		return css.Node{}, false
	}
	if len(pruned) == len(inner) {
		// nothing changed inside, keep original formatting
		return n, true
	}

	parts := make([]string, 0, len(pruned))
	for _, child := range pruned {
		parts = append(parts, child.Raw)
	}
	raw := n.BlockHeader() + " {\n" + strings.Join(parts, "\n\n") + "\n}"
	if rescanned, err := css.Scan([]byte(raw)); err == nil && len(rescanned) == 1 {
		return rescanned[0], true
	}
	return n, true
}

// dropStaleHeaders removes a file marker when nothing survives under it
// before the next marker, or when the rule that does follow is tagged with
// a widget value contradicting the marker's path. Either way the header
// would otherwise attach to the wrong content.
func (p *Pruner) dropStaleHeaders(nodes []css.Node) []css.Node {
	kept := make([]css.Node, 0, len(nodes))
	for i, n := range nodes {
		if n.Kind == css.NodeComment {
			if mp, ok := DecodeMarker(n.Raw); ok && p.headerIsStale(mp, nodes[i+1:]) {
				p.log.Debug("Pruning stale file marker", zap.String("file", mp))
				continue
			}
		}
		kept = append(kept, n)
	}
	return kept
}

func (p *Pruner) headerIsStale(markerPath string, rest []css.Node) bool {
	for _, n := range rest {
		if n.Kind == css.NodeComment {
			if _, ok := DecodeMarker(n.Raw); ok {
				// next header reached with no content in between
				return true
			}
			continue
		}

		expected, isWidget := p.layout.WidgetValue(markerPath)
		if !isWidget {
			return false
		}
		var values []string
		switch {
		case n.Kind == css.NodeRule:
			values = css.DistinctAttributeValues(n.Prelude, p.layout.Attribute)
		case n.IsConditional():
			preludes, err := n.NestedPreludes()
			if err != nil {
				return false
			}
			seen := make(map[string]bool)
			for _, prelude := range preludes {
				for _, v := range css.DistinctAttributeValues(prelude, p.layout.Attribute) {
					if !seen[v] {
						seen[v] = true
						values = append(values, v)
					}
				}
			}
		default:
			// a declaration-bearing at-rule carries no attribute to
			// contradict the header with
			return false
		}
		return len(values) == 1 && slug.Make(values[0]) != expected
	}
	return true
}

// dropLooseComments removes remaining single-line comments that are
// neither markers nor doc (/*!) comments.
func (p *Pruner) dropLooseComments(nodes []css.Node) []css.Node {
	kept := make([]css.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == css.NodeComment && !strings.ContainsRune(n.Raw, '\n') && !strings.HasPrefix(n.Raw, "/*!") {
			if _, ok := DecodeMarker(n.Raw); !ok {
				p.log.Debug("Pruning loose comment", zap.String("text", n.Raw))
				continue
			}
		}
		kept = append(kept, n)
	}
	return kept
}

// render joins nodes back into bundle text. A marker stays glued to the
// content it announces with a single newline; everything else is separated
// by a blank line.
func render(nodes []css.Node) string {
	var sb strings.Builder
	for i, n := range nodes {
		sb.WriteString(n.Raw)
		if i == len(nodes)-1 {
			break
		}
		if n.Kind == css.NodeComment {
			if _, ok := DecodeMarker(n.Raw); ok {
				sb.WriteString("\n")
				continue
			}
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
