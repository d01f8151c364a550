package bundle

import (
	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
)

// Decision is the outcome of classifying one top-level node.
// At most one of Path/Drop/Pass is meaningful: a non-empty Path routes the
// node there, Drop discards it, Pass leaves it to the manifest (never
// duplicated into a content file).
type Decision struct {
	Path       string
	Drop       bool
	Pass       bool
	Quarantine bool
	Warning    string
}

// AnchorRouter classifies nodes of a markerless bundle by the structural
// attribute embedded in their selectors. Classification is a pure function
// of the node's own selector set; surrounding context is never consulted.
type AnchorRouter struct {
	layout config.Layout
	log    *zap.Logger
}

// NewAnchorRouter creates a router for the given layout.
func NewAnchorRouter(layout config.Layout, log *zap.Logger) *AnchorRouter {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnchorRouter{layout: layout, log: log.Named("anchor-router")}
}

// Route decides the destination for a single node.
//
// Rules route by the union of distinct attribute values across the whole
// selector list: exactly one value means the node belongs to that widget's
// file, anything else (zero or several) belongs to the shared global file.
// @media/@supports route as one indivisible unit by the aggregate of their
// nested selectors. Other at-rules go to the global file unconditionally,
// except @import/@charset which pass through. Banners and machine markers
// are dropped; ordinary comments go to the global file.
func (a *AnchorRouter) Route(n css.Node) Decision {
	switch n.Kind {
	case css.NodeBad:
		a.log.Warn("Malformed construct, quarantining", zap.String("text", n.Raw))
		return Decision{
			Path:       a.layout.QuarantineFile,
			Quarantine: true,
			Warning:    "malformed construct: " + n.Raw,
		}

	case css.NodeComment:
		if IsBanner(n.Raw) {
			return Decision{Drop: true}
		}
		if _, ok := DecodeMarker(n.Raw); ok {
			// stray machine token in a hand-fed bundle, not content
			return Decision{Drop: true}
		}
		return Decision{Path: a.layout.GlobalFile}

	case css.NodeRule:
		return a.routeByValues(css.DistinctAttributeValues(n.Prelude, a.layout.Attribute))

	case css.NodeAtRule:
		switch {
		case n.Name == "@import" || n.Name == "@charset":
			return Decision{Pass: true}
		case n.IsConditional():
			preludes, err := n.NestedPreludes()
			if err != nil {
				a.log.Warn("Conditional block failed processing, quarantining", zap.String("name", n.Name), zap.Error(err))
				return Decision{
					Path:       a.layout.QuarantineFile,
					Quarantine: true,
					Warning:    "failed to process " + n.Name + " block: " + err.Error(),
				}
			}
			union := make([]string, 0, 2)
			seen := make(map[string]bool)
			for _, prelude := range preludes {
				for _, v := range css.DistinctAttributeValues(prelude, a.layout.Attribute) {
					if !seen[v] {
						seen[v] = true
						union = append(union, v)
					}
				}
			}
			return a.routeByValues(union)
		default:
			// @keyframes, @font-face and the rest are shared by nature
			return Decision{Path: a.layout.GlobalFile}
		}
	}
	return Decision{Path: a.layout.GlobalFile}
}

func (a *AnchorRouter) routeByValues(values []string) Decision {
	if len(values) == 1 {
		return Decision{Path: a.layout.WidgetFile(values[0])}
	}
	return Decision{Path: a.layout.GlobalFile}
}
