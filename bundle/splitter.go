package bundle

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
)

// ErrNoMarkers is returned by Split in marker mode when the bundle carries
// no file markers at all. Callers must opt into anchor fallback
// deliberately, this is never done silently.
var ErrNoMarkers = errors.New("bundle contains no file markers")

// SplitMode selects how bundle content is attributed to source files.
type SplitMode int

const (
	ModeAuto    SplitMode = iota // markers when present, anchors otherwise
	ModeMarkers                  // markers required
	ModeAnchors                  // structural attribute routing only
)

func (m SplitMode) String() string {
	switch m {
	case ModeMarkers:
		return "markers"
	case ModeAnchors:
		return "anchors"
	default:
		return "auto"
	}
}

// ParseSplitMode parses a mode name as given on the command line.
func ParseSplitMode(s string) (SplitMode, error) {
	switch s {
	case "", "auto":
		return ModeAuto, nil
	case "markers":
		return ModeMarkers, nil
	case "anchors":
		return ModeAnchors, nil
	}
	return ModeAuto, errors.New("unknown unbundle mode: " + s)
}

// Segments is an ordered multi-map from destination path to reconstructed
// content chunks. Keys keep first-encounter order; chunks for the same
// path are concatenated with a blank line between them. Append-only.
type Segments struct {
	order  []string
	chunks map[string][]string
}

func newSegments() *Segments {
	return &Segments{chunks: make(map[string][]string)}
}

func (s *Segments) add(path, chunk string) {
	if _, ok := s.chunks[path]; !ok {
		s.order = append(s.order, path)
	}
	s.chunks[path] = append(s.chunks[path], chunk)
}

// Paths returns destination paths in first-encounter order.
func (s *Segments) Paths() []string {
	return s.order
}

// Len returns the number of distinct destinations.
func (s *Segments) Len() int {
	return len(s.order)
}

// Content returns the reconstructed file content for a destination.
func (s *Segments) Content(path string) string {
	chunks, ok := s.chunks[path]
	if !ok {
		return ""
	}
	return strings.Join(chunks, "\n\n") + "\n"
}

// Result is the outcome of splitting one bundle.
type Result struct {
	Files           *Segments
	ManifestImports []string // regenerated entry imports, marker mode only
	UsedMarkers     bool
	Warnings        []string
}

// Splitter reconstructs the source mapping from flattened bundle text.
// It composes two routers: a marker state machine (destination unset /
// destination active) and an anchor router used while no destination has
// been set.
type Splitter struct {
	layout  config.Layout
	anchors *AnchorRouter
	log     *zap.Logger
}

// NewSplitter creates a splitter for the given layout.
func NewSplitter(layout config.Layout, log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{
		layout:  layout,
		anchors: NewAnchorRouter(layout, log),
		log:     log.Named("splitter"),
	}
}

// Split parses the bundle and maps every top-level node back to a source
// file. A bundle-wide scan failure quarantines the whole input verbatim;
// a single malformed node never aborts the pass.
func (s *Splitter) Split(data []byte, mode SplitMode) (*Result, error) {
	res := &Result{Files: newSegments()}

	nodes, err := css.Scan(data)
	if err != nil {
		s.log.Warn("Bundle did not scan, quarantining whole input", zap.Error(err))
		res.Files.add(s.layout.QuarantineFile, strings.TrimRight(string(data), "\n"))
		res.Warnings = append(res.Warnings, "bundle failed to parse: "+err.Error())
		return res, nil
	}

	haveMarkers := false
	for _, n := range nodes {
		if n.Kind == css.NodeComment {
			if _, ok := DecodeMarker(n.Raw); ok {
				haveMarkers = true
				break
			}
		}
	}

	switch mode {
	case ModeMarkers:
		if !haveMarkers {
			return nil, ErrNoMarkers
		}
	case ModeAuto:
		if !haveMarkers {
			s.log.Info("No file markers found, falling back to anchor routing")
			s.splitByAnchors(nodes, res)
			return res, nil
		}
	case ModeAnchors:
		s.splitByAnchors(nodes, res)
		return res, nil
	}

	s.splitByMarkers(nodes, res)
	return res, nil
}

// splitByMarkers runs the destination state machine: a decoded marker
// switches the active destination, a banner is dropped, everything else is
// appended verbatim to the active destination's segment. Nodes seen before
// the first marker fall through to anchor classification.
func (s *Splitter) splitByMarkers(nodes []css.Node, res *Result) {
	res.UsedMarkers = true

	seenImport := make(map[string]bool)
	current := ""
	for _, n := range nodes {
		if n.Kind == css.NodeComment {
			if p, ok := DecodeMarker(n.Raw); ok {
				current = p
				if p != s.layout.Entry && !seenImport[p] {
					seenImport[p] = true
					res.ManifestImports = append(res.ManifestImports, p)
				}
				continue
			}
			if IsBanner(n.Raw) {
				continue
			}
		}
		switch {
		case current == "":
			s.applyAnchor(n, res)
		case current == s.layout.Entry:
			// manifest content is regenerated, never replayed
			s.log.Debug("Dropping content marked for the entry manifest", zap.String("node", n.Kind.String()))
		default:
			res.Files.add(current, n.Raw)
		}
	}
}

func (s *Splitter) splitByAnchors(nodes []css.Node, res *Result) {
	for _, n := range nodes {
		s.applyAnchor(n, res)
	}
}

func (s *Splitter) applyAnchor(n css.Node, res *Result) {
	d := s.anchors.Route(n)
	switch {
	case d.Drop, d.Pass:
		// banners and manifest-level directives contribute nothing
	default:
		if d.Quarantine {
			res.Warnings = append(res.Warnings, d.Warning)
		}
		res.Files.add(d.Path, n.Raw)
	}
}

// RenderManifest renders a regenerated entry manifest: one import per
// destination, relative to the manifest's own location. Hand-authored
// ordering and comments are deliberately not preserved.
func RenderManifest(layout config.Layout, imports []string) string {
	base := strings.TrimSuffix(layout.Entry, "/")
	baseDir := filepath.ToSlash(filepath.Dir(base))

	var sb strings.Builder
	for _, p := range imports {
		rel := p
		if baseDir != "." {
			if r, err := filepath.Rel(baseDir, p); err == nil {
				rel = filepath.ToSlash(r)
			}
		}
		sb.WriteString("@import \"" + rel + "\";\n")
	}
	return sb.String()
}
