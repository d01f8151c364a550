package bundle

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
)

// Resolver flattens an entry file's import graph into a single
// marker-annotated text stream. Resolution is depth-first in declaration
// order, so output order matches a pre-order left-to-right traversal of
// the graph. Cycles and missing files never abort the build: they leave an
// inline diagnostic and a partial result.
type Resolver struct {
	fsys    fs.FS
	layout  config.Layout
	log     *zap.Logger
	visited map[string]bool
}

// NewResolver creates a resolver reading sources from fsys, which is
// rooted at the styles root.
func NewResolver(fsys fs.FS, layout config.Layout, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{fsys: fsys, layout: layout, log: log.Named("resolver")}
}

// Resolve produces the flattened bundle text for the entry path. The fixed
// banner goes on top, outside any marker's scope. A result is always
// produced, even when every referenced file is absent.
func (r *Resolver) Resolve(entry string) string {
	r.visited = make(map[string]bool)

	var sb strings.Builder
	sb.WriteString(Banner())
	sb.WriteString("\n\n")
	r.resolveFile(&sb, normalize(entry))
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func (r *Resolver) resolveFile(sb *strings.Builder, p string) {
	if r.visited[p] {
		r.log.Warn("Circular import truncated", zap.String("file", p))
		sb.WriteString(diagnostic("circular import \"" + p + "\" skipped"))
		sb.WriteString("\n\n")
		return
	}
	r.visited[p] = true

	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		r.log.Warn("Import target not found", zap.String("file", p), zap.Error(err))
		sb.WriteString(diagnostic("unresolved import \"" + p + "\""))
		sb.WriteString("\n\n")
		return
	}

	nodes, err := css.Scan(data)
	if err != nil {
		// carry the file through verbatim, it is content even if we
		// cannot make sense of it
		r.log.Warn("Source file did not scan, keeping verbatim", zap.String("file", p), zap.Error(err))
		r.writeRawSpan(sb, p, string(data))
		return
	}

	var span []css.Node
	for _, n := range nodes {
		if !n.IsImport() {
			span = append(span, n)
			continue
		}
		r.writeSpan(sb, p, span)
		span = nil

		target := n.ImportTarget()
		if target == "" {
			r.log.Warn("Import without a target skipped", zap.String("file", p), zap.String("directive", n.Raw))
			continue
		}
		r.resolveFile(sb, normalize(path.Join(path.Dir(p), target)))
	}
	r.writeSpan(sb, p, span)
}

// writeSpan emits one marker followed by the span's content. Empty spans
// produce nothing, markers included.
func (r *Resolver) writeSpan(sb *strings.Builder, p string, span []css.Node) {
	if len(span) == 0 {
		return
	}
	parts := make([]string, 0, len(span))
	for _, n := range span {
		parts = append(parts, n.Raw)
	}
	r.writeRawSpan(sb, p, strings.Join(parts, "\n\n"))
}

func (r *Resolver) writeRawSpan(sb *strings.Builder, p, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	sb.WriteString(EncodeMarker(p))
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n\n")
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
