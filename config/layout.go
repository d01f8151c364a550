package config

import (
	"path"
	"strings"

	"github.com/gosimple/slug"
)

// Layout describes the source tree shape the bundler operates on. All
// paths are slash-separated and relative to the styles root, so the same
// value works against os.DirFS and in-memory test trees alike. Components
// receive a Layout explicitly instead of reaching for process-wide
// constants.
type Layout struct {
	Entry          string // entry manifest, e.g. "main.css"
	SharedDir      string // shared/global sources, e.g. "shared"
	WidgetsDir     string // per-widget sources, e.g. "widgets"
	GlobalFile     string // destination for unattributed content
	QuarantineFile string // destination for unroutable content
	Attribute      string // structural attribute key, e.g. "data-widget"
}

// Layout derives the routing layout from styles configuration.
func (c *StylesConfig) Layout() Layout {
	return Layout{
		Entry:          path.Clean(c.Entry),
		SharedDir:      path.Clean(c.SharedDir),
		WidgetsDir:     path.Clean(c.WidgetsDir),
		GlobalFile:     path.Clean(c.GlobalFile),
		QuarantineFile: path.Clean(c.QuarantineFile),
		Attribute:      c.Attribute,
	}
}

// WidgetFile maps a structural attribute value to its source file path.
// Values pass through slug.Make so arbitrary attribute values always yield
// a writable file name, deterministically.
func (l Layout) WidgetFile(value string) string {
	return path.Join(l.WidgetsDir, slug.Make(value)+".css")
}

// WidgetValue is the inverse of WidgetFile: for a path inside the widgets
// directory it returns the file's value stem. Used by the pruner to match
// stale headers against the rules that follow them.
func (l Layout) WidgetValue(p string) (string, bool) {
	p = path.Clean(p)
	if path.Dir(p) != l.WidgetsDir || !strings.HasSuffix(p, ".css") {
		return "", false
	}
	return strings.TrimSuffix(path.Base(p), ".css"), true
}
