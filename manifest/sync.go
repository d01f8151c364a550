// Package manifest keeps the entry manifest and the on-disk source set in
// agreement. It only ever reports drift; mutation happens on explicit
// request and is limited to appending imports for unreferenced files.
package manifest

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"cssb/config"
)

// Report is the outcome of one manifest/disk comparison. Paths are
// slash-separated and relative to the styles root.
type Report struct {
	Valid    []string // imports whose files exist on disk
	Orphaned []string // imports whose files are gone
	Missing  []string // on-disk files no import references
}

// InSync reports whether declared imports and the on-disk set agree.
func (r Report) InSync() bool {
	return len(r.Orphaned) == 0 && len(r.Missing) == 0
}

// ScanImports extracts import paths from manifest text by direct textual
// scan, one line at a time. Paths are returned as written, relative to the
// manifest itself.
func ScanImports(text string) []string {
	var imports []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "@import") {
			continue
		}
		if p := importPath(strings.TrimPrefix(line, "@import")); p != "" {
			imports = append(imports, p)
		}
	}
	return imports
}

// importPath pulls the referenced path out of an import statement body:
// "p", 'p', url("p"), url(p).
func importPath(rest string) string {
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ";"))
	if inner, ok := strings.CutPrefix(rest, "url("); ok {
		rest = strings.TrimSuffix(strings.TrimSpace(inner), ")")
		rest = strings.TrimSpace(rest)
	}
	if len(rest) >= 2 && (rest[0] == '"' || rest[0] == '\'') && rest[len(rest)-1] == rest[0] {
		return rest[1 : len(rest)-1]
	}
	return ""
}

// Diff compares the manifest's declared imports against the files actually
// present under the shared and widgets subtrees. Subdirectories are not
// recursed into.
func Diff(fsys fs.FS, layout config.Layout) (Report, error) {
	var rpt Report

	data, err := fs.ReadFile(fsys, layout.Entry)
	if err != nil {
		return rpt, err
	}

	entryDir := path.Dir(layout.Entry)
	imported := make(map[string]bool)
	for _, imp := range ScanImports(string(data)) {
		resolved := path.Clean(path.Join(entryDir, imp))
		imported[resolved] = true
		if _, err := fs.Stat(fsys, resolved); err == nil {
			rpt.Valid = append(rpt.Valid, resolved)
		} else {
			rpt.Orphaned = append(rpt.Orphaned, resolved)
		}
	}

	for _, dir := range []string{layout.SharedDir, layout.WidgetsDir} {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			// an absent subtree simply contributes no files
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".css") {
				continue
			}
			p := path.Join(dir, e.Name())
			if !imported[p] {
				rpt.Missing = append(rpt.Missing, p)
			}
		}
	}
	sort.Sort(natural.StringSlice(rpt.Missing))

	return rpt, nil
}

// Repair appends one import statement per missing path to the manifest,
// preserving everything already there. Orphaned imports are left alone -
// removing them is a human decision.
func Repair(manifestText string, layout config.Layout, missing []string) string {
	var sb strings.Builder
	sb.WriteString(manifestText)
	if manifestText != "" && !strings.HasSuffix(manifestText, "\n") {
		sb.WriteString("\n")
	}

	entryDir := path.Dir(layout.Entry)
	for _, p := range missing {
		rel := p
		if entryDir != "." {
			if r, ok := strings.CutPrefix(p, entryDir+"/"); ok {
				rel = r
			}
		}
		sb.WriteString("@import \"" + rel + "\";\n")
	}
	return sb.String()
}
