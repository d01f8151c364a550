// Package bundle implements the bundling and unbundling core: flattening a
// modular stylesheet tree into one marker-annotated artifact and splitting
// such an artifact (or a legacy one without markers) back into sources.
package bundle

import (
	"path"
	"path/filepath"
	"strings"

	"cssb/misc"
)

// File markers are inert comments that tie a span of bundle content to the
// source file it came from. The format is a wire contract: encode and
// decode must stay bit-exact or round-tripping breaks.
//
//	/* 📄 @file: widgets/header.css — ⚠️ Keep this comment */
const (
	markerOpen    = "/* \U0001F4C4 " // 📄
	markerKeyword = "@file:"
	markerClose   = " — ⚠️ Keep this comment */" // — ⚠️
)

// EncodeMarker renders the file marker comment for a source path. The path
// is normalized to slash-separated form relative to the styles root.
func EncodeMarker(p string) string {
	return markerOpen + markerKeyword + " " + path.Clean(filepath.ToSlash(p)) + markerClose
}

// DecodeMarker extracts the source path from a marker comment. Comments
// without the keyword, without a path token right after it, or spanning
// multiple lines do not decode.
func DecodeMarker(comment string) (string, bool) {
	if strings.ContainsRune(comment, '\n') {
		return "", false
	}
	_, rest, found := strings.Cut(comment, markerKeyword)
	if !found {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	p := fields[0]
	if p == "" || p == "—" || strings.HasSuffix(p, "*/") {
		return "", false
	}
	return path.Clean(p), true
}

// Banner returns the fixed comment block prepended to every built bundle.
// It is build metadata, never file content: the splitter drops it and the
// pruner keeps it (doc comment).
func Banner() string {
	return "/*!\n" +
		" * " + misc.GetAppName() + " v" + misc.GetVersion() + " — generated stylesheet bundle\n" +
		" * Source files are delimited by @file markers. Do not edit this file\n" +
		" * directly: edit the sources and rebuild, or run the unbundle command.\n" +
		" */"
}

// IsBanner reports whether a comment looks like a build banner: an
// emphasized (/*!) comment or anything carrying the version tag.
func IsBanner(comment string) bool {
	return strings.HasPrefix(comment, "/*!") ||
		strings.Contains(comment, misc.GetAppName()+" v")
}

// Inline diagnostics are emitted into the built artifact instead of
// aborting it. They use the emphasized comment form so the pruner keeps
// them and the splitter discards them with the banner.
func diagnostic(msg string) string {
	return "/*! " + misc.GetAppName() + ": " + msg + " */"
}
