package bundle_test

import (
	"errors"
	"strings"
	"testing"

	"cssb/bundle"
)

func TestSplit_ByMarkers(t *testing.T) {
	input := strings.Join([]string{
		bundle.Banner(),
		bundle.EncodeMarker("shared/global.css"),
		"body { margin: 0 }",
		bundle.EncodeMarker("widgets/header.css"),
		"[data-widget=\"header\"] { color: red }",
		"[data-widget=\"header\"] .x { top: 0 }",
		bundle.EncodeMarker("shared/global.css"),
		"p { margin: 0 }",
	}, "\n")

	res, err := bundle.NewSplitter(testLayout(), nil).Split([]byte(input), bundle.ModeAuto)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if !res.UsedMarkers {
		t.Error("expected marker mode")
	}
	if res.Files.Len() != 2 {
		t.Fatalf("expected 2 destinations, got %v", res.Files.Paths())
	}

	global := res.Files.Content("shared/global.css")
	if !strings.Contains(global, "body { margin: 0 }") || !strings.Contains(global, "p { margin: 0 }") {
		t.Errorf("split segments for the same file must concatenate:\n%s", global)
	}
	header := res.Files.Content("widgets/header.css")
	if !strings.Contains(header, "color: red") || !strings.Contains(header, "top: 0") {
		t.Errorf("widget content incomplete:\n%s", header)
	}

	want := []string{"shared/global.css", "widgets/header.css"}
	if len(res.ManifestImports) != 2 || res.ManifestImports[0] != want[0] || res.ManifestImports[1] != want[1] {
		t.Errorf("expected manifest imports %v, got %v", want, res.ManifestImports)
	}
}

func TestSplit_MarkerBeatsAnchor(t *testing.T) {
	// content marked for global stays there even when its selector names a
	// single widget
	input := strings.Join([]string{
		bundle.EncodeMarker("shared/global.css"),
		"[data-widget=\"header\"] { color: red }",
	}, "\n")

	res, err := bundle.NewSplitter(testLayout(), nil).Split([]byte(input), bundle.ModeAuto)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if !strings.Contains(res.Files.Content("shared/global.css"), "color: red") {
		t.Errorf("marked content routed by anchor instead of marker: %v", res.Files.Paths())
	}
	if res.Files.Content("widgets/header.css") != "" {
		t.Error("anchor routing must not fire while a marker destination is active")
	}
}

func TestSplit_EntryContentRegenerated(t *testing.T) {
	input := strings.Join([]string{
		bundle.EncodeMarker("main.css"),
		".stray { top: 0 }",
		bundle.EncodeMarker("shared/global.css"),
		"body { margin: 0 }",
	}, "\n")

	res, err := bundle.NewSplitter(testLayout(), nil).Split([]byte(input), bundle.ModeAuto)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	for _, p := range res.Files.Paths() {
		if strings.Contains(res.Files.Content(p), ".stray") {
			t.Errorf("entry-marked content must be dropped, found in %s", p)
		}
	}
	// the entry never imports itself
	for _, imp := range res.ManifestImports {
		if imp == "main.css" {
			t.Error("entry must not appear in its own regenerated imports")
		}
	}
}

func TestSplit_MarkersRequired(t *testing.T) {
	input := "[data-widget=\"header\"] { color: red }\n"

	_, err := bundle.NewSplitter(testLayout(), nil).Split([]byte(input), bundle.ModeMarkers)
	if !errors.Is(err, bundle.ErrNoMarkers) {
		t.Fatalf("expected ErrNoMarkers, got %v", err)
	}
}

func TestSplit_AutoFallsBackToAnchors(t *testing.T) {
	input := strings.Join([]string{
		"[data-widget=\"header\"] { color: red }",
		".plain { top: 0 }",
		"@keyframes spin { from { left: 0 } }",
	}, "\n\n")

	res, err := bundle.NewSplitter(testLayout(), nil).Split([]byte(input), bundle.ModeAuto)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if res.UsedMarkers {
		t.Error("markerless bundle must fall back to anchors")
	}
	if !strings.Contains(res.Files.Content("widgets/header.css"), "color: red") {
		t.Errorf("anchored rule misrouted: %v", res.Files.Paths())
	}
	global := res.Files.Content("shared/global.css")
	if !strings.Contains(global, ".plain") || !strings.Contains(global, "@keyframes") {
		t.Errorf("unanchored content must land in the global file:\n%s", global)
	}
	if len(res.ManifestImports) != 0 {
		t.Errorf("anchor mode regenerates no manifest, got %v", res.ManifestImports)
	}
}

func TestSplit_WholeInputQuarantine(t *testing.T) {
	input := "p { color:"

	res, err := bundle.NewSplitter(testLayout(), nil).Split([]byte(input), bundle.ModeAuto)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if res.Files.Len() != 1 || res.Files.Content("shared/quarantine.css") == "" {
		t.Fatalf("unparsable bundle must land in quarantine whole: %v", res.Files.Paths())
	}
	if !strings.Contains(res.Files.Content("shared/quarantine.css"), input) {
		t.Error("quarantined input must be verbatim")
	}
	if len(res.Warnings) == 0 {
		t.Error("whole-input quarantine must be reported")
	}
}

func TestSplit_MalformedConstructIsolated(t *testing.T) {
	input := strings.Join([]string{
		"[data-widget=\"header\"] { color: red }",
		"color: red;",
		".plain { top: 0 }",
	}, "\n")

	res, err := bundle.NewSplitter(testLayout(), nil).Split([]byte(input), bundle.ModeAnchors)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	q := res.Files.Content("shared/quarantine.css")
	if !strings.Contains(q, "color: red;") {
		t.Errorf("malformed construct must be quarantined:\n%s", q)
	}
	if strings.Contains(q, ".plain") || strings.Contains(q, "[data-widget") {
		t.Errorf("valid neighbors must not be quarantined:\n%s", q)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", res.Warnings)
	}
}

func TestRenderManifest(t *testing.T) {
	got := bundle.RenderManifest(testLayout(), []string{"shared/global.css", "widgets/header.css"})
	want := "@import \"shared/global.css\";\n@import \"widgets/header.css\";\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	nested := testLayout()
	nested.Entry = "styles/main.css"
	got = bundle.RenderManifest(nested, []string{"styles/shared/global.css"})
	if got != "@import \"shared/global.css\";\n" {
		t.Errorf("imports must be relative to the manifest, got %q", got)
	}
}
