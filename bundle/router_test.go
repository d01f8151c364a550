package bundle_test

import (
	"testing"

	"cssb/bundle"
	"cssb/config"
	"cssb/css"
)

func testLayout() config.Layout {
	return config.Layout{
		Entry:          "main.css",
		SharedDir:      "shared",
		WidgetsDir:     "widgets",
		GlobalFile:     "shared/global.css",
		QuarantineFile: "shared/quarantine.css",
		Attribute:      "data-widget",
	}
}

func scanOne(t *testing.T, input string) css.Node {
	t.Helper()
	nodes, err := css.Scan([]byte(input))
	if err != nil {
		t.Fatalf("scan of %q failed: %v", input, err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node for %q, got %d", input, len(nodes))
	}
	return nodes[0]
}

func TestRoute_Rules(t *testing.T) {
	router := bundle.NewAnchorRouter(testLayout(), nil)

	tests := []struct {
		input string
		want  string
	}{
		// single owning value, widget file
		{`[data-widget="header"] { color: red }`, "widgets/header.css"},
		{`div[data-widget="nav"]:hover > span { top: 0 }`, "widgets/nav.css"},
		// repeats of the same value still count once
		{`[data-widget="header"] .a, [data-widget="header"] .b { top: 0 }`, "widgets/header.css"},
		// no anchor, global
		{`.plain { top: 0 }`, "shared/global.css"},
		// two distinct values, global
		{`[data-widget="a"] .x, [data-widget="b"] .y { top: 0 }`, "shared/global.css"},
		// arbitrary value slugged into a file name
		{`[data-widget="My Widget!"] { top: 0 }`, "widgets/my-widget.css"},
	}
	for _, tc := range tests {
		d := router.Route(scanOne(t, tc.input))
		if d.Drop || d.Pass || d.Quarantine || d.Path != tc.want {
			t.Errorf("%q: expected path %q, got %+v", tc.input, tc.want, d)
		}
	}
}

func TestRoute_ConditionalsAreIndivisible(t *testing.T) {
	router := bundle.NewAnchorRouter(testLayout(), nil)

	// every nested selector names the same widget, the block follows it
	d := router.Route(scanOne(t, `@media screen { [data-widget="nav"] { top: 0 } [data-widget="nav"] .x { left: 0 } }`))
	if d.Path != "widgets/nav.css" {
		t.Errorf("single-widget @media: expected widgets/nav.css, got %+v", d)
	}

	// mixed ownership inside one block, whole block goes global
	d = router.Route(scanOne(t, `@media screen { [data-widget="nav"] { top: 0 } .plain { left: 0 } }`))
	if d.Path != "shared/global.css" {
		t.Errorf("mixed @media: expected shared/global.css, got %+v", d)
	}
}

func TestRoute_AtRules(t *testing.T) {
	router := bundle.NewAnchorRouter(testLayout(), nil)

	if d := router.Route(scanOne(t, `@keyframes spin { from { left: 0 } }`)); d.Path != "shared/global.css" {
		t.Errorf("@keyframes: expected shared/global.css, got %+v", d)
	}
	if d := router.Route(scanOne(t, `@font-face { font-family: x }`)); d.Path != "shared/global.css" {
		t.Errorf("@font-face: expected shared/global.css, got %+v", d)
	}
	if d := router.Route(scanOne(t, `@import "a.css";`)); !d.Pass {
		t.Errorf("@import: expected pass-through, got %+v", d)
	}
	if d := router.Route(scanOne(t, `@charset "utf-8";`)); !d.Pass {
		t.Errorf("@charset: expected pass-through, got %+v", d)
	}
}

func TestRoute_Comments(t *testing.T) {
	router := bundle.NewAnchorRouter(testLayout(), nil)

	if d := router.Route(scanOne(t, bundle.EncodeMarker("widgets/header.css"))); !d.Drop {
		t.Errorf("machine marker: expected drop, got %+v", d)
	}
	if d := router.Route(scanOne(t, "/*! license */")); !d.Drop {
		t.Errorf("banner: expected drop, got %+v", d)
	}
	if d := router.Route(scanOne(t, "/* hand-written note */")); d.Path != "shared/global.css" {
		t.Errorf("plain comment: expected shared/global.css, got %+v", d)
	}
}

func TestRoute_MalformedQuarantined(t *testing.T) {
	router := bundle.NewAnchorRouter(testLayout(), nil)

	nodes, err := css.Scan([]byte("color: red; .x { top: 0 }"))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	d := router.Route(nodes[0])
	if !d.Quarantine || d.Path != "shared/quarantine.css" {
		t.Errorf("malformed node: expected quarantine, got %+v", d)
	}
	if d.Warning == "" {
		t.Error("quarantine decision must carry a warning")
	}
}
