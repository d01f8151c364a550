package css_test

import (
	"strings"
	"testing"

	"cssb/css"
)

func TestScan_TopLevelNodes(t *testing.T) {
	input := "p { color: red }\n\n/* note */\n@media screen { .a { left: 0 } }\n@import \"a.css\";\n"

	nodes, err := css.Scan([]byte(input))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}

	if nodes[0].Kind != css.NodeRule {
		t.Errorf("node 0: expected rule, got %s", nodes[0].Kind)
	}
	if nodes[0].Prelude != "p" {
		t.Errorf("node 0: expected prelude 'p', got %q", nodes[0].Prelude)
	}
	if nodes[1].Kind != css.NodeComment || nodes[1].Raw != "/* note */" {
		t.Errorf("node 1: expected comment '/* note */', got %s %q", nodes[1].Kind, nodes[1].Raw)
	}
	if nodes[2].Kind != css.NodeAtRule || nodes[2].Name != "@media" {
		t.Errorf("node 2: expected @media at-rule, got %s %q", nodes[2].Kind, nodes[2].Name)
	}
	if nodes[3].Kind != css.NodeAtRule || !nodes[3].IsImport() {
		t.Errorf("node 3: expected @import, got %s %q", nodes[3].Kind, nodes[3].Name)
	}

	// every node's raw text must be a verbatim slice of the input
	for i, n := range nodes {
		if !strings.Contains(input, n.Raw) {
			t.Errorf("node %d raw is not verbatim input text: %q", i, n.Raw)
		}
	}
}

func TestScan_NestedPreludes(t *testing.T) {
	input := "@media screen { .a { left: 0 } @supports (gap: 0) { .b, .c { top: 0 } } }"

	nodes, err := css.Scan([]byte(input))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(nodes) != 1 || !nodes[0].IsConditional() {
		t.Fatalf("expected one conditional at-rule, got %+v", nodes)
	}

	preludes, err := nodes[0].NestedPreludes()
	if err != nil {
		t.Fatalf("nested preludes failed: %v", err)
	}
	want := []string{".a", ".b, .c"}
	if len(preludes) != len(want) {
		t.Fatalf("expected %d preludes, got %d: %v", len(want), len(preludes), preludes)
	}
	for i := range want {
		if preludes[i] != want[i] {
			t.Errorf("prelude %d: expected %q, got %q", i, want[i], preludes[i])
		}
	}
}

func TestScan_MalformedConstructIsolated(t *testing.T) {
	input := "color: red; .x { top: 0 }"

	nodes, err := css.Scan([]byte(input))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].Kind != css.NodeBad {
		t.Errorf("expected malformed node first, got %s", nodes[0].Kind)
	}
	if nodes[0].Raw != "color: red;" {
		t.Errorf("malformed raw not preserved: %q", nodes[0].Raw)
	}
	if nodes[1].Kind != css.NodeRule || nodes[1].Prelude != ".x" {
		t.Errorf("valid rule after malformed construct was lost: %+v", nodes[1])
	}
}

func TestScan_UnterminatedBlockFails(t *testing.T) {
	if _, err := css.Scan([]byte("p { color: red")); err == nil {
		t.Error("expected unterminated rule to fail the scan")
	}
	if _, err := css.Scan([]byte("@media screen { p { color: red }")); err == nil {
		t.Error("expected unterminated at-rule to fail the scan")
	}
}

func TestScan_ImportTarget(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`@import "a.css";`, "a.css"},
		{`@import 'b.css';`, "b.css"},
		{`@import url("c.css");`, "c.css"},
		{`@import url(d.css);`, "d.css"},
	}
	for _, tc := range tests {
		nodes, err := css.Scan([]byte(tc.input))
		if err != nil {
			t.Fatalf("scan of %q failed: %v", tc.input, err)
		}
		if len(nodes) != 1 {
			t.Fatalf("expected 1 node for %q, got %d", tc.input, len(nodes))
		}
		if got := nodes[0].ImportTarget(); got != tc.want {
			t.Errorf("%q: expected target %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestHasDeclarations(t *testing.T) {
	tests := []struct {
		block string
		want  bool
	}{
		{"", false},
		{"  \n\t ", false},
		{" /* only a comment */ ", false},
		{" ; ; ", false},
		{"color: red", true},
		{"/* c */ color: red;", true},
	}
	for _, tc := range tests {
		if got := css.HasDeclarations(tc.block); got != tc.want {
			t.Errorf("HasDeclarations(%q): expected %v, got %v", tc.block, tc.want, got)
		}
	}
}

func TestNode_BlockAccessors(t *testing.T) {
	nodes, err := css.Scan([]byte("@media print { p { margin: 0 } }"))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	n := nodes[0]
	if !n.HasBlock() {
		t.Fatal("expected a block")
	}
	if n.BlockHeader() != "@media print" {
		t.Errorf("expected header '@media print', got %q", n.BlockHeader())
	}
	if strings.TrimSpace(n.Block()) != "p { margin: 0 }" {
		t.Errorf("unexpected block content: %q", n.Block())
	}
}
