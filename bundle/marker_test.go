package bundle_test

import (
	"strings"
	"testing"

	"cssb/bundle"
)

func TestMarker_RoundTrip(t *testing.T) {
	for _, p := range []string{
		"shared/global.css",
		"widgets/header.css",
		"main.css",
	} {
		m := bundle.EncodeMarker(p)
		if strings.ContainsRune(m, '\n') {
			t.Errorf("marker for %q is not a single line: %q", p, m)
		}
		got, ok := bundle.DecodeMarker(m)
		if !ok {
			t.Fatalf("marker for %q did not decode: %q", p, m)
		}
		if got != p {
			t.Errorf("expected %q back, got %q", p, got)
		}
	}
}

func TestMarker_EncodeNormalizesPath(t *testing.T) {
	m := bundle.EncodeMarker("widgets//sub/../header.css")
	got, ok := bundle.DecodeMarker(m)
	if !ok || got != "widgets/header.css" {
		t.Errorf("expected normalized 'widgets/header.css', got %q (ok=%v)", got, ok)
	}
}

func TestDecodeMarker_Rejects(t *testing.T) {
	for _, comment := range []string{
		"/* plain comment */",
		"/* @file: */",
		"/* multi\nline @file: x.css */",
		"/*! banner */",
	} {
		if p, ok := bundle.DecodeMarker(comment); ok {
			t.Errorf("%q decoded unexpectedly to %q", comment, p)
		}
	}
}

func TestIsBanner(t *testing.T) {
	if !bundle.IsBanner(bundle.Banner()) {
		t.Error("generated banner not detected as banner")
	}
	if !bundle.IsBanner("/*! emphasized */") {
		t.Error("emphasized comment not detected as banner")
	}
	if bundle.IsBanner("/* ordinary note */") {
		t.Error("ordinary comment misdetected as banner")
	}
	if bundle.IsBanner(bundle.EncodeMarker("widgets/header.css")) {
		t.Error("file marker misdetected as banner")
	}
}
