package config_test

import (
	"testing"

	"cssb/config"
)

func TestLayout_WidgetFile(t *testing.T) {
	l := config.Layout{WidgetsDir: "widgets"}

	tests := []struct {
		value string
		want  string
	}{
		{"header", "widgets/header.css"},
		{"My Widget!", "widgets/my-widget.css"},
		{"Åre", "widgets/are.css"},
	}
	for _, tc := range tests {
		if got := l.WidgetFile(tc.value); got != tc.want {
			t.Errorf("WidgetFile(%q): expected %q, got %q", tc.value, tc.want, got)
		}
	}
}

func TestLayout_WidgetValue(t *testing.T) {
	l := config.Layout{WidgetsDir: "widgets"}

	if v, ok := l.WidgetValue("widgets/header.css"); !ok || v != "header" {
		t.Errorf("expected (header, true), got (%q, %v)", v, ok)
	}
	for _, p := range []string{"shared/global.css", "widgets/sub/x.css", "widgets/readme.txt"} {
		if _, ok := l.WidgetValue(p); ok {
			t.Errorf("%q misidentified as a widget file", p)
		}
	}
}
