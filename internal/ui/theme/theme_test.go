package theme

import (
	"image/color"
	"testing"
)

func TestAlertColor(t *testing.T) {
	cases := []struct {
		style string
		want  color.Color
	}{
		{"success", Success},
		{"warning", Warning},
		{"danger", Danger},
		{"info", Primary},
		{"", Primary},
	}
	for _, tc := range cases {
		if got := AlertColor(tc.style); got != tc.want {
			t.Errorf("AlertColor(%q) = %v, want %v", tc.style, got, tc.want)
		}
	}
}
