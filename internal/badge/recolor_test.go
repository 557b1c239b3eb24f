package badge

import (
	"encoding/base64"
	"reflect"
	"strings"
	"testing"
)

const sampleSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50">
  <defs><linearGradient id="g"><stop offset="0" stop-color="#123456"/></linearGradient></defs>
  <rect width="100" height="50" fill="#fff" stroke="rgb(230, 91, 12)"/>
  <circle cx="10" cy="10" r="5" fill="url(#g)"/>
  <path d="M0 0L10 10" fill="none" stroke="#FFFFFF"/>
  <g fill="red"><text fill='black'>Bio</text></g>
  <ellipse fill="hsl(0, 0%, 0%)"/>
</svg>`

func TestNormalizeColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "#e65b0c", want: "#E65B0C", wantOK: true},
		{in: "#abc", want: "#AABBCC", wantOK: true},
		{in: "rgb(230, 91, 12)", want: "#E65B0C", wantOK: true},
		{in: "rgba(0,0,0,0.5)", want: "#000000", wantOK: true},
		{in: "rgb(300,0,0)", want: "#FF0000", wantOK: true},
		{in: "White", want: "#FFFFFF", wantOK: true},
		{in: " #FFF ", want: "#FFFFFF", wantOK: true},
		{in: "hsl(0, 0%, 0%)", wantOK: false},
		{in: "#abcd", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := NormalizeColor(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NormalizeColor(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractColors(t *testing.T) {
	t.Parallel()

	got := ExtractColors(sampleSVG)
	want := []string{"#FFFFFF", "#E65B0C", "#FF0000", "#000000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractColors() = %q, want %q", got, want)
	}
}

func TestApplyColors(t *testing.T) {
	t.Parallel()

	out := ApplyColors(sampleSVG, map[int]string{0: "#60191A", 3: "#B5DBE8", 9: "#111111"})

	if !strings.Contains(out, `fill="#60191A" stroke="rgb(230, 91, 12)"`) {
		t.Errorf("slot 0 fill not replaced:\n%s", out)
	}
	if !strings.Contains(out, `fill="none" stroke="#60191A"`) {
		t.Errorf("every occurrence of slot 0 should be replaced:\n%s", out)
	}
	if !strings.Contains(out, `<text fill='#B5DBE8'>`) {
		t.Errorf("single quoted slot 3 not replaced:\n%s", out)
	}
	if !strings.Contains(out, `viewBox="0 0 100 50"`) || !strings.Contains(out, "<linearGradient") {
		t.Errorf("SVG casing not preserved:\n%s", out)
	}
	if !strings.Contains(out, `fill="url(#g)"`) || !strings.Contains(out, `stop-color="#123456"`) {
		t.Errorf("non paint values touched:\n%s", out)
	}
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("prolog lost:\n%s", out)
	}

	// Unknown slots and empty overrides leave the markup untouched.
	if got := ApplyColors(sampleSVG, map[int]string{42: "#000000"}); got != sampleSVG {
		t.Error("out of range slot changed the markup")
	}
	if got := ApplyColors(sampleSVG, nil); got != sampleSVG {
		t.Error("nil overrides changed the markup")
	}
}

func TestApplyColors_PreservesUntouchedMarkup(t *testing.T) {
	t.Parallel()

	// Recoloring to the same values is a byte-for-byte no-op apart from
	// the hex normalization of the replaced attributes.
	svg := `<svg viewBox="0 0 1 1"><path fill="#FF0000" d="M0 0"/><!-- c --><style>.a>b{}</style></svg>`
	got := ApplyColors(svg, map[int]string{0: "#FF0000"})
	if got != svg {
		t.Errorf("ApplyColors() = %q, want %q", got, svg)
	}
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	uri := DataURI("<svg/>")
	const prefix = "data:image/svg+xml;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("DataURI() = %q", uri)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil || string(decoded) != "<svg/>" {
		t.Errorf("decoded = %q, %v", decoded, err)
	}
}
