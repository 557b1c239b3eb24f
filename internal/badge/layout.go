package badge

// Layout bounds and defaults, in CSS pixels or percent.
const (
	PrimaryHeight = 80.0
	DefaultHeight = 70.0
	MinHeight     = 40.0
	MaxHeight     = 180.0
	HeightStep    = 2.0
	MaxWidth      = 240.0
	ZIndex        = 100

	gridColumns   = 3
	gridColumnGap = 18.0
	gridRowGap    = 20.0
	gridLeft      = 3.0
	gridMaxOffset = 90.0
)

// Layout is the placement of one badge on the card. XPercent is measured
// from the left edge and YPercent from the bottom edge. Width is never
// stored: it derives from the image aspect ratio.
type Layout struct {
	XPercent float64        `json:"xPercent" yaml:"xPercent"`
	YPercent float64        `json:"yPercent" yaml:"yPercent"`
	HeightPx float64        `json:"heightPx" yaml:"heightPx"`
	Colors   map[int]string `json:"colors" yaml:"colors"`
}

// DefaultLayout places slot on a three-column grid. Slot 0 is the primary
// badge and is taller.
func DefaultLayout(slot int) Layout {
	if slot < 0 {
		slot = 0
	}
	col := slot % gridColumns
	row := slot / gridColumns
	height := DefaultHeight
	if slot == 0 {
		height = PrimaryHeight
	}
	return Layout{
		XPercent: clamp(gridLeft+gridColumnGap*float64(col), 0, gridMaxOffset),
		YPercent: clamp(gridRowGap*float64(row), 0, gridMaxOffset),
		HeightPx: height,
		Colors:   map[int]string{},
	}
}

// clone returns a copy of l with its own color map.
func (l Layout) clone() Layout {
	colors := make(map[int]string, len(l.Colors))
	for k, v := range l.Colors {
		colors[k] = v
	}
	l.Colors = colors
	return l
}

// ClampHeight bounds h to the size control range. Zero or negative values
// select fallback.
func ClampHeight(h, fallback float64) float64 {
	if h <= 0 {
		h = fallback
	}
	return clamp(h, MinHeight, MaxHeight)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
