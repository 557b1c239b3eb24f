package badge

// Point is a pointer position in page coordinates.
type Point struct {
	X, Y float64
}

// Rect is a box in page coordinates.
type Rect struct {
	Left, Top, Width, Height float64
}

// Drag tracks one pointer drag of a badge. Every Move persists the new
// position immediately; End only closes the session.
type Drag struct {
	book   *Book
	active bool
	slot   int
	name   string
	offset Point
}

// NewDrag creates a drag tracker writing into book.
func NewDrag(book *Book) *Drag {
	return &Drag{book: book}
}

// Start begins dragging the badge whose current box is badge, grabbed at
// pointer.
func (d *Drag) Start(slot int, name string, pointer Point, badge Rect) {
	d.active = true
	d.slot = slot
	d.name = name
	d.offset = Point{X: pointer.X - badge.Left, Y: pointer.Y - badge.Top}
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}

// Move repositions the dragged badge so it stays inside container. The
// badge size is its rendered box; its height is clamped to
// [MinHeight, MaxHeight] and a zero height keeps the stored one.
// It returns the persisted layout and false when no drag is active.
func (d *Drag) Move(pointer Point, container Rect, badgeWidth, badgeHeight float64) (Layout, bool) {
	if !d.active || container.Width <= 0 || container.Height <= 0 {
		return Layout{}, false
	}

	left := pointer.X - d.offset.X - container.Left
	top := pointer.Y - d.offset.Y - container.Top
	left = max(0, min(left, container.Width-badgeWidth))
	top = max(0, min(top, container.Height-badgeHeight))

	l := d.book.Layout(d.slot, d.name)
	l.XPercent = left / container.Width * 100
	l.YPercent = (container.Height - (top + badgeHeight)) / container.Height * 100
	l.HeightPx = ClampHeight(badgeHeight, l.HeightPx)
	d.book.Set(d.slot, d.name, l)
	return d.book.Layout(d.slot, d.name), true
}

// End finishes the drag.
func (d *Drag) End() {
	d.active = false
}
