// Package badge manages the overlay badges placed on a product card: their
// layouts (position, size, colors), pointer dragging, SVG recoloring and
// intrinsic sizing.
package badge
