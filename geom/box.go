// Package geom computes the placement of boxes and points inside the
// slot of a categorical axis: dodging side by side, jittering and
// beeswarm layout. All positions are offsets from the slot center.
package geom

// Dodge returns the center offset and width of the i-th of n boxes placed
// side by side in a slot of the given width.
//
//	     +------------------- width -----------------+
//	n=3  |--------------|--------------|-------------|
//	n=4  |----------|----------|----------|----------|
func Dodge(n, i int, width float64) (offset, boxWidth float64) {
	if n <= 1 {
		return 0, width
	}
	boxWidth = width / float64(n)
	offset = -width/2 + (float64(i)+0.5)*boxWidth
	return offset, boxWidth
}

// Box is a rectangle in data coordinates.
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
}

// BarBox returns the rectangle of a bar from 0 to y, centered at x.
func BarBox(x, y, width float64) Box {
	b := Box{XMin: x - width/2, XMax: x + width/2}
	if y > 0 {
		b.YMin, b.YMax = 0, y
	} else {
		b.YMin, b.YMax = y, 0
	}
	return b
}
