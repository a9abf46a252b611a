package pyramid

import (
	"fmt"
	"image"
	"math"
)

// Region is a rectangle in the pixel grid of the tier whose downsample is
// Downsample. The zero downsample is read as 1, the full resolution.
type Region struct {
	Top        float64
	Left       float64
	Width      float64
	Height     float64
	Downsample float64
}

// NewRegion returns a region at full resolution.
func NewRegion(top, left, width, height float64) Region {
	return Region{top, left, width, height, 1}
}

// Right is the exclusive right edge.
func (r Region) Right() float64 {
	return r.Left + r.Width
}

// Bottom is the exclusive bottom edge.
func (r Region) Bottom() float64 {
	return r.Top + r.Height
}

func (r Region) downsample() float64 {
	if r.Downsample == 0 {
		return 1
	}
	return r.Downsample
}

// Clip returns the part of the region inside a width x height frame.
func (r Region) Clip(width, height float64) Region {
	right := math.Min(r.Right(), width)
	bottom := math.Min(r.Bottom(), height)
	c := r
	c.Top = math.Max(0, r.Top)
	c.Left = math.Max(0, r.Left)
	c.Width = math.Max(0, right-c.Left)
	c.Height = math.Max(0, bottom-c.Top)
	return c
}

// ClipTo returns the part of the region inside the tier bounds.
func (r Region) ClipTo(t Tier) Region {
	return r.Clip(float64(t.Width), float64(t.Height))
}

// Equal reports whether both regions cover the same rectangle at the same
// downsample. A zero downsample equals 1.
func (r Region) Equal(o Region) bool {
	return r.Top == o.Top && r.Left == o.Left &&
		r.Width == o.Width && r.Height == o.Height &&
		r.downsample() == o.downsample()
}

// Inside reports whether the region lies within the tier bounds.
func (r Region) Inside(t Tier) bool {
	return r.ClipTo(t).Equal(r)
}

// ScaleTo reprojects the region onto the pixel grid of the tier with the
// given downsample, rounding to the nearest pixel.
func (r Region) ScaleTo(downsample float64) Region {
	f := r.downsample() / downsample
	return Region{
		Top:        math.Round(r.Top * f),
		Left:       math.Round(r.Left * f),
		Width:      math.Round(r.Width * f),
		Height:     math.Round(r.Height * f),
		Downsample: downsample,
	}
}

// Rect returns the integer rectangle covered by the region.
func (r Region) Rect() image.Rectangle {
	left := int(math.Round(r.Left))
	top := int(math.Round(r.Top))
	return image.Rect(left, top, left+int(math.Round(r.Width)), top+int(math.Round(r.Height)))
}

func (r Region) String() string {
	return fmt.Sprintf("region(top=%v, left=%v, width=%v, height=%v, downsample=%v)",
		r.Top, r.Left, r.Width, r.Height, r.downsample())
}
