package models

// BoundingBox is a face rectangle in pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

func (b BoundingBox) Area() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

func (b BoundingBox) Empty() bool {
	return b.Area() == 0
}

// Clip restricts the box to a width x height image, keeping at least one pixel.
func (b BoundingBox) Clip(width, height int) BoundingBox {
	x := clampInt(b.X, 0, width-1)
	y := clampInt(b.Y, 0, height-1)
	return BoundingBox{
		X:      x,
		Y:      y,
		Width:  clampInt(b.Width, 1, width-x),
		Height: clampInt(b.Height, 1, height-y),
	}
}

// Expand grows the box by ratio of its larger side on every edge and clips it.
func (b BoundingBox) Expand(ratio float64, width, height int) BoundingBox {
	side := b.Width
	if b.Height > side {
		side = b.Height
	}
	pad := int(ratio * float64(side))
	x1 := max(0, b.X-pad)
	y1 := max(0, b.Y-pad)
	x2 := min(width, b.X+b.Width+pad)
	y2 := min(height, b.Y+b.Height+pad)
	return BoundingBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}.Clip(width, height)
}

// IoU is the intersection over union of two boxes.
func (b BoundingBox) IoU(o BoundingBox) float64 {
	x1 := max(b.X, o.X)
	y1 := max(b.Y, o.Y)
	x2 := min(b.X+b.Width, o.X+o.Width)
	y2 := min(b.Y+b.Height, o.Y+o.Height)
	if x1 >= x2 || y1 >= y2 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// HeadPose holds head rotation in degrees.
type HeadPose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
