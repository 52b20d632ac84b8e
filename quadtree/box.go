package quadtree

// Box is an axis-aligned bounding box. Edges are inclusive.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Centered builds a box of the given size around (cx, cy).
func Centered(cx, cy, w, h float64) Box {
	hw, hh := w/2, h/2
	return Box{MinX: cx - hw, MinY: cy - hh, MaxX: cx + hw, MaxY: cy + hh}
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Intersects reports whether the two boxes overlap or touch.
func (b Box) Intersects(o Box) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX &&
		b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Contains reports whether o lies entirely inside b.
func (b Box) Contains(o Box) bool {
	return o.MinX >= b.MinX && o.MaxX <= b.MaxX &&
		o.MinY >= b.MinY && o.MaxY <= b.MaxY
}

// quadrants splits b into NW, NE, SW, SE.
func (b Box) quadrants() [4]Box {
	mx := b.MinX + b.Width()/2
	my := b.MinY + b.Height()/2
	return [4]Box{
		{MinX: b.MinX, MinY: b.MinY, MaxX: mx, MaxY: my},
		{MinX: mx, MinY: b.MinY, MaxX: b.MaxX, MaxY: my},
		{MinX: b.MinX, MinY: my, MaxX: mx, MaxY: b.MaxY},
		{MinX: mx, MinY: my, MaxX: b.MaxX, MaxY: b.MaxY},
	}
}
