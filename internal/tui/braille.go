package tui

// Each terminal cell holds a 2x4 grid of braille dots.
const (
	dotsX = 2
	dotsY = 4
)

// dotBits maps a dot position within a cell to its bit in the braille block.
var dotBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// brailleCanvas draws data-space lines onto a grid of braille cells.
type brailleCanvas struct {
	w, h int // in cells
	mask [][]uint8

	xmin, xmax float64
	ymin, ymax float64
	// invertY puts ymin at the top.
	invertY bool
}

func newBrailleCanvas(w, h int) *brailleCanvas {
	mask := make([][]uint8, h)
	for i := range mask {
		mask[i] = make([]uint8, w)
	}
	return &brailleCanvas{w: w, h: h, mask: mask}
}

// setRange fixes the data extents mapped onto the canvas.
func (b *brailleCanvas) setRange(xmin, xmax, ymin, ymax float64) {
	b.xmin, b.xmax, b.ymin, b.ymax = xmin, xmax, ymin, ymax
}

// setDot sets a dot at dot coordinates, ignoring anything off-canvas.
func (b *brailleCanvas) setDot(dx, dy int) {
	if dx < 0 || dy < 0 {
		return
	}
	cx, cy := dx/dotsX, dy/dotsY
	if cx >= b.w || cy >= b.h {
		return
	}
	b.mask[cy][cx] |= dotBits[dx%dotsX][dy%dotsY]
}

// toDots projects a data point onto dot coordinates.
func (b *brailleCanvas) toDots(x, y float64) (int, int) {
	dx := scaleTo(x, b.xmin, b.xmax, b.w*dotsX)
	dy := scaleTo(y, b.ymin, b.ymax, b.h*dotsY)
	if !b.invertY {
		dy = b.h*dotsY - 1 - dy
	}
	return dx, dy
}

// line joins two data points with Bresenham on the dot grid.
func (b *brailleCanvas) line(x0, y0, x1, y1 float64) {
	ax, ay := b.toDots(x0, y0)
	bx, by := b.toDots(x1, y1)
	dx := abs(bx - ax)
	sx := -1
	if ax < bx {
		sx = 1
	}
	dy := -abs(by - ay)
	sy := -1
	if ay < by {
		sy = 1
	}
	err := dx + dy
	for {
		b.setDot(ax, ay)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			ax += sx
		}
		if e2 <= dx {
			err += dx
			ay += sy
		}
	}
}

// polyline draws xs/ys, lifting the pen across non-finite values.
func (b *brailleCanvas) polyline(xs, ys []float64) {
	prev := -1
	for i := range xs {
		if i >= len(ys) || !finite(xs[i]) || !finite(ys[i]) {
			prev = -1
			continue
		}
		if prev < 0 {
			dx, dy := b.toDots(xs[i], ys[i])
			b.setDot(dx, dy)
		} else {
			b.line(xs[prev], ys[prev], xs[i], ys[i])
		}
		prev = i
	}
}

func (b *brailleCanvas) lines() []string {
	out := make([]string, b.h)
	for y := range b.mask {
		row := make([]rune, b.w)
		for x, bits := range b.mask[y] {
			if bits == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(bits))
			}
		}
		out[y] = string(row)
	}
	return out
}
