package viz

import (
	"image"
	"image/color"
	"image/color/palette"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const blank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid. Each cell carries the ink of the last
// dot set in it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Ink           [][]colorful.Color
	inked         [][]bool
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Ink:    make([][]colorful.Color, h),
		inked:  make([][]bool, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Ink[i] = make([]colorful.Color, w)
		c.inked[i] = make([]bool, w)
	}
	c.Clear()
	return c
}

// Dots is the canvas size in sub-pixels.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set sets a dot at sub-pixel (x, y) and inks its cell.
func (c *Canvas) Set(x, y int, ink colorful.Color) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Ink[row][col] = ink
	c.inked[row][col] = true
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.inked[i][j] = false
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, ink colorful.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, ink)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DashedHLine draws a horizontal dashed line at dot row y.
func (c *Canvas) DashedHLine(y, on, off int, ink colorful.Color) {
	w, _ := c.Dots()
	period := max(1, on+off)
	for x := 0; x < w; x++ {
		if x%period < on {
			c.Set(x, y, ink)
		}
	}
}

// project maps data coordinates onto dots using the layout window.
func (c *Canvas) project(l render.Layout, t, x float64) (int, int) {
	w, h := c.Dots()
	px, py := l.Project(t, x, float64(w-1), float64(h-1))
	return int(math.Round(px)), int(math.Round(py))
}

// Guide draws the dashed carrying-capacity line.
func (c *Canvas) Guide(l render.Layout, ink colorful.Color) {
	_, y := c.project(l, l.XMin, l.K)
	c.DashedHLine(y, 3, 2, ink)
}

// Plot draws a curve as connected segments in its own colour.
func (c *Canvas) Plot(l render.Layout, cv family.Curve) {
	first := true
	var px, py int
	for t, x := range cv.All() {
		if math.IsNaN(x) {
			first = true
			continue
		}
		nx, ny := c.project(l, t, x)
		if first {
			c.Set(nx, ny, cv.Color)
			first = false
		} else {
			c.DrawLine(px, py, nx, ny, cv.Color)
		}
		px, py = nx, ny
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render is String with each cell coloured by its ink.
func (c *Canvas) Render() string {
	styles := map[string]lipgloss.Style{}
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if !c.inked[i][j] || r == blank {
				b.WriteRune(r)
				continue
			}
			hex := c.Ink[i][j].Hex()
			st, ok := styles[hex]
			if !ok {
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
				styles[hex] = st
			}
			b.WriteString(st.Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Image rasterises the canvas, one charW x charH block per cell, onto the
// Plan9 palette.
func (c *Canvas) Image(charW, charH int, bg colorful.Color) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), palette.Plan9)
	pal := color.Palette(palette.Plan9)
	bgIdx := uint8(pal.Index(bg.Clamped()))
	for i := range img.Pix {
		img.Pix[i] = bgIdx
	}

	dotW, dotH := max(1, charW/2), max(1, charH/4)
	index := map[colorful.Color]uint8{}
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - blank)
			if pattern == 0 {
				continue
			}
			ink := c.Ink[row][col]
			idx, ok := index[ink]
			if !ok {
				idx = uint8(pal.Index(ink.Clamped()))
				index[ink] = idx
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					x0, y0 := col*charW+dx*dotW, row*charH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(x0+px, y0+py, idx)
						}
					}
				}
			}
		}
	}
	return img
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
