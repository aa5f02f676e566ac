// Package braille encodes four progress values as a row of 8-dot braille cells.
//
// Each of the ten cells covers 10 percentage points. Within a cell every track
// owns a left and a right dot, so a track fills in 5% half-steps once its value
// has been rounded to a multiple of 5.
package braille

import (
	"math"
	"strings"
)

const (
	// BaseCodepoint is U+2800 BRAILLE PATTERN BLANK. A cell's rune is the base
	// plus its dot mask.
	BaseCodepoint = 0x2800

	// Columns is the number of cells in an encoded bar.
	Columns = 10

	// ColumnWidth is the percentage span covered by one cell.
	ColumnWidth = 10

	// Step is the granularity values are rounded to before encoding.
	Step = 5
)

// Track identifies one of the four bars drawn in parallel.
type Track int

const (
	Track1 Track = iota + 1
	Track2
	Track3
	Track4
)

// Tracks lists every track in output order.
var Tracks = [4]Track{Track1, Track2, Track3, Track4}

// Dot bits as laid out by the Unicode braille block: bit n raises dot n+1.
const (
	Dot1 Cell = 1 << iota
	Dot2
	Dot3
	Dot4
	Dot5
	Dot6
	Dot7
	Dot8
)

// trackDots maps each track to its {left, right} dots. Tracks 1-3 use the
// six-dot rows; track 4 takes the extra bottom row. Kept as a literal table so
// the track 4 layout is never "normalized" into a formula.
var trackDots = [4][2]Cell{
	{Dot1, Dot4},
	{Dot2, Dot5},
	{Dot3, Dot6},
	{Dot7, Dot8},
}

// Dots returns the left and right dot bits owned by t.
func (t Track) Dots() (left, right Cell) {
	d := trackDots[t-1]
	return d[0], d[1]
}

// Cell is an 8-dot braille mask.
type Cell uint8

// Rune returns the braille character for the mask.
func (c Cell) Rune() rune {
	return BaseCodepoint + rune(c)
}

func (c Cell) String() string {
	return string(c.Rune())
}

// Round5 rounds n to the nearest multiple of 5. Halfway cases round away from
// zero (math.Round), so 12.5 becomes 15 and -12.5 becomes -15. Values outside
// 0-100 are not clamped.
func Round5(n float64) float64 {
	return Step * math.Round(n/Step)
}

// SubDots reports which of a track's two dots are raised in column col for an
// already rounded progress value.
//
// The left dot is on once progress passes the column start, the right dot once
// it reaches the column end. Landing exactly on the column end lights both.
func SubDots(progress float64, col int) (left, right bool) {
	lo := float64(col * ColumnWidth)
	hi := float64((col + 1) * ColumnWidth)

	left = progress > lo
	right = progress >= hi
	if progress == hi {
		left, right = true, true
	}
	return left, right
}

// Pack builds the cell for column col from four rounded progress values given
// in track order.
func Pack(col int, progress [4]float64) Cell {
	var c Cell
	for i, t := range Tracks {
		left, right := SubDots(progress[i], col)
		l, r := t.Dots()
		if left {
			c |= l
		}
		if right {
			c |= r
		}
	}
	return c
}

// Cells rounds the four values and packs all columns, column 0 first.
func Cells(p1, p2, p3, p4 float64) [Columns]Cell {
	progress := [4]float64{Round5(p1), Round5(p2), Round5(p3), Round5(p4)}

	var cells [Columns]Cell
	for col := range Columns {
		cells[col] = Pack(col, progress)
	}
	return cells
}

// Encode renders four percentages as a ten character braille bar.
func Encode(p1, p2, p3, p4 float64) string {
	cells := Cells(p1, p2, p3, p4)

	var b strings.Builder
	b.Grow(Columns * 3) // every braille rune is 3 bytes of UTF-8
	for _, c := range cells {
		b.WriteRune(c.Rune())
	}
	return b.String()
}

// EncodeValues is Encode over a track-ordered array.
func EncodeValues(v [4]float64) string {
	return Encode(v[0], v[1], v[2], v[3])
}
