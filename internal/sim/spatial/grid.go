// Package spatial provides the uniform-grid broadphase for collision
// detection.
//
// The grid stores entity indices (not pointers) in preallocated cells to
// minimize GC pressure and maximize cache locality, and is rebuilt from
// scratch every tick: cells are cleared, never reallocated, and only
// resized when the world dimensions change.
package spatial

import (
	"math"
)

// Grid partitions a rectangular region into bins of fixed size.
//
// Each entity is inserted into every bin its radius-padded bounding box
// overlaps, so a pair of nearby entities can co-occupy several bins. Pair
// enumeration stays exactly-once via cell ownership: a pair is emitted
// only from the bin containing the pair's radius-weighted midpoint, which
// is unique and symmetric under argument order.
//
// Cells are stored in row-major order (cells[row*cols+col]).
type Grid struct {
	binSize    float64
	invBinSize float64
	minX, minY float64
	cols, rows int
	cells      [][]uint32
}

// NewGrid creates a grid covering the rectangle with origin (minX, minY)
// and the given extent. binSize should be at least the diameter of the
// largest entity so a pair's midpoint bin always sees both members.
func NewGrid(minX, minY, width, height, binSize float64) *Grid {
	g := &Grid{
		binSize:    binSize,
		invBinSize: 1.0 / binSize,
		minX:       minX,
		minY:       minY,
	}
	g.resize(width, height)
	return g
}

func (g *Grid) resize(width, height float64) {
	cols := int(math.Ceil(width * g.invBinSize))
	rows := int(math.Ceil(height * g.invBinSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == g.cols && rows == g.rows && g.cells != nil {
		return
	}
	g.cols = cols
	g.rows = rows
	cells := make([][]uint32, cols*rows)
	for i := range cells {
		cells[i] = make([]uint32, 0, 4)
	}
	g.cells = cells
}

// Resize adjusts the grid to a new extent, reallocating bins only when
// the cell count actually changes.
func (g *Grid) Resize(minX, minY, width, height float64) {
	g.minX = minX
	g.minY = minY
	g.resize(width, height)
}

// Clear resets all cells without deallocating underlying memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// cellRange returns the inclusive bin range overlapped by the box
// [x0,x1]x[y0,y1], clamped to the grid extents.
func (g *Grid) cellRange(x0, y0, x1, y1 float64) (minCol, minRow, maxCol, maxRow int) {
	minCol = int(math.Floor((x0 - g.minX) * g.invBinSize))
	maxCol = int(math.Floor((x1 - g.minX) * g.invBinSize))
	minRow = int(math.Floor((y0 - g.minY) * g.invBinSize))
	maxRow = int(math.Floor((y1 - g.minY) * g.invBinSize))

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}
	return
}

// cellIndex maps a point to its clamped bin index. Clamping keeps
// off-grid midpoints owned by the nearest edge bin, consistent with the
// clamped insertion range.
func (g *Grid) cellIndex(x, y float64) int {
	col := int(math.Floor((x - g.minX) * g.invBinSize))
	row := int(math.Floor((y - g.minY) * g.invBinSize))

	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}

// InsertCircle adds an entity index to every bin its radius-padded
// bounding box overlaps.
func (g *Grid) InsertCircle(id uint32, x, y, radius float64) {
	minCol, minRow, maxCol, maxRow := g.cellRange(x-radius, y-radius, x+radius, y+radius)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.cells[idx] = append(g.cells[idx], id)
		}
	}
}

// Circle reports an inserted entity's center and radius back to the
// grid during pair enumeration.
type Circle func(id uint32) (x, y, radius float64)

// ForEachPair enumerates every unordered candidate pair exactly once.
//
// Within each bin, every unordered pair is considered; the pair is
// emitted only if its radius-weighted midpoint
//
//	m = (a.pos*b.r + b.pos*a.r) / (a.r + b.r)
//
// falls inside this bin. Since the midpoint is deterministic and
// symmetric, exactly one of the bins the pair co-occupies claims it.
func (g *Grid) ForEachPair(circle Circle, fn func(a, b uint32)) {
	for idx, cell := range g.cells {
		for i := 0; i < len(cell); i++ {
			ax, ay, ar := circle(cell[i])
			for j := i + 1; j < len(cell); j++ {
				bx, by, br := circle(cell[j])
				rsum := ar + br
				mx := (ax*br + bx*ar) / rsum
				my := (ay*br + by*ar) / rsum
				if g.cellIndex(mx, my) == idx {
					fn(cell[i], cell[j])
				}
			}
		}
	}
}

// Stats returns occupancy statistics for debugging and profiling.
func (g *Grid) Stats() GridStats {
	var total, maxInCell, nonEmpty int
	for _, cell := range g.cells {
		n := len(cell)
		total += n
		if n > maxInCell {
			maxInCell = n
		}
		if n > 0 {
			nonEmpty++
		}
	}
	return GridStats{
		TotalCells:    len(g.cells),
		NonEmptyCells: nonEmpty,
		TotalEntries:  total,
		MaxInCell:     maxInCell,
	}
}

// GridStats contains grid occupancy statistics.
type GridStats struct {
	TotalCells    int
	NonEmptyCells int
	TotalEntries  int
	MaxInCell     int
}

// Dimensions returns the grid dimensions.
func (g *Grid) Dimensions() (cols, rows int, binSize float64) {
	return g.cols, g.rows, g.binSize
}
