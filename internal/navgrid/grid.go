// Package navgrid provides a reference worldview.PathPlanner: an A* grid
// planner over the XZ plane, with deterministic path handles and the
// sentinel-waypoint-while-computing contract the locomotion core requires.
package navgrid

import (
	"container/heap"
	"math"

	"rtscore/internal/vecmath"
)

// CellSize is the world-unit size of one navigation grid cell.
const CellSize = 32.0

type cell struct {
	col, row int
	cost     float64
	diagonal bool
}

var neighborOffsets = [...]cell{
	{col: 0, row: -1, cost: 1, diagonal: false},
	{col: 1, row: 0, cost: 1, diagonal: false},
	{col: 0, row: 1, cost: 1, diagonal: false},
	{col: -1, row: 0, cost: 1, diagonal: false},
	{col: 1, row: -1, cost: math.Sqrt2, diagonal: true},
	{col: 1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: -1, cost: math.Sqrt2, diagonal: true},
}

// Grid is the static walkability layer: which cells are passable regardless
// of any moving blockers.
type Grid struct {
	cols, rows int
	cellSize   float64
	width      float64
	height     float64
	walkable   []bool
}

// NewGrid builds a walkability grid over a width x height world, marking
// every cell whose center overlaps a blockingRadius around any point in
// statics (buildings, terrain features) as unwalkable.
func NewGrid(width, height, blockingRadius float64, statics []vecmath.Vec3) *Grid {
	cols := int(math.Ceil(width / CellSize))
	rows := int(math.Ceil(height / CellSize))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	g := &Grid{cols: cols, rows: rows, cellSize: CellSize, width: width, height: height, walkable: make([]bool, cols*rows)}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cx := (float64(col) + 0.5) * g.cellSize
			cz := (float64(row) + 0.5) * g.cellSize
			blocked := false
			for _, s := range statics {
				dx, dz := cx-s.X, cz-s.Z
				if dx*dx+dz*dz < blockingRadius*blockingRadius {
					blocked = true
					break
				}
			}
			g.walkable[row*cols+col] = !blocked
		}
	}
	return g
}

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *Grid) index(col, row int) int { return row*g.cols + col }

func (g *Grid) isWalkable(col, row int, blocked map[int]struct{}) bool {
	if !g.inBounds(col, row) {
		return false
	}
	idx := g.index(col, row)
	if !g.walkable[idx] {
		return false
	}
	if blocked == nil {
		return true
	}
	_, exists := blocked[idx]
	return !exists
}

func (g *Grid) worldPos(col, row int) vecmath.Vec3 {
	return vecmath.Vec3{X: (float64(col) + 0.5) * g.cellSize, Z: (float64(row) + 0.5) * g.cellSize}
}

func (g *Grid) locate(x, z float64) (int, int, bool) {
	if g.cols == 0 || g.rows == 0 {
		return 0, 0, false
	}
	col := int(clamp(x, 0, g.width-1) / g.cellSize)
	row := int(clamp(z, 0, g.height-1) / g.cellSize)
	if !g.inBounds(col, row) {
		return 0, 0, false
	}
	return col, row, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *Grid) canTraverseDiagonal(from cell, d cell, blocked map[int]struct{}) bool {
	if !d.diagonal {
		return true
	}
	return g.isWalkable(from.col+d.col, from.row, blocked) && g.isWalkable(from.col, from.row+d.row, blocked)
}

type node struct {
	col, row int
	g, f     float64
	index    int
	parent   *node
}

type openQueue []*node

func (q openQueue) Len() int            { return len(q) }
func (q openQueue) Less(i, j int) bool   { return q[i].f < q[j].f }
func (q openQueue) Swap(i, j int)        { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *openQueue) Push(x any)          { n := *q; item := x.(*node); item.index = len(n); *q = append(n, item) }
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func heuristic(aCol, aRow, bCol, bRow int) float64 {
	dx := math.Abs(float64(aCol - bCol))
	dz := math.Abs(float64(aRow - bRow))
	if dx > dz {
		return dx + (math.Sqrt2-1)*dz
	}
	return dz + (math.Sqrt2-1)*dx
}

// findPath runs A* from start to goal (world-space), honoring blocked cell
// indices (dynamic blockers resolved this tick). Returns the walked cell
// centers including the start cell.
func (g *Grid) findPath(start, goal vecmath.Vec3, blocked map[int]struct{}) ([]vecmath.Vec3, bool) {
	startCol, startRow, ok := g.locate(start.X, start.Z)
	if !ok {
		return nil, false
	}
	goalCol, goalRow, ok := g.locate(goal.X, goal.Z)
	if !ok {
		return nil, false
	}
	if !g.isWalkable(startCol, startRow, blocked) {
		startCol, startRow, ok = g.closestWalkable(startCol, startRow, blocked)
		if !ok {
			return nil, false
		}
	}
	if !g.isWalkable(goalCol, goalRow, blocked) {
		return nil, false
	}

	open := &openQueue{}
	heap.Init(open)
	heap.Push(open, &node{col: startCol, row: startRow, g: 0, f: heuristic(startCol, startRow, goalCol, goalRow)})
	gScore := map[int]float64{g.index(startCol, startRow): 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		idx := g.index(current.col, current.row)
		if _, seen := closed[idx]; seen {
			continue
		}
		closed[idx] = struct{}{}
		if current.col == goalCol && current.row == goalRow {
			return reconstruct(current, g), true
		}

		for _, d := range neighborOffsets {
			if !g.canTraverseDiagonal(cell{col: current.col, row: current.row}, d, blocked) {
				continue
			}
			nc, nr := current.col+d.col, current.row+d.row
			if !g.isWalkable(nc, nr, blocked) && !(nc == goalCol && nr == goalRow) {
				continue
			}
			nidx := g.index(nc, nr)
			if _, seen := closed[nidx]; seen {
				continue
			}
			tentative := current.g + d.cost
			if prev, ok := gScore[nidx]; ok && tentative >= prev {
				continue
			}
			gScore[nidx] = tentative
			heap.Push(open, &node{col: nc, row: nr, g: tentative, f: tentative + heuristic(nc, nr, goalCol, goalRow), parent: current})
		}
	}
	return nil, false
}

func reconstruct(end *node, g *Grid) []vecmath.Vec3 {
	var cols, rows []int
	for n := end; n != nil; n = n.parent {
		cols = append(cols, n.col)
		rows = append(rows, n.row)
	}
	path := make([]vecmath.Vec3, len(cols))
	for i := range cols {
		j := len(cols) - 1 - i
		path[i] = g.worldPos(cols[j], rows[j])
	}
	return path
}

func (g *Grid) closestWalkable(col, row int, blocked map[int]struct{}) (int, int, bool) {
	type rc struct{ col, row int }
	start := rc{col, row}
	visited := map[int]struct{}{g.index(col, row): {}}
	queue := []rc{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if g.isWalkable(cur.col, cur.row, blocked) {
			return cur.col, cur.row, true
		}
		for _, d := range neighborOffsets {
			nc, nr := cur.col+d.col, cur.row+d.row
			if !g.inBounds(nc, nr) {
				continue
			}
			idx := g.index(nc, nr)
			if _, seen := visited[idx]; seen {
				continue
			}
			visited[idx] = struct{}{}
			queue = append(queue, rc{nc, nr})
		}
	}
	return 0, 0, false
}

// BlockedCells converts a set of dynamic-blocker positions and a blocking
// radius into the per-cell blocked-index set findPath expects.
func (g *Grid) BlockedCells(blockers []vecmath.Vec3, radius float64) map[int]struct{} {
	if len(blockers) == 0 {
		return nil
	}
	blocked := make(map[int]struct{})
	for _, b := range blockers {
		minCol := int(math.Floor((b.X - radius) / g.cellSize))
		maxCol := int(math.Ceil((b.X + radius) / g.cellSize))
		minRow := int(math.Floor((b.Z - radius) / g.cellSize))
		maxRow := int(math.Ceil((b.Z + radius) / g.cellSize))
		for row := minRow; row <= maxRow; row++ {
			for col := minCol; col <= maxCol; col++ {
				if !g.inBounds(col, row) || !g.walkable[g.index(col, row)] {
					continue
				}
				cx := (float64(col) + 0.5) * g.cellSize
				cz := (float64(row) + 0.5) * g.cellSize
				if dx, dz := cx-b.X, cz-b.Z; dx*dx+dz*dz <= radius*radius {
					blocked[g.index(col, row)] = struct{}{}
				}
			}
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	return blocked
}
