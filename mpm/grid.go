package mpm

// Grid is the Eulerian background grid: an n*n array of nodes over [0,1]^2
// stored as flat slices indexed i*n+j. Vx/Vy hold momentum during P2G and
// are reinterpreted as velocity in place by the grid update. The grid
// carries no state across substeps; it is cleared at the start of each one.
type Grid struct {
	N     int // nodes per side
	cells int

	Vx, Vy []float32
	M      []float32
}

// NewGrid allocates an n*n node grid.
func NewGrid(n int) *Grid {
	cells := n * n
	return &Grid{
		N:     n,
		cells: cells,
		Vx:    make([]float32, cells),
		Vy:    make([]float32, cells),
		M:     make([]float32, cells),
	}
}

// Idx maps 2D node coordinates to the flat index.
func (g *Grid) Idx(i, j int) int { return i*g.N + j }

// Cells returns the node count.
func (g *Grid) Cells() int { return g.cells }

// Clear zeroes momentum and mass on every node.
func (g *Grid) Clear() {
	clear(g.Vx)
	clear(g.Vy)
	clear(g.M)
}

// TotalMass sums node masses in float64 to keep the reduction stable.
func (g *Grid) TotalMass() float64 {
	var total float64
	for _, m := range g.M {
		total += float64(m)
	}
	return total
}
