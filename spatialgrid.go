package physx

import (
	"math"
	"slices"

	"github.com/alanjfs/physx/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// maxCellsPerBody is the number of cells above which a body skips the grid
// and is tested against every other body.
const maxCellsPerBody = 512

// CellKey is the integer coordinate of a grid cell.
type CellKey struct {
	X, Y, Z int
}

type cell struct {
	bodyIndices []int
}

// Pair is two bodies whose bounds overlap.
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform hash grid for the broad phase. Planes and bodies
// spanning too many cells are kept aside and paired with everything.
type SpatialGrid struct {
	cellSize float64
	cells    []cell
	cellMask int

	// Indices of planes and oversized bodies.
	everywhere []int
	wide       []bool
}

// NewSpatialGrid creates a grid of cellSize wide cells hashed into numCells
// buckets, rounded up to a power of two.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.everywhere = sg.everywhere[:0]
	sg.wide = sg.wide[:0]
}

// Insert adds the body at bodyIndex to every cell its bounds touch.
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	for len(sg.wide) <= bodyIndex {
		sg.wide = append(sg.wide, false)
	}

	minCell, maxCell := sg.cellRange(body.AABB)
	if _, isPlane := body.Shape.(*actor.Plane); isPlane || cellCount(minCell, maxCell) > maxCellsPerBody {
		sg.wide[bodyIndex] = true
		sg.everywhere = append(sg.everywhere, bodyIndex)
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				idx := sg.hashCell(CellKey{x, y, z})
				sg.cells[idx].bodyIndices = append(sg.cells[idx].bodyIndices, bodyIndex)
			}
		}
	}
}

// FindPairs returns the candidate pairs ordered by body index. Candidates of
// each body are gathered on up to workersCount goroutines.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody, workersCount int) []Pair {
	candidates := make([][]int, len(bodies))
	task(workersCount, bodies, func(i int, _ *actor.RigidBody) {
		candidates[i] = sg.candidates(i, bodies)
	})

	pairs := make([]Pair, 0, len(bodies))
	for i, others := range candidates {
		for _, j := range others {
			pairs = append(pairs, Pair{BodyA: bodies[i], BodyB: bodies[j]})
		}
	}
	return pairs
}

// candidates lists the bodies after index i that may collide with it.
func (sg *SpatialGrid) candidates(i int, bodies []*actor.RigidBody) []int {
	var others []int
	if i < len(sg.wide) && sg.wide[i] {
		for j := i + 1; j < len(bodies); j++ {
			others = append(others, j)
		}
	} else {
		minCell, maxCell := sg.cellRange(bodies[i].AABB)
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					for _, j := range sg.cells[sg.hashCell(CellKey{x, y, z})].bodyIndices {
						if j > i {
							others = append(others, j)
						}
					}
				}
			}
		}
		for _, j := range sg.everywhere {
			if j > i {
				others = append(others, j)
			}
		}
	}

	// Hash collisions and multi cell bodies produce duplicates.
	slices.Sort(others)
	others = slices.Compact(others)

	a := bodies[i]
	return slices.DeleteFunc(others, func(j int) bool {
		return !canCollide(a, bodies[j])
	})
}

func canCollide(a, b *actor.RigidBody) bool {
	if a.IsStatic() && b.IsStatic() {
		return false
	}
	if !active(a) && !active(b) {
		return false
	}
	return a.AABB.Overlaps(b.AABB)
}

// active reports whether the body moves on its own this step.
func active(rb *actor.RigidBody) bool {
	return !rb.IsStatic() && !rb.IsSleeping
}

func (sg *SpatialGrid) cellRange(aabb actor.AABB) (CellKey, CellKey) {
	return sg.worldToCell(aabb.Min), sg.worldToCell(aabb.Max)
}

func cellCount(minCell, maxCell CellKey) float64 {
	return float64(maxCell.X-minCell.X+1) * float64(maxCell.Y-minCell.Y+1) * float64(maxCell.Z-minCell.Z+1)
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
