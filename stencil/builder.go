// Package stencil builds candidate stencils for the WENO reconstruction from
// mesh face connectivity.
package stencil

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/basis"
	"github.com/notargets/goweno/geometry"
	"github.com/notargets/goweno/utils"
	"github.com/notargets/goweno/weno"
)

// Topology is the part of a mesh the builder walks.
type Topology interface {
	NumCells() int
	CellCentre(cell int) r3.Vec
	CellFaces(cell int) []int
	Face(face int) weno.FaceInfo
}

// Builder creates one central stencil per cell from the nearest cells of the
// face neighbour layers, and with Sectors one stencil per cell face drawn
// from the outward half space of that face.
type Builder struct {
	Mesh        Topology
	Order       int
	ExtendRatio float64 // stencil size is ceil(ExtendRatio * nDOF)
	Sectors     bool
	MaxLayers   int // 0 walks until the candidate pool is large enough
	// ParallelDegree is the number of build workers, 0 uses every CPU.
	ParallelDegree int
	stencils       [][]weno.Stencil
}

const poolFactor = 4

// Build fills the stencil lists of every cell.
func (b *Builder) Build(ctx context.Context) error {
	if b.Order < 1 || b.Order > basis.MaxOrder {
		return fmt.Errorf("%w: stencil order %d", weno.ErrInvalidConfiguration, b.Order)
	}
	if b.ExtendRatio < 1 {
		return fmt.Errorf("%w: extend ratio %g below 1", weno.ErrInvalidConfiguration, b.ExtendRatio)
	}
	if b.ParallelDegree < 0 {
		return fmt.Errorf("%w: negative parallel degree %d", weno.ErrInvalidConfiguration, b.ParallelDegree)
	}
	np := b.ParallelDegree
	if np == 0 {
		np = runtime.NumCPU()
	}
	var (
		K     = b.Mesh.NumCells()
		size  = b.Size()
		pm    = utils.NewPartitionMap(np, K)
		g, gc = errgroup.WithContext(ctx)
	)
	b.stencils = make([][]weno.Stencil, K)
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		g.Go(func() error {
			kMin, kMax := pm.GetBucketRange(bn)
			for k := kMin; k < kMax; k++ {
				if err := gc.Err(); err != nil {
					return err
				}
				b.stencils[k] = b.cellStencils(k, size)
			}
			return nil
		})
	}
	return g.Wait()
}

// Size returns the number of cells per stencil.
func (b *Builder) Size() int {
	return int(math.Ceil(b.ExtendRatio * float64(basis.NumDOF(b.Order))))
}

func (b *Builder) Stencils(cell int) []weno.Stencil { return b.stencils[cell] }

// Neighbours returns the face neighbours of a cell.
func Neighbours(topo Topology, cell int) (nb []int) {
	for _, f := range topo.CellFaces(cell) {
		fi := topo.Face(f)
		switch {
		case fi.Neighbour < 0:
		case fi.Owner == cell:
			nb = append(nb, fi.Neighbour)
		default:
			nb = append(nb, fi.Owner)
		}
	}
	return
}

// pool walks face neighbour layers outward from cell and returns the cells
// visited, owner excluded, sorted by centroid distance.
func (b *Builder) pool(cell, want int) (cells []int) {
	var (
		seen  = map[int]bool{cell: true}
		layer = []int{cell}
	)
	for depth := 0; len(layer) > 0; depth++ {
		if b.MaxLayers > 0 && depth == b.MaxLayers {
			break
		}
		if len(cells) >= want {
			break
		}
		var next []int
		for _, c := range layer {
			for _, n := range Neighbours(b.Mesh, c) {
				if !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		cells = append(cells, next...)
		layer = next
	}
	b.sortByDistance(cell, cells)
	return
}

func (b *Builder) sortByDistance(cell int, cells []int) {
	x0 := b.Mesh.CellCentre(cell)
	dist := make(map[int]float64, len(cells))
	for _, c := range cells {
		dist[c] = r3.Norm2(r3.Sub(b.Mesh.CellCentre(c), x0))
	}
	sort.SliceStable(cells, func(i, j int) bool {
		if dist[cells[i]] != dist[cells[j]] {
			return dist[cells[i]] < dist[cells[j]]
		}
		return cells[i] < cells[j]
	})
}

func (b *Builder) cellStencils(cell, size int) (list []weno.Stencil) {
	want := size
	if b.Sectors {
		want = poolFactor * size
	}
	pool := b.pool(cell, want)
	central := pool
	if len(central) > size {
		central = central[:size]
	}
	list = append(list, weno.Stencil{
		Cells: append([]int(nil), central...),
		Kind:  weno.STENCIL_Central,
	})
	if !b.Sectors {
		return
	}
	for _, f := range b.Mesh.CellFaces(cell) {
		var (
			fi     = b.Mesh.Face(f)
			n      = fi.Area
			centre = geometry.FaceCentre(fi.Loop)
			sector []int
		)
		if fi.Owner != cell {
			n = r3.Scale(-1, n)
		}
		for _, c := range pool {
			if r3.Dot(r3.Sub(b.Mesh.CellCentre(c), centre), n) > 0 {
				sector = append(sector, c)
				if len(sector) == size {
					break
				}
			}
		}
		// Sectors short of the basis size are dropped
		if len(sector) == size {
			list = append(list, weno.Stencil{Cells: sector, Kind: weno.STENCIL_Sector})
		}
	}
	return
}
