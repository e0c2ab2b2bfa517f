package stencil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/geometry"
	"github.com/notargets/goweno/mesh"
	"github.com/notargets/goweno/weno"
)

func boxProvider(t *testing.T, n int) *mesh.Provider {
	m, err := mesh.NewBoxMesh(n, n, n, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	p, err := mesh.NewProvider(m)
	require.NoError(t, err)
	return p
}

func TestBuilderSizes(t *testing.T) {
	p := boxProvider(t, 3)
	b := &Builder{Mesh: p, Order: 2, ExtendRatio: 1.5, Sectors: true}
	require.NoError(t, b.Build(context.Background()))
	assert.Equal(t, 14, b.Size())

	var nSectors int
	for k := 0; k < p.NumCells(); k++ {
		list := b.Stencils(k)
		require.NotEmpty(t, list)
		assert.Equal(t, weno.STENCIL_Central, list[0].Kind)
		assert.Len(t, list[0].Cells, b.Size())
		assert.LessOrEqual(t, len(list), 1+len(p.CellFaces(k)))
		for _, s := range list {
			seen := make(map[int]bool)
			for _, c := range s.Cells {
				assert.NotEqual(t, k, c, "owner inside its own stencil")
				assert.False(t, seen[c], "cell %d repeated", c)
				seen[c] = true
			}
			if s.Kind == weno.STENCIL_Sector {
				nSectors++
				assert.Len(t, s.Cells, b.Size())
			}
		}
	}
	assert.Greater(t, nSectors, 0)
}

func TestCentralStencilIsNearest(t *testing.T) {
	p := boxProvider(t, 3)
	b := &Builder{Mesh: p, Order: 1, ExtendRatio: 2}
	require.NoError(t, b.Build(context.Background()))
	for k := 0; k < p.NumCells(); k++ {
		list := b.Stencils(k)
		require.Len(t, list, 1)
		cells := list[0].Cells
		x0 := p.CellCentre(k)
		for i := 1; i < len(cells); i++ {
			d0 := r3.Norm2(r3.Sub(p.CellCentre(cells[i-1]), x0))
			d1 := r3.Norm2(r3.Sub(p.CellCentre(cells[i]), x0))
			assert.LessOrEqual(t, d0, d1)
		}
	}
}

func TestSectorsLieOutsideTheirFace(t *testing.T) {
	p := boxProvider(t, 4)
	b := &Builder{Mesh: p, Order: 1, ExtendRatio: 2, Sectors: true}
	require.NoError(t, b.Build(context.Background()))
	for k := 0; k < p.NumCells(); k++ {
		for _, s := range b.Stencils(k)[1:] {
			// some face of k has every sector member on its outward side
			var found bool
			for _, f := range p.CellFaces(k) {
				fi := p.Face(f)
				n := fi.Area
				if fi.Owner != k {
					n = r3.Scale(-1, n)
				}
				centre := geometry.FaceCentre(fi.Loop)
				all := true
				for _, c := range s.Cells {
					all = all && r3.Dot(r3.Sub(p.CellCentre(c), centre), n) > 0
				}
				found = found || all
			}
			assert.True(t, found, "cell %d", k)
		}
	}
}

func TestBuilderParallelDegree(t *testing.T) {
	p := boxProvider(t, 3)
	serial := &Builder{Mesh: p, Order: 2, ExtendRatio: 1.5, Sectors: true, ParallelDegree: 1}
	require.NoError(t, serial.Build(context.Background()))
	for _, np := range []int{0, 3, 200} {
		b := &Builder{Mesh: p, Order: 2, ExtendRatio: 1.5, Sectors: true, ParallelDegree: np}
		require.NoError(t, b.Build(context.Background()))
		for k := 0; k < p.NumCells(); k++ {
			assert.Equal(t, serial.Stencils(k), b.Stencils(k), "cell %d, %d workers", k, np)
		}
	}
}

func TestNeighbours(t *testing.T) {
	p := boxProvider(t, 1)
	for k := 0; k < p.NumCells(); k++ {
		for _, nb := range Neighbours(p, k) {
			assert.Contains(t, Neighbours(p, nb), k)
		}
	}
}

func TestMaxLayers(t *testing.T) {
	p := boxProvider(t, 3)
	b := &Builder{Mesh: p, Order: 3, ExtendRatio: 2, MaxLayers: 1}
	require.NoError(t, b.Build(context.Background()))
	for k := 0; k < p.NumCells(); k++ {
		assert.ElementsMatch(t, Neighbours(p, k), b.Stencils(k)[0].Cells)
	}
}

func TestBuilderValidation(t *testing.T) {
	p := boxProvider(t, 1)
	b := &Builder{Mesh: p, Order: 0, ExtendRatio: 2}
	assert.True(t, errors.Is(b.Build(context.Background()), weno.ErrInvalidConfiguration))
	b = &Builder{Mesh: p, Order: 1, ExtendRatio: 0.5}
	assert.True(t, errors.Is(b.Build(context.Background()), weno.ErrInvalidConfiguration))
	b = &Builder{Mesh: p, Order: 1, ExtendRatio: 2, ParallelDegree: -1}
	assert.True(t, errors.Is(b.Build(context.Background()), weno.ErrInvalidConfiguration))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b = &Builder{Mesh: p, Order: 1, ExtendRatio: 2}
	assert.ErrorIs(t, b.Build(ctx), context.Canceled)
}
