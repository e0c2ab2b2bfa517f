package weno

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/goweno/utils"
)

// LinearOperator is the central stencil fit of every cell assembled into one
// sparse matrix mapping cell averages onto coefficients. Row block
// Offsets[k]:Offsets[k+1] holds the coefficients of cell k.
type LinearOperator struct {
	Offsets []int
	M       utils.CSR
}

func NewLinearOperator(gc *GeometryCache) *LinearOperator {
	var (
		K       = gc.NumCells()
		offsets = make([]int, K+1)
	)
	for k := 0; k < K; k++ {
		cg := gc.GeometryFor(k)
		offsets[k+1] = offsets[k]
		if cg.Central() >= 0 {
			offsets[k+1] += len(cg.Set)
		}
	}
	dok := utils.NewDOK(max(offsets[K], 1), max(K, 1))
	for k := 0; k < K; k++ {
		cg := gc.GeometryFor(k)
		ci := cg.Central()
		if ci < 0 {
			continue
		}
		var (
			sg   = &cg.Stencils[ci]
			nDOF = len(cg.Set)
			P    = sg.Fit.Pinv
			row0 = offsets[k]
		)
		// c_i = sum_j P[i][j] (u_j - u_k)
		for i := 0; i < nDOF; i++ {
			var sum float64
			for j, m := range sg.Cells {
				v := P.At(i, j)
				dok.Add(row0+i, m, v)
				sum += v
			}
			dok.Add(row0+i, k, -sum)
		}
	}
	dok.SetReadOnly("LinearOperator")
	return &LinearOperator{Offsets: offsets, M: dok.ToCSR()}
}

func (lo *LinearOperator) NumRows() int { return lo.Offsets[len(lo.Offsets)-1] }

// Apply returns the stacked coefficients for the cell averages u.
func (lo *LinearOperator) Apply(u []float64) (y []float64) {
	y = make([]float64, lo.NumRows())
	lo.M.MulVecRange(y, u, 0, len(y))
	return
}

// ApplyParallel splits the rows over np workers.
func (lo *LinearOperator) ApplyParallel(ctx context.Context, u []float64, np int) (y []float64, err error) {
	var (
		nr = lo.NumRows()
		pm = utils.NewPartitionMap(np, nr)
		g  errgroup.Group
	)
	y = make([]float64, nr)
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rMin, rMax := pm.GetBucketRange(bn)
			lo.M.MulVecRange(y, u, rMin, rMax)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		y = nil
	}
	return
}

// Coefficients slices the block of one cell out of a stacked result.
func (lo *LinearOperator) Coefficients(y []float64, cell int) []float64 {
	return y[lo.Offsets[cell]:lo.Offsets[cell+1]]
}
