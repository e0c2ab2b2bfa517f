package weno

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/basis"
	"github.com/notargets/goweno/geometry"
	"github.com/notargets/goweno/utils"
)

// StencilGeometry is a stencil that survived the geometry checks together
// with its fit operator. Index refers to the provider's stencil list.
type StencilGeometry struct {
	Stencil
	Index   int
	Ideal   float64
	Members []geometry.MomentTable // retained only WithMomentTables
	Fit     *FitOperator
}

// FaceGeometry holds the face moments of one cell face in the cell's frame.
// Row is nil when the face moments could not be built, the face then sees the
// cell average.
type FaceGeometry struct {
	Face    int
	Moments geometry.MomentTable
	Row     []float64 // faceMean_k - ownerMean_k
}

// CellGeometry is the immutable per cell record of the geometry phase.
type CellGeometry struct {
	Cell       int
	Order      int // effective order, 0 is piecewise constant
	Set        basis.Set
	Frame      geometry.Frame
	Owner      geometry.MomentTable
	OwnerMeans []float64
	Stencils   []StencilGeometry
	B          *mat.SymDense
	Faces      []FaceGeometry
}

// LocalFace returns the position of a mesh face among the cell's faces.
func (cg *CellGeometry) LocalFace(face int) int {
	for i, fg := range cg.Faces {
		if fg.Face == face {
			return i
		}
	}
	return -1
}

// Central returns the index into Stencils of the central stencil, falling
// back to the first surviving stencil. It is -1 for order 0 cells.
func (cg *CellGeometry) Central() int {
	for i, s := range cg.Stencils {
		if s.Kind == STENCIL_Central {
			return i
		}
	}
	if len(cg.Stencils) > 0 {
		return 0
	}
	return -1
}

type faceSides struct {
	info                       FaceInfo
	ownerLocal, neighbourLocal int
}

// GeometryCache is built once per mesh state and is read only afterwards, it
// may be shared by any number of concurrent reconstructions.
type GeometryCache struct {
	cfg         Config
	cells       []CellGeometry
	faces       []faceSides
	fingerprint uint64
	diag        Diagnostics
}

// NewGeometryCache validates the stencil lists and builds every cell record in
// parallel. Configuration errors are fatal, cell local failures degrade the
// cell and are reported by Diagnostics.
func NewGeometryCache(ctx context.Context, geo GeometryProvider, stencils StencilProvider,
	cfg Config, opts ...Option) (gc *GeometryCache, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	o := newOptions(opts)
	if err = checkStencils(geo, stencils, cfg.Order); err != nil {
		return
	}
	var (
		K       = geo.NumCells()
		np      = cfg.parallelDegree()
		pm      = utils.NewPartitionMap(np, K)
		errs    = make([][]CellError, np)
		g, gctx = errgroup.WithContext(ctx)
	)
	gc = &GeometryCache{
		cfg:   cfg,
		cells: make([]CellGeometry, K),
	}
	for bn := 0; bn < np; bn++ {
		g.Go(func() error {
			kMin, kMax := pm.GetBucketRange(bn)
			for k := kMin; k < kMax; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				gc.cells[k], errs[bn] = gc.buildCell(geo, stencils.Stencils(k), k, o.keepMoments, errs[bn])
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	gc.diag = Diagnostics{Order: cfg.Order, Cells: K}
	for _, e := range errs {
		gc.diag.Errors = append(gc.diag.Errors, e...)
	}
	sort.SliceStable(gc.diag.Errors, func(i, j int) bool {
		return gc.diag.Errors[i].Cell < gc.diag.Errors[j].Cell
	})
	for k := range gc.cells {
		if gc.cells[k].Order < cfg.Order {
			gc.diag.Reductions = append(gc.diag.Reductions, OrderReduction{Cell: k, Order: gc.cells[k].Order})
		}
	}
	if err = gc.buildFaceSides(geo); err != nil {
		return nil, err
	}
	gc.fingerprint = Fingerprint(geo, stencils)
	for _, e := range gc.diag.Errors {
		o.logger.Debug("recovered cell failure", "cell", e.Cell, "stencil", e.Stencil,
			"face", e.Face, "order", e.Order, "err", e.Err)
	}
	return
}

func checkStencils(geo GeometryProvider, stencils StencilProvider, order int) error {
	var (
		K    = geo.NumCells()
		nDOF = basis.NumDOF(order)
	)
	for k := 0; k < K; k++ {
		list := stencils.Stencils(k)
		if len(list) == 0 {
			return fmt.Errorf("%w: cell %d has no stencils", ErrInvalidConfiguration, k)
		}
		for i, s := range list {
			if len(s.Cells) < nDOF {
				return fmt.Errorf("%w: cell %d stencil %d has %d members, order %d needs %d",
					ErrInsufficientStencilSize, k, i, len(s.Cells), order, nDOF)
			}
			for _, c := range s.Cells {
				if c < 0 || c >= K {
					return fmt.Errorf("%w: cell %d stencil %d references cell %d of %d",
						ErrInvalidConfiguration, k, i, c, K)
				}
			}
		}
	}
	return nil
}

func (gc *GeometryCache) buildFaceSides(geo GeometryProvider) error {
	gc.faces = make([]faceSides, geo.NumFaces())
	for f := range gc.faces {
		fi := geo.Face(f)
		fs := faceSides{info: fi, ownerLocal: -1, neighbourLocal: -1}
		if fi.Owner < 0 || fi.Owner >= len(gc.cells) {
			return fmt.Errorf("%w: face %d owner %d out of range", ErrInvalidConfiguration, f, fi.Owner)
		}
		fs.ownerLocal = gc.cells[fi.Owner].LocalFace(f)
		if fi.Neighbour >= 0 {
			if fi.Neighbour >= len(gc.cells) {
				return fmt.Errorf("%w: face %d neighbour %d out of range",
					ErrInvalidConfiguration, f, fi.Neighbour)
			}
			fs.neighbourLocal = gc.cells[fi.Neighbour].LocalFace(f)
		}
		gc.faces[f] = fs
	}
	return nil
}

// cellFrame uses the provider's frame points and falls back to the axis
// aligned bounding box of the cell when they are degenerate.
func cellFrame(geo GeometryProvider, k int, eps float64) (f geometry.Frame, err error) {
	p := geo.CellFramePoints(k)
	if f, err = geometry.NewFrame(p[0], p[1], p[2], p[3], eps); err == nil {
		return
	}
	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Scale(-1, lo)
	for _, t := range geo.CellTets(k) {
		for _, v := range t {
			lo = r3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
			hi = r3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
		}
	}
	d := r3.Sub(hi, lo)
	return geometry.NewFrame(lo,
		r3.Add(lo, r3.Vec{X: d.X}), r3.Add(lo, r3.Vec{Y: d.Y}), r3.Add(lo, r3.Vec{Z: d.Z}), eps)
}

type candidate struct {
	index   int
	st      Stencil
	members []geometry.MomentTable
}

func (gc *GeometryCache) buildCell(geo GeometryProvider, list []Stencil, k int, keep bool,
	errs []CellError) (cg CellGeometry, _ []CellError) {
	var (
		r   = gc.cfg.Order
		eps = gc.cfg.DegeneracyEpsilon
	)
	record := func(stencil, face, order int, err error) {
		errs = append(errs, CellError{Cell: k, Stencil: stencil, Face: face, Order: order, Err: err})
	}
	cg.Cell = k
	frame, err := cellFrame(geo, k, eps)
	if err != nil {
		record(-1, -1, r, err)
		cg.buildFaces(geo, k, record)
		return cg, errs
	}
	cg.Frame = frame
	tets := geo.CellTets(k)
	ownerVol, _ := geometry.VolumeCentroid(tets)
	cg.Owner = geometry.VolumeIntegrals(tets, frame, 2*r)
	if !(ownerVol > 0) || !(cg.Owner.Measure() > 0) {
		record(-1, -1, r, fmt.Errorf("%w: cell volume %g", ErrDegenerateGeometry, ownerVol))
		cg.buildFaces(geo, k, record)
		return cg, errs
	}
	var cands []candidate
	for i, s := range list {
		var (
			members = make([]geometry.MomentTable, len(s.Cells))
			bad     bool
		)
		for j, m := range s.Cells {
			mt := geo.CellTets(m)
			vol, _ := geometry.VolumeCentroid(mt)
			if !(vol > eps*ownerVol) {
				record(i, -1, r, fmt.Errorf("%w: member cell %d volume %g", ErrDegenerateGeometry, m, vol))
				bad = true
				break
			}
			members[j] = geometry.VolumeIntegrals(mt, frame, r)
		}
		if !bad {
			cands = append(cands, candidate{index: i, st: s, members: members})
		}
	}
	for order := r; order >= 1 && len(cg.Stencils) == 0; order-- {
		set := basis.New(order)
		for _, c := range cands {
			fo, err := NewFitOperator(AssembleFit(cg.Owner, c.members, set), eps)
			if err != nil {
				record(c.index, -1, order, err)
				continue
			}
			sg := StencilGeometry{
				Stencil: c.st,
				Index:   c.index,
				Ideal:   gc.cfg.idealWeight(c.st),
				Fit:     fo,
			}
			if keep {
				sg.Members = c.members
			}
			cg.Stencils = append(cg.Stencils, sg)
		}
		if len(cg.Stencils) > 0 {
			cg.Order, cg.Set = order, set
		}
	}
	if cg.Order > 0 {
		cg.OwnerMeans = cg.Owner.Means(cg.Set)
		cg.B = SmoothnessMatrix(cg.Owner, cg.Set)
	}
	cg.buildFaces(geo, k, record)
	return cg, errs
}

func (cg *CellGeometry) buildFaces(geo GeometryProvider, k int, record func(stencil, face, order int, err error)) {
	faces := geo.CellFaces(k)
	cg.Faces = make([]FaceGeometry, len(faces))
	for i, f := range faces {
		cg.Faces[i].Face = f
		if cg.Order == 0 {
			continue
		}
		mt, err := geometry.FaceIntegrals(geo.Face(f).Loop, cg.Frame, cg.Order)
		if err != nil {
			record(-1, f, cg.Order, err)
			continue
		}
		row := mt.Means(cg.Set)
		for j := range row {
			row[j] -= cg.OwnerMeans[j]
		}
		cg.Faces[i].Moments, cg.Faces[i].Row = mt, row
	}
}

// GeometryFor returns the cached record of a cell.
func (gc *GeometryCache) GeometryFor(cell int) *CellGeometry { return &gc.cells[cell] }

func (gc *GeometryCache) NumCells() int            { return len(gc.cells) }
func (gc *GeometryCache) NumFaces() int            { return len(gc.faces) }
func (gc *GeometryCache) Config() Config           { return gc.cfg }
func (gc *GeometryCache) Fingerprint() uint64      { return gc.fingerprint }
func (gc *GeometryCache) Diagnostics() Diagnostics { return gc.diag }
