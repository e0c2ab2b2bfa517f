package weno

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/basis"
)

// Reconstruction holds the blended coefficients of one field. It is
// immutable apart from the face flux and the coupled face values.
type Reconstruction struct {
	FieldID  string
	cache    *GeometryCache
	resolver FaceResolver
	limit    bool
	nComp    int
	means    [][]float64   // [component][cell]
	coeffs   [][][]float64 // [cell][component][dof]
	sensor   []float64

	mu      sync.RWMutex
	flux    []float64
	coupled map[int]CoupledValue // keyed by local face
}

func newReconstruction(fieldID string, gc *GeometryCache, nComp int, fr FaceResolver, limit bool) *Reconstruction {
	K := gc.NumCells()
	r := &Reconstruction{
		FieldID:  fieldID,
		cache:    gc,
		resolver: fr,
		limit:    limit,
		nComp:    nComp,
		means:    make([][]float64, nComp),
		coeffs:   make([][][]float64, K),
		sensor:   make([]float64, K),
	}
	for n := range r.means {
		r.means[n] = make([]float64, K)
	}
	for k := range r.coeffs {
		r.coeffs[k] = make([][]float64, nComp)
	}
	return r
}

func (r *Reconstruction) NumComponents() int { return r.nComp }
func (r *Reconstruction) NumCells() int      { return len(r.coeffs) }

func (r *Reconstruction) Mean(cell, component int) float64 { return r.means[component][cell] }

// Coefficients returns the blended coefficients of a cell, ordered as
// basis.New(Order(cell)). Order 0 cells have none.
func (r *Reconstruction) Coefficients(cell, component int) []float64 {
	return r.coeffs[cell][component]
}

func (r *Reconstruction) Order(cell int) int { return r.cache.cells[cell].Order }

// Sensor returns the largest shock sensor reading over the components.
func (r *Reconstruction) Sensor(cell int) float64 { return r.sensor[cell] }

// ValueAt evaluates the cell polynomial at a physical point.
func (r *Reconstruction) ValueAt(cell, component int, x r3.Vec) float64 {
	var (
		cg = &r.cache.cells[cell]
		v  = r.means[component][cell]
		c  = r.coeffs[cell][component]
	)
	if len(c) == 0 {
		return v
	}
	xi := cg.Frame.TransformPoint(x)
	for k, e := range cg.Set {
		v += c[k] * (e.Evaluate(xi.X, xi.Y, xi.Z) - cg.OwnerMeans[k])
	}
	return v
}

// Gradient returns the cell averaged physical gradient of the polynomial.
func (r *Reconstruction) Gradient(cell, component int) r3.Vec {
	var (
		cg = &r.cache.cells[cell]
		c  = r.coeffs[cell][component]
		g  [3]float64
	)
	if len(c) == 0 {
		return r3.Vec{}
	}
	axes := [3]basis.Exponent{{N: 1}, {M: 1}, {L: 1}}
	for k, e := range cg.Set {
		for d, alpha := range axes {
			if coeff, de, ok := basis.Derivative(e, alpha); ok {
				g[d] += c[k] * coeff * cg.Owner.Mean(de)
			}
		}
	}
	return cg.Frame.PhysicalGradient(r3.Vec{X: g[0], Y: g[1], Z: g[2]})
}

// CellFaceValue is the face average of face seen from cell, which must be
// one of the cells adjacent to the face.
func (r *Reconstruction) CellFaceValue(cell, face, component int) float64 {
	var (
		cg    = &r.cache.cells[cell]
		local = cg.LocalFace(face)
		mean  = r.means[component][cell]
	)
	if local < 0 {
		return mean
	}
	return faceValue(mean, r.coeffs[cell][component], cg.Faces[local].Row)
}

func (r *Reconstruction) sideValue(cell, local, component int) float64 {
	mean := r.means[component][cell]
	if local < 0 {
		return mean
	}
	return faceValue(mean, r.coeffs[cell][component], r.cache.cells[cell].Faces[local].Row)
}

// SetFaceFlux sets the per face flux used by the face resolver.
func (r *Reconstruction) SetFaceFlux(flux []float64) error {
	if flux != nil && len(flux) != r.cache.NumFaces() {
		return fmt.Errorf("%w: flux over %d faces, mesh has %d",
			ErrInvalidConfiguration, len(flux), r.cache.NumFaces())
	}
	r.mu.Lock()
	r.flux = flux
	r.mu.Unlock()
	return nil
}

// EvaluateFace returns the reconstructed face average. Internal faces are
// resolved from both sides, boundary faces see the owner only and coupled
// faces need the neighbouring domain's values from ExchangeCoupled.
func (r *Reconstruction) EvaluateFace(face, component int) (v float64, err error) {
	if face < 0 || face >= r.cache.NumFaces() {
		return 0, fmt.Errorf("%w: face %d out of range", ErrInvalidConfiguration, face)
	}
	if component < 0 || component >= r.nComp {
		return 0, fmt.Errorf("%w: component %d of %d", ErrInvalidConfiguration, component, r.nComp)
	}
	var (
		fs     = r.cache.faces[face]
		fi     = fs.info
		owner  = r.sideValue(fi.Owner, fs.ownerLocal, component)
		oMean  = r.means[component][fi.Owner]
		flux   float64
		nb     float64
		nbMean float64
	)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.flux != nil {
		flux = r.flux[face]
	}
	switch {
	case fi.Neighbour >= 0:
		nb = r.sideValue(fi.Neighbour, fs.neighbourLocal, component)
		nbMean = r.means[component][fi.Neighbour]
	case fi.IsCoupled():
		cv, ok := r.coupled[face]
		if !ok {
			return 0, fmt.Errorf("%w: face %d with domain %d", ErrCouplingPending, face, fi.CoupledDomain)
		}
		nb, nbMean = cv.Values[component], cv.Means[component]
	default:
		return owner, nil
	}
	v = r.resolver(owner, nb, flux)
	if r.limit {
		v = clamp(v, oMean, nbMean)
	}
	return
}

// ExchangeCoupled sends the owner side values of every coupled face through
// coupler and stores the values delivered by the neighbouring domains.
func (r *Reconstruction) ExchangeCoupled(ctx context.Context, coupler Coupler) error {
	var out []CoupledValue
	for f, fs := range r.cache.faces {
		fi := fs.info
		if !fi.IsCoupled() {
			continue
		}
		cv := CoupledValue{
			Domain:     -1,
			Face:       f,
			PeerDomain: fi.CoupledDomain,
			PeerFace:   fi.CoupledFace,
			Values:     make([]float64, r.nComp),
			Means:      make([]float64, r.nComp),
		}
		for n := 0; n < r.nComp; n++ {
			cv.Values[n] = r.sideValue(fi.Owner, fs.ownerLocal, n)
			cv.Means[n] = r.means[n][fi.Owner]
		}
		out = append(out, cv)
	}
	if len(out) == 0 {
		return nil
	}
	in, err := coupler.Exchange(ctx, r.FieldID, out)
	if err != nil {
		return fmt.Errorf("exchange of field %q: %w", r.FieldID, err)
	}
	received := make(map[int]CoupledValue, len(in))
	for _, cv := range in {
		f := cv.PeerFace
		if f < 0 || f >= len(r.cache.faces) || !r.cache.faces[f].info.IsCoupled() {
			return fmt.Errorf("%w: domain %d delivered values for face %d which is not coupled",
				ErrInvalidConfiguration, cv.Domain, f)
		}
		if len(cv.Values) != r.nComp || len(cv.Means) != r.nComp {
			return fmt.Errorf("%w: face %d delivered %d components, field has %d",
				ErrInvalidConfiguration, f, len(cv.Values), r.nComp)
		}
		received[f] = cv
	}
	for _, cv := range out {
		if _, ok := received[cv.Face]; !ok {
			return fmt.Errorf("%w: face %d not delivered by domain %d",
				ErrCouplingPending, cv.Face, cv.PeerDomain)
		}
	}
	r.mu.Lock()
	r.coupled = received
	r.mu.Unlock()
	return nil
}
