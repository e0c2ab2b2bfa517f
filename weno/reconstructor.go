package weno

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/goweno/utils"
)

// Reconstructor owns the geometry cache of a mesh and the reconstructions of
// the fields registered on it.
type Reconstructor struct {
	cfg      Config
	strategy Strategy
	resolver FaceResolver
	limit    bool
	logger   *slog.Logger
	opts     []Option

	refresh sync.Mutex
	mu      sync.RWMutex
	cache   *GeometryCache
	linear  *LinearOperator
	fields  map[string]*Reconstruction
}

// New validates cfg and runs the geometry phase. Invalid configuration and
// stencils smaller than the basis are returned as errors, cell local failures
// are recovered and listed by Diagnostics.
func New(ctx context.Context, geo GeometryProvider, stencils StencilProvider, cfg Config,
	opts ...Option) (rc *Reconstructor, err error) {
	o := newOptions(opts)
	rc = &Reconstructor{
		cfg:      cfg,
		strategy: NewStrategy(cfg),
		logger:   o.logger,
		opts:     opts,
		fields:   make(map[string]*Reconstruction),
	}
	rc.resolver = rc.strategy.Resolver()
	if o.resolver != nil {
		rc.resolver = o.resolver
	}
	rc.limit = cfg.LimitFaceValues || rc.strategy.Limit()
	if err = rc.build(ctx, geo, stencils); err != nil {
		return nil, err
	}
	return
}

func (rc *Reconstructor) build(ctx context.Context, geo GeometryProvider, stencils StencilProvider) error {
	start := time.Now()
	gc, err := NewGeometryCache(ctx, geo, stencils, rc.cfg, rc.opts...)
	if err != nil {
		return err
	}
	var lo *LinearOperator
	if rc.cfg.Strategy == STRATEGY_Linear {
		lo = NewLinearOperator(gc)
	}
	diag := gc.Diagnostics()
	rc.logger.Info("geometry cache built",
		"cells", gc.NumCells(), "faces", gc.NumFaces(), "order", rc.cfg.Order,
		"strategy", rc.strategy.Name(), "degraded", diag.Degraded(),
		"recovered", len(diag.Errors), "fingerprint", fmt.Sprintf("%016x", gc.Fingerprint()),
		"elapsed", time.Since(start))
	if diag.Degraded() > 0 {
		rc.logger.Warn("cells reconstructed below the requested order",
			"count", diag.Degraded(), "histogram", diag.OrderHistogram())
	}
	rc.mu.Lock()
	rc.cache, rc.linear = gc, lo
	rc.fields = make(map[string]*Reconstruction)
	rc.mu.Unlock()
	return nil
}

// Refresh rebuilds the geometry cache when the mesh fingerprint changed.
// Stored reconstructions are dropped on rebuild, and a Reconstruct running
// across the rebuild returns ErrGeometryChanged.
func (rc *Reconstructor) Refresh(ctx context.Context, geo GeometryProvider, stencils StencilProvider) (rebuilt bool, err error) {
	rc.refresh.Lock()
	defer rc.refresh.Unlock()
	fp := Fingerprint(geo, stencils)
	if fp == rc.Cache().Fingerprint() {
		return false, nil
	}
	rc.logger.Info("mesh changed, rebuilding geometry cache", "fingerprint", fmt.Sprintf("%016x", fp))
	if err = rc.build(ctx, geo, stencils); err != nil {
		return false, err
	}
	return true, nil
}

func (rc *Reconstructor) Cache() *GeometryCache {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.cache
}

func (rc *Reconstructor) Strategy() Strategy       { return rc.strategy }
func (rc *Reconstructor) Config() Config           { return rc.cfg }
func (rc *Reconstructor) Diagnostics() Diagnostics { return rc.Cache().Diagnostics() }

// Reconstruct fits and blends every cell of field and stores the result
// under fieldID, replacing an earlier one.
func (rc *Reconstructor) Reconstruct(ctx context.Context, fieldID string, field FieldSampler) (rec *Reconstruction, err error) {
	rc.mu.RLock()
	gc, lo := rc.cache, rc.linear
	rc.mu.RUnlock()
	nComp := field.NumComponents()
	if nComp < 1 {
		return nil, fmt.Errorf("%w: field %q has no components", ErrInvalidConfiguration, fieldID)
	}
	start := time.Now()
	rec = newReconstruction(fieldID, gc, nComp, rc.resolver, rc.limit)
	if lo != nil {
		err = rc.reconstructLinear(ctx, gc, lo, rec, field)
	} else {
		err = rc.reconstructNonlinear(ctx, gc, rec, field)
	}
	if err != nil {
		return nil, err
	}
	rc.mu.Lock()
	if rc.cache != gc {
		rc.mu.Unlock()
		return nil, fmt.Errorf("%w: field %q", ErrGeometryChanged, fieldID)
	}
	rc.fields[fieldID] = rec
	rc.mu.Unlock()
	rc.logger.Debug("field reconstructed", "field", fieldID, "components", nComp,
		"elapsed", time.Since(start))
	return
}

func (rc *Reconstructor) reconstructNonlinear(ctx context.Context, gc *GeometryCache,
	rec *Reconstruction, field FieldSampler) error {
	var (
		K       = gc.NumCells()
		pm      = utils.NewPartitionMap(rc.cfg.parallelDegree(), K)
		g, gctx = errgroup.WithContext(ctx)
	)
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		g.Go(func() error {
			var b []float64
			kMin, kMax := pm.GetBucketRange(bn)
			for k := kMin; k < kMax; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				cg := gc.GeometryFor(k)
				for n := 0; n < rec.nComp; n++ {
					ubar := field.Value(k, n)
					rec.means[n][k] = ubar
					if cg.Order == 0 {
						continue
					}
					sel := rc.strategy.Select(cg)
					cands := make([]Candidate, len(sel))
					for i, si := range sel {
						sg := &cg.Stencils[si]
						b = b[:0]
						for _, m := range sg.Cells {
							b = append(b, field.Value(m, n)-ubar)
						}
						c := sg.Fit.Solve(b)
						cands[i] = Candidate{
							Kind:   sg.Kind,
							Ideal:  sg.Ideal,
							Coeffs: c,
							Sigma:  SmoothnessValue(cg.B, c),
						}
					}
					bl := rc.strategy.Blend(cg, cands)
					rec.coeffs[k][n] = bl.Coeffs
					rec.sensor[k] = math.Max(rec.sensor[k], bl.Sensor)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (rc *Reconstructor) reconstructLinear(ctx context.Context, gc *GeometryCache, lo *LinearOperator,
	rec *Reconstruction, field FieldSampler) error {
	K := gc.NumCells()
	u := make([]float64, K)
	for n := 0; n < rec.nComp; n++ {
		for k := 0; k < K; k++ {
			u[k] = field.Value(k, n)
			rec.means[n][k] = u[k]
		}
		y, err := lo.ApplyParallel(ctx, u, rc.cfg.parallelDegree())
		if err != nil {
			return err
		}
		for k := 0; k < K; k++ {
			if c := lo.Coefficients(y, k); len(c) > 0 {
				rec.coeffs[k][n] = c
			}
		}
	}
	return nil
}

// Reconstruction returns the stored reconstruction of a field.
func (rc *Reconstructor) Reconstruction(fieldID string) (*Reconstruction, error) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	rec, ok := rc.fields[fieldID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, fieldID)
	}
	return rec, nil
}

// EvaluateFace returns the face average of one component of a stored field.
func (rc *Reconstructor) EvaluateFace(face int, fieldID string, component int) (float64, error) {
	rec, err := rc.Reconstruction(fieldID)
	if err != nil {
		return 0, err
	}
	return rec.EvaluateFace(face, component)
}

// ExchangeCoupled runs the coupled face exchange of a stored field.
func (rc *Reconstructor) ExchangeCoupled(ctx context.Context, fieldID string, coupler Coupler) error {
	rec, err := rc.Reconstruction(fieldID)
	if err != nil {
		return err
	}
	return rec.ExchangeCoupled(ctx, coupler)
}
