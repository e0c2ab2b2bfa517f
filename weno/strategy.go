package weno

// Candidate is one stencil's fit for one field component.
type Candidate struct {
	Kind   StencilKind
	Ideal  float64
	Coeffs []float64
	Sigma  float64
}

type Blended struct {
	Coeffs []float64
	Sensor float64
}

// Strategy decides which stencils are fitted and how their fits combine.
type Strategy interface {
	Name() string
	// Select returns the indices into cg.Stencils to fit.
	Select(cg *CellGeometry) []int
	Blend(cg *CellGeometry, cands []Candidate) Blended
	// Resolver is the default face resolution, Limit enables the face limiter.
	Resolver() FaceResolver
	Limit() bool
}

func NewStrategy(cfg Config) Strategy {
	wp := WeightParams{Epsilon: cfg.Epsilon, Exponent: cfg.Exponent, Theta: 1}
	switch cfg.Strategy {
	case STRATEGY_UpwindFit:
		return &upwindFit{nonlinear{wp: wp}}
	case STRATEGY_Hybrid:
		wp.Theta = cfg.SensorTheta
		return &hybrid{nonlinear: nonlinear{wp: wp}, threshold: cfg.HybridThreshold}
	case STRATEGY_Linear:
		return &linear{}
	default:
		return &nonlinear{wp: wp}
	}
}

func allStencils(cg *CellGeometry) (sel []int) {
	sel = make([]int, len(cg.Stencils))
	for i := range sel {
		sel[i] = i
	}
	return
}

func blendCandidates(cands []Candidate, wp WeightParams) (bl Blended) {
	var (
		ideal  = make([]float64, len(cands))
		sigma  = make([]float64, len(cands))
		coeffs = make([][]float64, len(cands))
	)
	for i, c := range cands {
		ideal[i], sigma[i], coeffs[i] = c.Ideal, c.Sigma, c.Coeffs
	}
	bl.Sensor = ShockSensor(sigma, wp.Epsilon)
	if len(cands) == 1 {
		bl.Coeffs = append([]float64(nil), cands[0].Coeffs...)
		return
	}
	bl.Coeffs = Blend(Weights(ideal, sigma, wp), coeffs)
	return
}

// nonlinear is the plain WENO blend over every surviving stencil.
type nonlinear struct {
	wp WeightParams
}

func (nl *nonlinear) Name() string                  { return "weno" }
func (nl *nonlinear) Select(cg *CellGeometry) []int { return allStencils(cg) }
func (nl *nonlinear) Resolver() FaceResolver        { return CentralResolver }
func (nl *nonlinear) Limit() bool                   { return false }
func (nl *nonlinear) Blend(_ *CellGeometry, cands []Candidate) Blended {
	return blendCandidates(cands, nl.wp)
}

// upwindFit blends like WENO and resolves faces by the flux direction with
// the face values bounded by the adjacent cell averages.
type upwindFit struct {
	nonlinear
}

func (uf *upwindFit) Name() string           { return "upwindfit" }
func (uf *upwindFit) Resolver() FaceResolver { return UpwindResolver }
func (uf *upwindFit) Limit() bool            { return true }

// hybrid uses the central fit alone where the sensor reads smooth and a
// sharpened nonlinear blend elsewhere.
type hybrid struct {
	nonlinear
	threshold float64
}

func (hy *hybrid) Name() string { return "hybrid" }

func (hy *hybrid) Blend(cg *CellGeometry, cands []Candidate) (bl Blended) {
	sigma := make([]float64, len(cands))
	for i, c := range cands {
		sigma[i] = c.Sigma
	}
	bl.Sensor = ShockSensor(sigma, hy.wp.Epsilon)
	if bl.Sensor < hy.threshold {
		central := 0
		for i, c := range cands {
			if c.Kind == STENCIL_Central {
				central = i
				break
			}
		}
		bl.Coeffs = append([]float64(nil), cands[central].Coeffs...)
		return
	}
	sensor := bl.Sensor
	bl = blendCandidates(cands, hy.wp)
	bl.Sensor = sensor
	return
}

// linear fits the central stencil only.
type linear struct{}

func (li *linear) Name() string           { return "linear" }
func (li *linear) Resolver() FaceResolver { return CentralResolver }
func (li *linear) Limit() bool            { return false }

func (li *linear) Select(cg *CellGeometry) []int {
	if c := cg.Central(); c >= 0 {
		return []int{c}
	}
	return nil
}

func (li *linear) Blend(_ *CellGeometry, cands []Candidate) (bl Blended) {
	if len(cands) > 0 {
		bl.Coeffs = append([]float64(nil), cands[0].Coeffs...)
	}
	return
}
