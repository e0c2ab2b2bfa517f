package weno

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/notargets/goweno/basis"
)

type StrategyType uint

const (
	STRATEGY_WENO StrategyType = iota
	STRATEGY_UpwindFit
	STRATEGY_Hybrid
	STRATEGY_Linear
)

var (
	StrategyNames = map[string]StrategyType{
		"weno":      STRATEGY_WENO,
		"upwindfit": STRATEGY_UpwindFit,
		"hybrid":    STRATEGY_Hybrid,
		"linear":    STRATEGY_Linear,
	}
	StrategyPrintNames = []string{"WENO", "Upwind Fit", "Hybrid", "Linear"}
)

func (st StrategyType) Print() (txt string) {
	if int(st) < len(StrategyPrintNames) {
		txt = StrategyPrintNames[st]
	}
	return
}

func (st StrategyType) String() string {
	for name, s := range StrategyNames {
		if s == st {
			return name
		}
	}
	return fmt.Sprintf("StrategyType(%d)", uint(st))
}

func NewStrategyType(label string) (st StrategyType, err error) {
	var ok bool
	label = strings.ToLower(strings.TrimSpace(label))
	if st, ok = StrategyNames[label]; !ok {
		err = fmt.Errorf("%w: unable to use strategy named %q", ErrInvalidConfiguration, label)
	}
	return
}

// Config holds the reconstruction inputs.
type Config struct {
	Order int // polynomial order r, 1..basis.MaxOrder
	// Ideal linear weights before normalisation
	CentralWeight, SectorWeight float64
	Epsilon                     float64 // regularisation in the nonlinear weights
	Exponent                    int     // p
	SensorTheta                 float64 // exponent on sigma in hybrid mode
	HybridThreshold             float64
	// Relative tolerance for Jacobian, volume and rank checks
	DegeneracyEpsilon float64
	Strategy          StrategyType
	LimitFaceValues   bool
	ParallelDegree    int // 0 selects runtime.NumCPU()
}

func DefaultConfig() Config {
	return Config{
		Order:             2,
		CentralWeight:     1000,
		SectorWeight:      1,
		Epsilon:           1.e-5,
		Exponent:          2,
		SensorTheta:       2,
		HybridThreshold:   0.5,
		DegeneracyEpsilon: 1.e-10,
		Strategy:          STRATEGY_WENO,
	}
}

func (c Config) Validate() error {
	bad := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}
	finite := func(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
	switch {
	case c.Order < 1 || c.Order > basis.MaxOrder:
		return bad("order %d outside [1,%d]", c.Order, basis.MaxOrder)
	case !finite(c.Epsilon) || c.Epsilon <= 0:
		return bad("epsilon must be positive, have %g", c.Epsilon)
	case c.Exponent < 1:
		return bad("exponent must be at least 1, have %d", c.Exponent)
	case !finite(c.CentralWeight) || c.CentralWeight <= 0:
		return bad("central weight must be positive, have %g", c.CentralWeight)
	case !finite(c.SectorWeight) || c.SectorWeight <= 0:
		return bad("sector weight must be positive, have %g", c.SectorWeight)
	case !finite(c.DegeneracyEpsilon) || c.DegeneracyEpsilon <= 0 || c.DegeneracyEpsilon >= 1:
		return bad("degeneracy epsilon must lie in (0,1), have %g", c.DegeneracyEpsilon)
	case c.ParallelDegree < 0:
		return bad("negative parallel degree %d", c.ParallelDegree)
	case int(c.Strategy) >= len(StrategyPrintNames):
		return bad("unknown strategy %d", uint(c.Strategy))
	}
	if c.Strategy == STRATEGY_Hybrid {
		if !finite(c.SensorTheta) || c.SensorTheta <= 0 {
			return bad("sensor theta must be positive, have %g", c.SensorTheta)
		}
		if !finite(c.HybridThreshold) || c.HybridThreshold < 0 || c.HybridThreshold > 1 {
			return bad("hybrid threshold must lie in [0,1], have %g", c.HybridThreshold)
		}
	}
	return nil
}

func (c Config) parallelDegree() int {
	if c.ParallelDegree == 0 {
		return runtime.NumCPU()
	}
	return c.ParallelDegree
}

func (c Config) idealWeight(s Stencil) float64 {
	if s.Weight > 0 {
		return s.Weight
	}
	if s.Kind == STENCIL_Central {
		return c.CentralWeight
	}
	return c.SectorWeight
}
