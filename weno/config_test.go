package weno

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Order)
	assert.Equal(t, STRATEGY_WENO, cfg.Strategy)
	assert.Equal(t, 1000., cfg.idealWeight(Stencil{Kind: STENCIL_Central}))
	assert.Equal(t, 1., cfg.idealWeight(Stencil{Kind: STENCIL_Sector}))
	assert.Equal(t, 7., cfg.idealWeight(Stencil{Kind: STENCIL_Sector, Weight: 7}))
	assert.Greater(t, cfg.parallelDegree(), 0)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"order zero", func(c *Config) { c.Order = 0 }},
		{"order too high", func(c *Config) { c.Order = 8 }},
		{"epsilon", func(c *Config) { c.Epsilon = 0 }},
		{"epsilon nan", func(c *Config) { c.Epsilon = math.NaN() }},
		{"exponent", func(c *Config) { c.Exponent = 0 }},
		{"central weight", func(c *Config) { c.CentralWeight = -1 }},
		{"sector weight", func(c *Config) { c.SectorWeight = math.Inf(1) }},
		{"degeneracy", func(c *Config) { c.DegeneracyEpsilon = 1 }},
		{"degeneracy zero", func(c *Config) { c.DegeneracyEpsilon = 0 }},
		{"parallel", func(c *Config) { c.ParallelDegree = -2 }},
		{"strategy", func(c *Config) { c.Strategy = 9 }},
		{"hybrid theta", func(c *Config) { c.Strategy, c.SensorTheta = STRATEGY_Hybrid, 0 }},
		{"hybrid threshold", func(c *Config) { c.Strategy, c.HybridThreshold = STRATEGY_Hybrid, 1.5 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mod(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfiguration))
		})
	}
	// hybrid parameters are ignored by the other strategies
	cfg := DefaultConfig()
	cfg.SensorTheta = 0
	assert.NoError(t, cfg.Validate())
}

func TestStrategyType(t *testing.T) {
	for name, st := range StrategyNames {
		parsed, err := NewStrategyType(" " + name + " ")
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
		assert.Equal(t, name, st.String())
		assert.NotEmpty(t, st.Print())
	}
	st, err := NewStrategyType("Hybrid")
	require.NoError(t, err)
	assert.Equal(t, "Hybrid", st.Print())
	_, err = NewStrategyType("eno")
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Equal(t, "StrategyType(12)", StrategyType(12).String())
	assert.Equal(t, "central", STENCIL_Central.String())
	assert.Equal(t, "sector", STENCIL_Sector.String())
	assert.Equal(t, "StencilKind(5)", StencilKind(5).String())

	for st := STRATEGY_WENO; st <= STRATEGY_Linear; st++ {
		cfg := DefaultConfig()
		cfg.Strategy = st
		assert.Equal(t, st.String(), NewStrategy(cfg).Name())
	}
}

func TestResolvers(t *testing.T) {
	assert.Equal(t, 1., UpwindResolver(1, 2, 0.5))
	assert.Equal(t, 1., UpwindResolver(1, 2, 0))
	assert.Equal(t, 2., UpwindResolver(1, 2, -0.5))
	assert.Equal(t, 1.5, CentralResolver(1, 2, 3))
	assert.Equal(t, 2., clamp(3, 2, 1))
	assert.Equal(t, 1., clamp(0, 2, 1))
	assert.Equal(t, 1.5, clamp(1.5, 2, 1))
}

func TestCellErrorFormatting(t *testing.T) {
	ce := &CellError{Cell: 3, Stencil: 1, Face: -1, Err: ErrRankDeficientStencil}
	assert.True(t, errors.Is(ce, ErrRankDeficientStencil))
	assert.Equal(t, fmt.Sprintf("cell 3 stencil 1: %v", ErrRankDeficientStencil), ce.Error())
	ce = &CellError{Cell: 3, Stencil: -1, Face: 12, Err: ErrDegenerateGeometry}
	assert.Contains(t, ce.Error(), "face 12")
	ce = &CellError{Cell: 3, Stencil: -1, Face: -1, Err: ErrDegenerateGeometry}
	assert.Equal(t, fmt.Sprintf("cell 3: %v", ErrDegenerateGeometry), ce.Error())
}
