package InputParameters

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goweno/weno"
)

func TestWENOParameters(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Box: [4, 4, 2]
PolynomialOrder: 3
Strategy: Hybrid # weno, upwindfit, hybrid or linear
ExtendRatio: 2.5
Sectors: false
Epsilon: 1.e-6
Exponent: 4
SensorTheta: 3
HybridThreshold: 0
LimitFaceValues: true
InitType: step
`)
	var input WENOParameters
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, "Test Case", input.Title)
	assert.Equal(t, []int{4, 4, 2}, input.Box)
	assert.False(t, input.UseSectors())
	assert.Equal(t, 2.5, input.StencilExtendRatio())

	cfg, err := input.Config()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Order)
	assert.Equal(t, weno.STRATEGY_Hybrid, cfg.Strategy)
	assert.Equal(t, 1.e-6, cfg.Epsilon)
	assert.Equal(t, 4, cfg.Exponent)
	assert.Equal(t, 3., cfg.SensorTheta)
	assert.Equal(t, 0., cfg.HybridThreshold)
	assert.True(t, cfg.LimitFaceValues)
	// Unset values keep their defaults
	def := weno.DefaultConfig()
	assert.Equal(t, def.CentralWeight, cfg.CentralWeight)
	assert.Equal(t, def.DegeneracyEpsilon, cfg.DegeneracyEpsilon)

	var buf bytes.Buffer
	input.Print(&buf)
	assert.Contains(t, buf.String(), "Test Case")
}

func TestWENOParametersDefaults(t *testing.T) {
	var input WENOParameters
	require.NoError(t, input.Parse([]byte(`Title: defaults`)))
	assert.True(t, input.UseSectors())
	assert.Equal(t, 2., input.StencilExtendRatio())
	cfg, err := input.Config()
	require.NoError(t, err)
	assert.Equal(t, weno.DefaultConfig(), cfg)
}

func TestWENOParametersInvalid(t *testing.T) {
	for _, in := range []string{
		"Strategy: central",
		"PolynomialOrder: 9",
		"Epsilon: -1",
	} {
		var input WENOParameters
		require.NoError(t, input.Parse([]byte(in)))
		_, err := input.Config()
		assert.True(t, errors.Is(err, weno.ErrInvalidConfiguration), in)
	}
}

func TestReadFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte("Title: file\nPolynomialOrder: 1\n"), 0644))
	ip, err := ReadFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, 1, ip.PolynomialOrder)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
