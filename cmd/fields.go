package cmd

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

type InitType uint

const (
	INIT_Linear InitType = iota
	INIT_Quadratic
	INIT_Sine
	INIT_Step
)

var (
	InitNames = map[string]InitType{
		"linear":    INIT_Linear,
		"quadratic": INIT_Quadratic,
		"sine":      INIT_Sine,
		"step":      INIT_Step,
	}
	InitPrintNames = []string{"Linear", "Quadratic", "Sine", "Step"}
)

func (it InitType) Print() (txt string) {
	txt = InitPrintNames[it]
	return
}

func NewInitType(label string) (it InitType, err error) {
	var ok bool
	label = strings.ToLower(label)
	if it, ok = InitNames[label]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
	}
	return
}

// Smooth reports whether the field has no discontinuities.
func (it InitType) Smooth() bool { return it != INIT_Step }

func (it InitType) Field() func(x r3.Vec) float64 {
	switch it {
	case INIT_Linear:
		return func(x r3.Vec) float64 { return 1 + 2*x.X - x.Y + 0.5*x.Z }
	case INIT_Quadratic:
		return func(x r3.Vec) float64 { return 1 + x.X*x.X - x.Y*x.Z + 0.5*x.Z*x.Z }
	case INIT_Sine:
		return func(x r3.Vec) float64 {
			return math.Sin(2*math.Pi*x.X) * math.Sin(2*math.Pi*x.Y) * math.Sin(2*math.Pi*x.Z)
		}
	default:
		return func(x r3.Vec) float64 {
			if x.X+0.5*x.Y < 0.6 {
				return 1
			}
			return 0.125
		}
	}
}
