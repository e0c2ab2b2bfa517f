package InputParameters

import (
	"fmt"
	"io"
	"os"

	"github.com/ghodss/yaml"

	"github.com/notargets/goweno/weno"
)

// Parameters obtained from the YAML input file
type WENOParameters struct {
	Title             string   `yaml:"Title"`
	MeshFile          string   `yaml:"MeshFile"`
	Box               []int    `yaml:"Box"` // nx, ny, nz of a unit box when no mesh file is given
	PolynomialOrder   int      `yaml:"PolynomialOrder"`
	Strategy          string   `yaml:"Strategy"`
	ExtendRatio       float64  `yaml:"ExtendRatio"`
	Sectors           *bool    `yaml:"Sectors"`
	CentralWeight     float64  `yaml:"CentralWeight"`
	SectorWeight      float64  `yaml:"SectorWeight"`
	Epsilon           float64  `yaml:"Epsilon"`
	Exponent          int      `yaml:"Exponent"`
	SensorTheta       float64  `yaml:"SensorTheta"`
	HybridThreshold   *float64 `yaml:"HybridThreshold"`
	DegeneracyEpsilon float64  `yaml:"DegeneracyEpsilon"`
	LimitFaceValues   bool     `yaml:"LimitFaceValues"`
	ParallelDegree    int      `yaml:"ParallelDegree"`
	InitType          string   `yaml:"InitType"`
}

func (ip *WENOParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func ReadFile(filename string) (ip *WENOParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	ip = &WENOParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return
}

// UseSectors defaults to true.
func (ip *WENOParameters) UseSectors() bool {
	return ip.Sectors == nil || *ip.Sectors
}

// StencilExtendRatio defaults to 2.
func (ip *WENOParameters) StencilExtendRatio() float64 {
	if ip.ExtendRatio == 0 {
		return 2
	}
	return ip.ExtendRatio
}

// Config overlays the parameters that were set on weno.DefaultConfig and
// validates the result.
func (ip *WENOParameters) Config() (cfg weno.Config, err error) {
	cfg = weno.DefaultConfig()
	if ip.PolynomialOrder != 0 {
		cfg.Order = ip.PolynomialOrder
	}
	if ip.Strategy != "" {
		if cfg.Strategy, err = weno.NewStrategyType(ip.Strategy); err != nil {
			return
		}
	}
	if ip.CentralWeight != 0 {
		cfg.CentralWeight = ip.CentralWeight
	}
	if ip.SectorWeight != 0 {
		cfg.SectorWeight = ip.SectorWeight
	}
	if ip.Epsilon != 0 {
		cfg.Epsilon = ip.Epsilon
	}
	if ip.Exponent != 0 {
		cfg.Exponent = ip.Exponent
	}
	if ip.SensorTheta != 0 {
		cfg.SensorTheta = ip.SensorTheta
	}
	if ip.HybridThreshold != nil {
		cfg.HybridThreshold = *ip.HybridThreshold
	}
	if ip.DegeneracyEpsilon != 0 {
		cfg.DegeneracyEpsilon = ip.DegeneracyEpsilon
	}
	cfg.LimitFaceValues = ip.LimitFaceValues
	cfg.ParallelDegree = ip.ParallelDegree
	err = cfg.Validate()
	return
}

func (ip *WENOParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	if ip.MeshFile != "" {
		fmt.Fprintf(w, "[%s]\t= Mesh File\n", ip.MeshFile)
	} else {
		fmt.Fprintf(w, "%v\t\t= Box\n", ip.Box)
	}
	fmt.Fprintf(w, "[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Fprintf(w, "[%s]\t\t\t= Strategy\n", ip.Strategy)
	fmt.Fprintf(w, "%8.5f\t\t= Extend Ratio\n", ip.StencilExtendRatio())
	fmt.Fprintf(w, "[%t]\t\t\t= Sectors\n", ip.UseSectors())
	fmt.Fprintf(w, "%8.5g\t\t= Epsilon\n", ip.Epsilon)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Exponent\n", ip.Exponent)
	fmt.Fprintf(w, "[%t]\t\t\t= Limit Face Values\n", ip.LimitFaceValues)
	fmt.Fprintf(w, "[%s]\t\t\t= InitType\n", ip.InitType)
}
