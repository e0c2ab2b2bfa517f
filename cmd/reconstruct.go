/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/InputParameters"
	"github.com/notargets/goweno/mesh"
	"github.com/notargets/goweno/stencil"
	"github.com/notargets/goweno/weno"
)

type Reconstruct3D struct {
	MeshFile string
	ICFile   string
	Output   string
	Box      []int
	Order    int
	Strategy string
	InitType string
	Profile  bool
	Perf     bool
	Verbose  bool
}

// ReconstructCmd represents the reconstruct command
var ReconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Reconstruct an analytic field on a mesh and report face errors",
	Long: `
Builds the geometry cache for a Gmsh 2.2 mesh (or a structured tetrahedral box),
reconstructs the cell averages of an analytic field and writes the blended
coefficients,

goweno reconstruct -F mesh.msh -I input.yaml -o coefficients.csv.lz4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r3d := &Reconstruct3D{
			MeshFile: viper.GetString("meshFile"),
			ICFile:   viper.GetString("inputConditionsFile"),
			Output:   viper.GetString("output"),
			Box:      viper.GetIntSlice("box"),
			Order:    viper.GetInt("order"),
			Strategy: viper.GetString("strategy"),
			InitType: viper.GetString("initType"),
			Profile:  viper.GetBool("profile"),
			Perf:     viper.GetBool("perf"),
			Verbose:  viper.GetBool("verbose"),
		}
		if r3d.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		return RunReconstruct(cmd.Context(), r3d, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(ReconstructCmd)
	flags := ReconstructCmd.Flags()
	flags.StringP("meshFile", "F", "", "mesh file to read in Gmsh 2.2 (.msh) format")
	flags.StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- PolynomialOrder\n\t- Strategy")
	flags.StringP("output", "o", "", "coefficient output, compressed when named .zst or .lz4")
	flags.IntSlice("box", []int{6, 6, 6}, "hexahedra per direction of a tetrahedral unit box when no mesh file is given")
	flags.IntP("order", "n", 0, "polynomial order, overrides the input file")
	flags.StringP("strategy", "s", "", "weno, upwindfit, hybrid or linear, overrides the input file")
	flags.StringP("initType", "i", "", "linear, quadratic, sine or step, overrides the input file")
	flags.Bool("profile", false, "write a CPU profile to the current directory")
	flags.Bool("perf", false, "count CPU instructions of the geometry phase")
	flags.BoolP("verbose", "v", false, "log per cell diagnostics")
	for _, name := range []string{"meshFile", "inputConditionsFile", "output", "box", "order",
		"strategy", "initType", "profile", "perf", "verbose"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			log.Fatal(err)
		}
	}
}

func (r3d *Reconstruct3D) parameters() (ip *InputParameters.WENOParameters, err error) {
	if r3d.ICFile != "" {
		if ip, err = InputParameters.ReadFile(r3d.ICFile); err != nil {
			return
		}
	} else {
		ip = &InputParameters.WENOParameters{Title: "goweno"}
	}
	if r3d.MeshFile != "" {
		ip.MeshFile = r3d.MeshFile
	}
	if len(ip.Box) == 0 {
		ip.Box = r3d.Box
	}
	if r3d.Order != 0 {
		ip.PolynomialOrder = r3d.Order
	}
	if r3d.Strategy != "" {
		ip.Strategy = r3d.Strategy
	}
	if r3d.InitType != "" {
		ip.InitType = r3d.InitType
	}
	if ip.InitType == "" {
		ip.InitType = "sine"
	}
	return
}

func loadMesh(ip *InputParameters.WENOParameters) (*mesh.Mesh, error) {
	if ip.MeshFile != "" {
		return mesh.ReadMeshFile(ip.MeshFile)
	}
	if len(ip.Box) != 3 {
		return nil, fmt.Errorf("box needs three dimensions, have %v", ip.Box)
	}
	return mesh.NewBoxMesh(ip.Box[0], ip.Box[1], ip.Box[2], r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
}

// RunReconstruct runs the geometry and reconstruction phases and reports the
// face errors against the exact face averages.
func RunReconstruct(ctx context.Context, r3d *Reconstruct3D, w io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		ip    *InputParameters.WENOParameters
		cfg   weno.Config
		it    InitType
		msh   *mesh.Mesh
		geo   *mesh.Provider
		rc    *weno.Reconstructor
		level = slog.LevelInfo
	)
	if ip, err = r3d.parameters(); err != nil {
		return
	}
	ip.Print(w)
	if cfg, err = ip.Config(); err != nil {
		return
	}
	if it, err = NewInitType(ip.InitType); err != nil {
		return
	}
	if msh, err = loadMesh(ip); err != nil {
		return
	}
	msh.PrintStatistics(w)
	if geo, err = mesh.NewProvider(msh); err != nil {
		return
	}
	if r3d.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sb := &stencil.Builder{
		Mesh:           geo,
		Order:          cfg.Order,
		ExtendRatio:    ip.StencilExtendRatio(),
		Sectors:        ip.UseSectors(),
		ParallelDegree: cfg.ParallelDegree,
	}
	start := time.Now()
	if err = sb.Build(ctx); err != nil {
		return
	}
	fmt.Fprintf(w, "Stencils of %d cells built in %v\n", sb.Size(), time.Since(start))

	geometryPhase := func() (err error) {
		rc, err = weno.New(ctx, geo, sb, cfg, weno.WithLogger(logger))
		return
	}
	start = time.Now()
	if r3d.Perf {
		count, ok, perr := measureInstructions(geometryPhase)
		if perr != nil {
			return perr
		}
		if ok {
			fmt.Fprintf(w, "Geometry phase: %d CPU instructions\n", count)
		} else {
			fmt.Fprintf(w, "Geometry phase: perf events unavailable\n")
		}
	} else if err = geometryPhase(); err != nil {
		return
	}
	fmt.Fprintf(w, "Geometry phase took %v\n", time.Since(start))
	fmt.Fprint(w, rc.Diagnostics().String())

	f := it.Field()
	u := geo.CellAverages(f, 2*cfg.Order+2)
	start = time.Now()
	rec, err := rc.Reconstruct(ctx, "u", weno.ScalarField(u))
	if err != nil {
		return
	}
	fmt.Fprintf(w, "Reconstruction of %s field took %v\n", it.Print(), time.Since(start))

	l1, lInf, nf, err := faceErrors(geo, rec, f)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "Face errors over %d faces: L1 = %8.5e, Linf = %8.5e\n", nf, l1, lInf)

	if r3d.Output != "" {
		var out io.WriteCloser
		if out, err = createOutput(r3d.Output); err != nil {
			return
		}
		if err = writeCoefficients(out, rec); err != nil {
			out.Close()
			return
		}
		if err = out.Close(); err != nil {
			return
		}
		fmt.Fprintf(w, "Coefficients written to %s\n", r3d.Output)
	}
	return
}

// faceErrors compares reconstructed and exact face averages on every face.
func faceErrors(geo *mesh.Provider, rec *weno.Reconstruction, f func(r3.Vec) float64) (l1, lInf float64, nf int, err error) {
	for face := 0; face < geo.NumFaces(); face++ {
		var v float64
		if v, err = rec.EvaluateFace(face, 0); err != nil {
			return
		}
		e := math.Abs(v - geo.FaceAverage(face, f))
		l1 += e
		lInf = math.Max(lInf, e)
		nf++
	}
	if nf > 0 {
		l1 /= float64(nf)
	}
	return
}
