package coupling

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/mesh"
	"github.com/notargets/goweno/stencil"
	"github.com/notargets/goweno/weno"
)

func TestTwoDomainReconstruction(t *testing.T) {
	ctx := context.Background()
	m, err := mesh.NewBoxMesh(3, 3, 3, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	full, err := mesh.NewProvider(m)
	require.NoError(t, err)
	b := &stencil.Builder{Mesh: full, Order: 1, ExtendRatio: 2}
	require.NoError(t, b.Build(ctx))

	// each domain sees the whole mesh, the faces crossing x = 0.5 become
	// coupled faces
	domain := func(k int) int {
		if full.CellCentre(k).X < 0.5 {
			return 0
		}
		return 1
	}
	views := make([]*mesh.Provider, 2)
	for d := range views {
		views[d], err = mesh.NewProvider(m)
		require.NoError(t, err)
	}
	var coupled []int
	for f := 0; f < full.NumFaces(); f++ {
		fi := full.Face(f)
		if fi.Neighbour < 0 || domain(fi.Owner) == domain(fi.Neighbour) {
			continue
		}
		coupled = append(coupled, f)
		for d, p := range views {
			require.NoError(t, p.Couple(f, 1-d, f, domain(fi.Owner) != d))
		}
	}
	require.NotEmpty(t, coupled)

	var (
		cfg   = weno.DefaultConfig()
		field = func(x r3.Vec) float64 { return math.Sin(4*x.X) + x.Y*x.Z }
	)
	cfg.Order = 1
	ref, err := weno.New(ctx, full, b, cfg)
	require.NoError(t, err)
	_, err = ref.Reconstruct(ctx, "u", weno.ScalarField(full.CellAverages(field, 4)))
	require.NoError(t, err)

	var (
		hub = NewHub(2)
		rcs = make([]*weno.Reconstructor, 2)
	)
	assert.Equal(t, 2, hub.NumDomains())
	for d, p := range views {
		rcs[d], err = weno.New(ctx, p, b, cfg)
		require.NoError(t, err)
		_, err = rcs[d].Reconstruct(ctx, "u", weno.ScalarField(p.CellAverages(field, 4)))
		require.NoError(t, err)
		_, err = rcs[d].EvaluateFace(coupled[0], "u", 0)
		assert.True(t, errors.Is(err, weno.ErrCouplingPending))
	}

	var g errgroup.Group
	for d := range rcs {
		g.Go(func() error { return rcs[d].ExchangeCoupled(ctx, "u", hub.Domain(d)) })
	}
	require.NoError(t, g.Wait())

	for _, f := range coupled {
		want, err := ref.EvaluateFace(f, "u", 0)
		require.NoError(t, err)
		for d := range rcs {
			v, err := rcs[d].EvaluateFace(f, "u", 0)
			require.NoError(t, err)
			assert.InDelta(t, want, v, 1e-12, "face %d domain %d", f, d)
		}
	}
}

func values(field string, domain, peer, n int) (out []weno.CoupledValue) {
	tag := 1.
	if field == "w" {
		tag = 2
	}
	for i := 0; i < n; i++ {
		out = append(out, weno.CoupledValue{
			Face:       i,
			PeerDomain: peer,
			PeerFace:   i,
			Values:     []float64{tag},
			Means:      []float64{float64(domain)},
		})
	}
	return
}

func TestExchangeRounds(t *testing.T) {
	// domain 0 is coupled to 1 and 2, which each only see domain 0
	var (
		ctx   = context.Background()
		hub   = NewHub(3)
		peers = [][]int{{1, 2}, {0}, {0}}
		g     errgroup.Group
	)
	for d := range peers {
		g.Go(func() error {
			for _, field := range []string{"u", "w", "u"} {
				var out []weno.CoupledValue
				for _, p := range peers[d] {
					out = append(out, values(field, d, p, 3)...)
				}
				in, err := hub.Domain(d).Exchange(ctx, field, out)
				if err != nil {
					return err
				}
				assert.Len(t, in, 3*len(peers[d]))
				from := make(map[int]int)
				for _, cv := range in {
					from[cv.Domain]++
					assert.Equal(t, float64(cv.Domain), cv.Means[0])
					assert.Equal(t, values(field, 0, 0, 1)[0].Values, cv.Values, "field %s", field)
				}
				for _, p := range peers[d] {
					assert.Equal(t, 3, from[p])
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestExchangeErrors(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(2)
	_, err := hub.Domain(0).Exchange(ctx, "u", values("u", 0, 0, 1))
	assert.Error(t, err)

	var g errgroup.Group
	g.Go(func() error {
		_, err := hub.Domain(0).Exchange(ctx, "u", values("u", 0, 1, 1))
		return err
	})
	g.Go(func() error {
		_, err := hub.Domain(1).Exchange(ctx, "w", values("w", 1, 0, 1))
		return err
	})
	assert.ErrorContains(t, g.Wait(), "while exchanging")

	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = NewHub(2).Domain(0).Exchange(tctx, "u", values("u", 0, 1, 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	in, err := hub.Domain(1).Exchange(ctx, "u", nil)
	assert.NoError(t, err)
	assert.Empty(t, in)
}
