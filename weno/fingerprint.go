package weno

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *hasher) putFloat(x float64) {
	binary.LittleEndian.PutUint64(h.buf[:], math.Float64bits(x))
	_, _ = h.d.Write(h.buf[:])
}

func (h *hasher) putInt(i int) {
	binary.LittleEndian.PutUint64(h.buf[:], uint64(int64(i)))
	_, _ = h.d.Write(h.buf[:])
}

// Fingerprint hashes every geometric input of the cache: the cell
// decompositions, face loops, connectivity and stencil lists.
func Fingerprint(geo GeometryProvider, stencils StencilProvider) uint64 {
	h := &hasher{d: xxhash.New()}
	h.putInt(geo.NumCells())
	h.putInt(geo.NumFaces())
	for k := 0; k < geo.NumCells(); k++ {
		for _, p := range geo.CellFramePoints(k) {
			h.putFloat(p.X)
			h.putFloat(p.Y)
			h.putFloat(p.Z)
		}
		for _, t := range geo.CellTets(k) {
			for _, v := range t {
				h.putFloat(v.X)
				h.putFloat(v.Y)
				h.putFloat(v.Z)
			}
		}
		faces := geo.CellFaces(k)
		h.putInt(len(faces))
		for _, f := range faces {
			h.putInt(f)
		}
		list := stencils.Stencils(k)
		h.putInt(len(list))
		for _, s := range list {
			h.putInt(int(s.Kind))
			h.putFloat(s.Weight)
			h.putInt(len(s.Cells))
			for _, c := range s.Cells {
				h.putInt(c)
			}
		}
	}
	for f := 0; f < geo.NumFaces(); f++ {
		fi := geo.Face(f)
		h.putInt(fi.Owner)
		h.putInt(fi.Neighbour)
		h.putInt(fi.CoupledDomain)
		h.putInt(fi.CoupledFace)
		h.putInt(len(fi.Loop))
		for _, v := range fi.Loop {
			h.putFloat(v.X)
			h.putFloat(v.Y)
			h.putFloat(v.Z)
		}
	}
	return h.d.Sum64()
}
