package poisson

import (
	"testing"

	"github.com/notargets/gopoisson/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The theta transform is a projection onto a complete B-orthonormal basis
// per parity: forward followed by backward must reproduce the parity-split
// field exactly up to roundoff, on one rank and on every supported theta
// decomposition.

func TestThetaTransformRoundTripSingleRank(t *testing.T) {
	var (
		s   = singleRankSolver(t, 3, 16, 2, 1)
		buf = randomComplexField(s.LocalLen(), 4)
		ref = append([]complex128(nil), buf...)
	)
	y, err := s.forwardTheta(buf)
	require.NoError(t, err)
	require.NoError(t, s.backwardTheta(y, buf))
	for i := range buf {
		assert.InDelta(t, real(ref[i]), real(buf[i]), 1.e-11)
		assert.InDelta(t, imag(ref[i]), imag(buf[i]), 1.e-11)
	}
}

func TestThetaTransformRoundTripDistributed(t *testing.T) {
	for _, p := range []int{2, 4, 8} {
		var (
			nr, ntheta = 2, 16
			geom       = uniformGeometry(t, nr, ntheta, 2, 1)
			global     = randomComplexField(nr*ntheta*2, int64(20+p))
			back       = make([]complex128, len(global))
		)
		grid, err := cart.NewGrid(p, 1)
		require.NoError(t, err)
		err = grid.Run(func(c *cart.Comm) error {
			s, errR := New(c, geom)
			if errR != nil {
				return errR
			}
			buf := make([]complex128, s.LocalLen())
			for kk := 0; kk < s.OLoc; kk++ {
				for j := 0; j < s.NLoc; j++ {
					for i := 0; i < nr; i++ {
						buf[s.LocalIndex(i, j, kk)] = global[i+nr*((s.NS+j)+ntheta*(s.OS+kk))]
					}
				}
			}
			y, errR := s.forwardTheta(buf)
			if errR != nil {
				return errR
			}
			if errR = s.backwardTheta(y, buf); errR != nil {
				return errR
			}
			for kk := 0; kk < s.OLoc; kk++ {
				for j := 0; j < s.NLoc; j++ {
					for i := 0; i < nr; i++ {
						back[i+nr*((s.NS+j)+ntheta*(s.OS+kk))] = buf[s.LocalIndex(i, j, kk)]
					}
				}
			}
			return nil
		})
		require.NoError(t, err)
		for i := range global {
			assert.InDelta(t, real(global[i]), real(back[i]), 1.e-11, "P=%d index %d", p, i)
			assert.InDelta(t, imag(global[i]), imag(back[i]), 1.e-11, "P=%d index %d", p, i)
		}
	}
}

func TestThetaTransformMatchesSingleRank(t *testing.T) {
	// The reduced forward coefficients on P ranks are the single-rank
	// coefficients for the same theta rows: rank rows [NS, NS+NLoc) hold
	// the modes whose eigenvalues sit at Lambda[NS..NS+NLoc).
	var (
		nr, ntheta = 2, 8
		geom       = uniformGeometry(t, nr, ntheta, 2, 1)
		global     = randomComplexField(nr*ntheta*2, 30)
		sRef       = singleRankSolver(t, nr, ntheta, 2, 1)
	)
	refBuf := append([]complex128(nil), global...)
	require.NoError(t, sRef.splitParity(refBuf))
	yRef, err := sRef.forwardTheta(refBuf)
	require.NoError(t, err)

	grid, err := cart.NewGrid(4, 1)
	require.NoError(t, err)
	coef := make([]float64, ntheta*2*nr*2) // [theta mode][2Nr] per phi slot
	err = grid.Run(func(c *cart.Comm) error {
		s, errR := New(c, geom)
		if errR != nil {
			return errR
		}
		buf := make([]complex128, s.LocalLen())
		for kk := 0; kk < s.OLoc; kk++ {
			for j := 0; j < s.NLoc; j++ {
				for i := 0; i < nr; i++ {
					buf[s.LocalIndex(i, j, kk)] = global[i+nr*((s.NS+j)+ntheta*(s.OS+kk))]
				}
			}
		}
		if errR = s.splitParity(buf); errR != nil {
			return errR
		}
		y, errR := s.forwardTheta(buf)
		if errR != nil {
			return errR
		}
		for kk := 0; kk < s.OLoc; kk++ {
			data := y[0][kk].Data()
			for j := 0; j < s.NLoc; j++ {
				copy(coef[((s.NS+j)+ntheta*(s.OS+kk))*2*nr:], data[j*2*nr:(j+1)*2*nr])
			}
		}
		return nil
	})
	require.NoError(t, err)
	for kk := 0; kk < 2; kk++ {
		refData := yRef[0][kk].Data()
		for j := 0; j < ntheta; j++ {
			for c := 0; c < 2*nr; c++ {
				assert.InDelta(t, refData[j*2*nr+c], coef[(j+ntheta*kk)*2*nr+c], 1.e-12,
					"mode %d component %d", j, c)
			}
		}
	}
}
