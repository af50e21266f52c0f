package poisson

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEigenbasisOrthonormality(t *testing.T) {
	g := uniformGeometry(t, 4, 16, 8, 1)
	for _, k := range []int{0, 1, 3, 4, 7} {
		mb, err := g.angularEigenbasis(k)
		require.NoError(t, err)
		m := g.Ntheta / 2
		for parity := Even; parity <= Odd; parity++ {
			V := mb.V[parity]
			for mu := 0; mu < m; mu++ {
				for nu := mu; nu < m; nu++ {
					var dot float64
					for j := 0; j < m; j++ {
						dot += V.At(j, mu) * V.At(j, nu) * g.VolTh[j]
					}
					want := 0.
					if mu == nu {
						want = 1
					}
					assert.InDelta(t, want, dot, 1.e-12,
						"B-orthonormality fails for k=%d parity=%d (%d,%d)", k, parity, mu, nu)
				}
			}
		}
	}
}

func TestEigenvaluesInSupportedRange(t *testing.T) {
	g := uniformGeometry(t, 4, 32, 16, 1)
	for k := 0; k < 16; k++ {
		mb, err := g.angularEigenbasis(k)
		require.NoError(t, err)
		for j, lam := range mb.Lambda {
			assert.LessOrEqual(t, lam, 1.e-10, "k=%d mode %d", k, j)
		}
	}
}

func TestEigenvaluesApproximateSphericalHarmonics(t *testing.T) {
	// On a fine axisymmetric grid the discrete eigenvalues approach
	// -l(l+1): even parity carries l = 0, 2, 4, ..., odd carries 1, 3, ...
	g := uniformGeometry(t, 4, 64, 2, 1)
	mb, err := g.angularEigenbasis(0)
	require.NoError(t, err)
	var (
		m    = g.Ntheta / 2
		even = append([]float64(nil), mb.Lambda[:m]...)
		odd  = append([]float64(nil), mb.Lambda[m:]...)
	)
	// Eigenvalues come out ascending; the physical ladder starts at the top.
	assert.InDelta(t, 0, even[m-1], 1.e-9, "the monopole mode is exact")
	assert.InEpsilon(t, -6, even[m-2], 0.05, "l=2")
	assert.InEpsilon(t, -20, even[m-3], 0.05, "l=4")
	assert.InEpsilon(t, -2, odd[m-1], 0.05, "l=1")
	assert.InEpsilon(t, -12, odd[m-2], 0.05, "l=3")
}

func TestEigenbasisDecomposesLegendre(t *testing.T) {
	// P2(cos theta) is even about the equator; its projection onto the
	// k=0 even basis must concentrate on the l=2 mode as the grid refines.
	g := uniformGeometry(t, 4, 64, 2, 1)
	mb, err := g.angularEigenbasis(0)
	require.NoError(t, err)
	var (
		m    = g.Ntheta / 2
		V    = mb.V[Even]
		coef = make([]float64, m)
	)
	for mu := 0; mu < m; mu++ {
		for j := 0; j < m; j++ {
			x := math.Cos(g.Theta[j])
			coef[mu] += V.At(j, mu) * g.VolTh[j] * 0.5 * (3*x*x - 1)
		}
	}
	// Energy concentrates on the mode whose eigenvalue is nearest -6.
	var best int
	for mu := range coef {
		if math.Abs(mb.Lambda[mu]+6) < math.Abs(mb.Lambda[best]+6) {
			best = mu
		}
	}
	var total, captured float64
	for mu, cf := range coef {
		total += cf * cf
		if mu == best {
			captured = cf * cf
		}
	}
	assert.Greater(t, captured/total, 0.999)
}
