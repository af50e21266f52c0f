package poisson

import (
	"testing"

	"github.com/notargets/gopoisson/utils"
	"github.com/stretchr/testify/assert"
)

func TestLaplacianAnnihilatesConstants(t *testing.T) {
	// Every row of the assembled operator is a flux difference with
	// zero-flux radial closures, so constants are in its null space.
	g := uniformGeometry(t, 8, 8, 4, 1)
	L := g.AssembleLaplacian()
	res := ApplyLaplacian(L, utils.ConstArray(8*8*4, 3))
	assert.InDelta(t, 0, utils.LInfNorm(res), 1.e-8)
}

func TestLaplacianOfRadialQuadratic(t *testing.T) {
	// The face-centered difference of r² is exact on a uniform grid, so
	// L(r²) = 6 holds to roundoff on every row the boundary closure does
	// not touch.
	g := uniformGeometry(t, 16, 4, 4, 2)
	L := g.AssembleLaplacian()
	f := make([]float64, 16*4*4)
	for k := 0; k < g.Nphi; k++ {
		for j := 0; j < g.Ntheta; j++ {
			for i := 0; i < g.Nr; i++ {
				f[g.GlobalIndex(i, j, k)] = g.R[i] * g.R[i]
			}
		}
	}
	res := ApplyLaplacian(L, f)
	for k := 0; k < g.Nphi; k++ {
		for j := 0; j < g.Ntheta; j++ {
			for i := 0; i < g.Nr-1; i++ {
				assert.InDelta(t, 6, res[g.GlobalIndex(i, j, k)], 1.e-9, "cell (%d,%d,%d)", i, j, k)
			}
		}
	}
}
