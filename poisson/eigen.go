package poisson

import (
	"fmt"
	"math"

	"github.com/notargets/gopoisson/utils"
	"gonum.org/v1/gonum/mat"
)

const (
	Even = iota
	Odd
)

// ModeBasis holds the angular eigendecomposition for one phi wavenumber:
// two half-sized eigenvector bases, one per equatorial parity, and the
// concatenated eigenvalues (even modes first, odd modes second). The
// bases are orthonormal under the VolTh volume weight.
type ModeBasis struct {
	K      int
	Lambda []float64        // len Ntheta
	V      [2]utils.Matrix  // Ntheta/2 x Ntheta/2, columns are eigenvectors
}

// angularEigenbasis diagonalizes the discrete theta operator for global
// wavenumber k. The operator commutes with equatorial reflection, so it
// splits into even and odd problems of half size: the even problem closes
// the equator row with +c (Neumann), the odd with -c (Dirichlet).
//
// Each half problem is generalized symmetric, A·v = w·B·v with diagonal
// B[j,j] = VolTh[j]. It is folded into a standard symmetric problem
// C = B^-½·A·B^-½, factorized with EigenSym, and the eigenvectors are
// mapped back through B^-½, which leaves them B-orthonormal.
func (g *Geometry) angularEigenbasis(k int) (mb *ModeBasis, err error) {
	var (
		m      = g.Ntheta / 2
		dth    = g.DTheta
		lamPhi float64
		b, c   = make([]float64, m), make([]float64, m)
	)
	sk := 2 * math.Sin(0.5*float64(k)*g.DPhi) / g.DPhi
	lamPhi = sk * sk * dth

	for j := 0; j < m; j++ {
		sLo := g.SinIF[j]
		sHi := g.SinIF[j+1]
		c[j] = sHi / (dth * dth)
		b[j] = -(sLo+sHi)/(dth*dth) - lamPhi/(g.SinC[j]*dth)
	}

	mb = &ModeBasis{
		K:      k,
		Lambda: make([]float64, g.Ntheta),
	}
	for parity := Even; parity <= Odd; parity++ {
		var (
			sym  = mat.NewSymDense(m, nil)
			eig  mat.EigenSym
			last = b[m-1] + c[m-1]
		)
		if parity == Odd {
			last = b[m-1] - c[m-1]
		}
		for j := 0; j < m; j++ {
			bj := b[j]
			if j == m-1 {
				bj = last
			}
			sym.SetSym(j, j, bj/g.VolTh[j])
			if j < m-1 {
				sym.SetSym(j, j+1, c[j]/math.Sqrt(g.VolTh[j]*g.VolTh[j+1]))
			}
		}
		if ok := eig.Factorize(sym, true); !ok {
			err = fmt.Errorf("angular eigensolver failed for wavenumber k=%d parity=%d: diag=%v offdiag=%v",
				k, parity, b, c[:m-1])
			return
		}
		values := eig.Values(nil)
		U := mat.NewDense(m, m, nil)
		eig.VectorsTo(U)

		V := utils.NewMatrix(m, m)
		for j := 0; j < m; j++ {
			scale := 1 / math.Sqrt(g.VolTh[j])
			for mu := 0; mu < m; mu++ {
				V.Set(j, mu, U.At(j, mu)*scale)
			}
		}
		name := fmt.Sprintf("V_even[k=%d]", k)
		if parity == Odd {
			name = fmt.Sprintf("V_odd[k=%d]", k)
		}
		mb.V[parity] = V.SetReadOnly(name)

		for mu := 0; mu < m; mu++ {
			// The falloff exponent s = sqrt(1-4λ) requires λ <= 1/4. The
			// discrete operator is negative semi-definite, so anything
			// beyond roundoff above zero means a broken grid.
			if values[mu] > 0.25 {
				err = fmt.Errorf("spectral eigenvalue %g out of the supported range (<= 1/4) for k=%d parity=%d mode=%d",
					values[mu], k, parity, mu)
				return
			}
			mb.Lambda[parity*m+mu] = values[mu]
		}
	}
	return
}
