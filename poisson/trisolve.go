package poisson

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

/*
Per-mode radial solve.

After the forward theta transform, row j of the reduced slab holds the
(real, imaginary) coefficient pairs of the mode with eigenvalue
Lambda[NS+j]. Each mode closes into a symmetric positive definite
tridiagonal system in r: the constant operator plus the -λ·dv/r² diagonal
update, with an outer-boundary correction that imposes the analytic
power-law decay r^(-(1+s)/2), s = sqrt(1-4λ), of the mode at infinity.
*/

func (s *Solver) radialSolve(y workSet) (err error) {
	var (
		g    = s.Geom
		nr   = g.Nr
		band = make([]float64, 2*nr)
		rhs  = make([]float64, 2*nr)
		rows = s.NLoc
	)
	for kk := 0; kk < s.OLoc; kk++ {
		var (
			mode = s.Modes[kk]
			Y0   = y[0][kk]
			data = Y0.Data()
		)
		for j := 0; j < rows; j++ {
			lam := mode.Lambda[s.NS+j]
			for i := 0; i < nr; i++ {
				band[2*i] = g.Diag0[i] - lam*g.DVr[i]/(g.R[i]*g.R[i])
				if i < nr-1 {
					band[2*i+1] = g.Offdiag0[i]
				} else {
					band[2*i+1] = 0
				}
			}
			sdecay := math.Sqrt(1 - 4*lam)
			band[2*(nr-1)] += g.DAr[nr] * (1 + sdecay) / (2 * g.RIF[nr]) *
				math.Pow(g.R[nr-1]/g.RIF[nr], sdecay)

			for i := 0; i < nr; i++ {
				rhs[2*i] = -data[j*2*nr+2*i] * g.DVr[i]
				rhs[2*i+1] = -data[j*2*nr+2*i+1] * g.DVr[i]
			}

			var ch mat.BandCholesky
			if ok := ch.Factorize(mat.NewSymBandDense(nr, 1, band)); !ok {
				err = fmt.Errorf("radial tridiagonal solve not SPD for theta mode %d, phi wavenumber %d, lambda=%g: diag=%v offdiag=%v",
					s.NS+j, mode.K, lam, bandDiag(band, nr), bandOff(band, nr))
				return
			}
			var x mat.Dense
			if err = ch.SolveTo(&x, mat.NewDense(nr, 2, rhs)); err != nil {
				err = fmt.Errorf("radial tridiagonal solve failed for theta mode %d, phi wavenumber %d, lambda=%g: %w",
					s.NS+j, mode.K, lam, err)
				return
			}
			for i := 0; i < nr; i++ {
				data[j*2*nr+2*i] = x.At(i, 0)
				data[j*2*nr+2*i+1] = x.At(i, 1)
			}
		}
	}
	return
}

func bandDiag(band []float64, nr int) (d []float64) {
	d = make([]float64, nr)
	for i := range d {
		d[i] = band[2*i]
	}
	return
}

func bandOff(band []float64, nr int) (e []float64) {
	e = make([]float64, nr-1)
	for i := range e {
		e[i] = band[2*i+1]
	}
	return
}
