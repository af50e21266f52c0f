package poisson

import (
	"github.com/james-bowman/sparse"
)

/*
Discrete Laplacian assembly.

AssembleLaplacian builds the exact real-space operator the solver
inverts, as a sparse 7-point matrix over the full (r, theta, phi) grid:
finite-volume fluxes in r, the conservative sin-weighted stencil in
theta, and the periodic second difference in phi. Both radial boundary
rows carry the zero-flux closure of the constant operator; the per-mode
falloff correction applied during a solve touches only the outermost
radial row, so interior rows of solve(rho) satisfy L·phi = rho to
roundoff.

The assembly is global and serial; it backs the operator and residual
checks in the tests. The model-problem drivers evaluate their densities
in closed form and do not call it.
*/

// GlobalIndex flattens a global (i, j, k) cell triple, r fastest.
func (g *Geometry) GlobalIndex(i, j, k int) int {
	return i + g.Nr*(j+g.Ntheta*k)
}

// AssembleLaplacian returns the discrete spherical Laplacian in CSR form.
func (g *Geometry) AssembleLaplacian() *sparse.CSR {
	var (
		n   = g.Nr * g.Ntheta * g.Nphi
		dok = sparse.NewDOK(n, n)
		dth = g.DTheta
		dph = g.DPhi
	)
	sinIF := g.SinIF
	for k := 0; k < g.Nphi; k++ {
		for j := 0; j < g.Ntheta; j++ {
			for i := 0; i < g.Nr; i++ {
				var (
					row = g.GlobalIndex(i, j, k)
					r2  = g.R[i] * g.R[i]
					fth = 1 / (r2 * g.VolTh[j])
				)
				// Radial fluxes, divided by the cell volume.
				dok.Set(row, row, -g.Diag0[i]/g.DVr[i])
				if i > 0 {
					dok.Set(row, g.GlobalIndex(i-1, j, k), -g.Offdiag0[i-1]/g.DVr[i])
				}
				if i < g.Nr-1 {
					dok.Set(row, g.GlobalIndex(i+1, j, k), -g.Offdiag0[i]/g.DVr[i])
				}
				// Theta stencil; the pole faces carry sin(0) = sin(pi) = 0.
				add(dok, row, row, -(sinIF[j]+sinIF[j+1])/(dth*dth)*fth)
				if j > 0 {
					add(dok, row, g.GlobalIndex(i, j-1, k), sinIF[j]/(dth*dth)*fth)
				}
				if j < g.Ntheta-1 {
					add(dok, row, g.GlobalIndex(i, j+1, k), sinIF[j+1]/(dth*dth)*fth)
				}
				// Periodic phi second difference.
				fph := fth / (g.SinC[j] * dph * dph)
				add(dok, row, row, -2*fph)
				add(dok, row, g.GlobalIndex(i, j, (k+1)%g.Nphi), fph)
				add(dok, row, g.GlobalIndex(i, j, (k-1+g.Nphi)%g.Nphi), fph)
			}
		}
	}
	return dok.ToCSR()
}

// ApplyLaplacian computes L·x for a full-grid field in GlobalIndex order.
func ApplyLaplacian(L *sparse.CSR, x []float64) (y []float64) {
	y = make([]float64, len(x))
	L.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
	return
}

func add(dok *sparse.DOK, i, j int, v float64) {
	dok.Set(i, j, dok.At(i, j)+v)
}
