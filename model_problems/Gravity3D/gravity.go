package Gravity3D

import (
	"fmt"
	"math"
	"sync"

	"github.com/notargets/gopoisson/InputParameters"
	"github.com/notargets/gopoisson/cart"
	"github.com/notargets/gopoisson/poisson"
)

type CaseType uint8

const (
	CaseZero CaseType = iota
	CasePointMass
	CaseMonopoleShell
	CaseQuadrupoleShell
)

var caseNames = map[string]CaseType{
	"zero":             CaseZero,
	"point-mass":       CasePointMass,
	"monopole-shell":   CaseMonopoleShell,
	"quadrupole-shell": CaseQuadrupoleShell,
}

// Gravity3D drives the distributed Poisson solver on a gravitational
// model problem: it builds the grid from the input parameters, runs one
// SPMD solve over the process grid, and reports error norms against the
// analytic potential where one exists.
type Gravity3D struct {
	IP    *InputParameters.PoissonParameters
	Geom  *poisson.Geometry
	Case  CaseType
	AIdx  int     // radial interface index bounding the shell
	A     float64 // shell radius
	LinfE float64 // L-inf error of the last run, manufactured cases
	L2E   float64 // L2 error of the last run
	MinP  float64 // minimum potential of the last run
}

func NewGravity3D(ip *InputParameters.PoissonParameters) (gr *Gravity3D, err error) {
	caseType, ok := caseNames[ip.Case]
	if !ok {
		err = fmt.Errorf("unknown case %q", ip.Case)
		return
	}
	rIF := poisson.StretchedRadii(ip.Nr, ip.RMax, ip.StretchRatio)
	thetaIF, theta := poisson.UniformAngles(ip.Ntheta)
	geom, err := poisson.NewGeometry(rIF, thetaIF, theta, ip.Nphi)
	if err != nil {
		return
	}
	gr = &Gravity3D{
		IP:   ip,
		Geom: geom,
		Case: caseType,
	}
	// Snap the shell boundary to a radial interface so the source support
	// is grid-aligned at every refinement level.
	gr.AIdx = int(math.Round(ip.ShellFraction * float64(ip.Nr)))
	if gr.AIdx < 1 {
		gr.AIdx = 1
	}
	if gr.AIdx > ip.Nr-1 {
		gr.AIdx = ip.Nr - 1
	}
	gr.A = rIF[gr.AIdx]
	return
}

// Density evaluates the source at global cell (i, j, k).
func (gr *Gravity3D) Density(i, j, k int) float64 {
	var (
		g = gr.Geom
		c = gr.IP.SourceAmplitude
	)
	switch gr.Case {
	case CasePointMass:
		if i == g.Nr/2 && j == g.Ntheta/2 && k == g.Nphi/2 {
			return c / g.CellVolume(i, j)
		}
		return 0
	case CaseMonopoleShell:
		if g.R[i] < gr.A {
			return c
		}
		return 0
	case CaseQuadrupoleShell:
		if g.R[i] < gr.A {
			return c * g.R[i] * legendreP2(math.Cos(g.Theta[j]))
		}
		return 0
	}
	return 0
}

// Potential evaluates the analytic potential at global cell (i, j, k) for
// the manufactured cases. It is exact for the shells and undefined (0)
// otherwise.
func (gr *Gravity3D) Potential(i, j, k int) float64 {
	var (
		g = gr.Geom
		c = gr.IP.SourceAmplitude
		a = gr.A
		r = g.R[i]
	)
	switch gr.Case {
	case CaseMonopoleShell:
		if r < a {
			return c*r*r/6 - c*a*a/2
		}
		return -c * a * a * a / (3 * r)
	case CaseQuadrupoleShell:
		p2 := legendreP2(math.Cos(g.Theta[j]))
		if r < a {
			return (c*r*r*r/6 - c*a*r*r/5) * p2
		}
		return -c * math.Pow(a, 6) / (30 * r * r * r) * p2
	}
	return 0
}

func (gr *Gravity3D) Run() (err error) {
	var (
		ip = gr.IP
		mu sync.Mutex
	)
	fmt.Printf("Poisson Equation in 3 Dimensions, Spherical Coordinates\n")
	ip.Print()

	grid, err := cart.NewGrid(ip.ProcTheta, ip.ProcPhi)
	if err != nil {
		return
	}
	var (
		linf, l2 float64
		nCells   int
		minPhi   = math.Inf(1)
	)
	err = grid.Run(func(c *cart.Comm) error {
		s, errR := poisson.New(c, gr.Geom)
		if errR != nil {
			return errR
		}
		rho := make([]float64, s.LocalLen())
		for kk := 0; kk < s.OLoc; kk++ {
			for j := 0; j < s.NLoc; j++ {
				for i := 0; i < gr.Geom.Nr; i++ {
					rho[s.LocalIndex(i, j, kk)] = gr.Density(i, s.NS+j, s.OS+kk)
				}
			}
		}
		phi, errR := s.Solve(rho)
		if errR != nil {
			return errR
		}
		var (
			myLinf, myL2 float64
			myMin        = math.Inf(1)
		)
		for kk := 0; kk < s.OLoc; kk++ {
			for j := 0; j < s.NLoc; j++ {
				for i := 0; i < gr.Geom.Nr; i++ {
					val := phi[s.LocalIndex(i, j, kk)]
					if val < myMin {
						myMin = val
					}
					e := val - gr.Potential(i, s.NS+j, s.OS+kk)
					myLinf = math.Max(myLinf, math.Abs(e))
					myL2 += e * e
				}
			}
		}
		mu.Lock()
		linf = math.Max(linf, myLinf)
		l2 += myL2
		nCells += s.LocalLen()
		minPhi = math.Min(minPhi, myMin)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return
	}
	gr.MinP = minPhi
	gr.LinfE = linf
	gr.L2E = math.Sqrt(l2 / float64(nCells))
	switch gr.Case {
	case CaseMonopoleShell, CaseQuadrupoleShell:
		fmt.Printf("Linf error = %12.5e, L2 error = %12.5e\n", gr.LinfE, gr.L2E)
	default:
		fmt.Printf("min(Phi) = %12.5e\n", gr.MinP)
	}
	return
}

func legendreP2(x float64) float64 {
	return 0.5 * (3*x*x - 1)
}
