package poisson

import (
	"fmt"

	"github.com/notargets/gopoisson/cart"
	"github.com/notargets/gopoisson/utils"
)

// Message tag bases; stage/level indices are added so every exchange leg
// of a solve carries a distinct tag.
const (
	tagFFTForward      = 1000
	tagFFTInverse      = 2000
	tagParitySplit     = 3000
	tagParityRecombine = 3100
	tagReduceForward   = 4000
	tagReduceBackward  = 5000
)

// Solver is an immutable handle over the spectral setup for one rank of
// the process grid: geometry, radial operator, bit-reversal table, and
// the per-wavenumber angular eigenbases for the phi slots this rank owns.
// Solve is stateless across calls, so a rank may hold several independent
// handles over different grids.
type Solver struct {
	Geom *Geometry
	Comm *cart.Comm

	P, Q       int // process grid extents along (theta, phi)
	NLoc, OLoc int // local block extents along (theta, phi)
	NS, OS     int // global start of the local block, 0-based

	BitRev utils.Index
	Modes  []*ModeBasis // one per local phi slot
}

// New builds the solver handle for this rank: validates the window
// against the process grid, builds the bit-reversal table, and solves the
// angular eigenproblems for every locally owned wavenumber. The handle is
// immutable afterwards.
func New(comm *cart.Comm, geom *Geometry) (s *Solver, err error) {
	var (
		p, q = comm.Dims()
	)
	if geom.Ntheta%p != 0 {
		err = fmt.Errorf("theta extent %d does not divide over %d process rows", geom.Ntheta, p)
		return
	}
	if geom.Nphi%q != 0 {
		err = fmt.Errorf("phi extent %d does not divide over %d process columns", geom.Nphi, q)
		return
	}
	s = &Solver{
		Geom: geom,
		Comm: comm,
		P:    p,
		Q:    q,
		NLoc: geom.Ntheta / p,
		OLoc: geom.Nphi / q,
	}
	pc, qc := comm.Coords()
	s.NS = pc * s.NLoc
	s.OS = qc * s.OLoc

	s.BitRev = BitReverseTable(geom.Nphi)
	s.Modes = make([]*ModeBasis, s.OLoc)
	for kk := 0; kk < s.OLoc; kk++ {
		// The FFT leaves slot kk holding wavenumber BitRev[OS+kk]; the
		// eigendata is stored in slot order so downstream consumers never
		// permute.
		if s.Modes[kk], err = geom.angularEigenbasis(s.BitRev[s.OS+kk]); err != nil {
			return nil, err
		}
	}
	return
}

// LocalLen is the number of cells in this rank's (r, theta, phi) window.
func (s *Solver) LocalLen() int {
	return s.Geom.Nr * s.NLoc * s.OLoc
}

// LocalIndex flattens a 0-based local (i, j, kk) triple: r fastest, phi
// slowest.
func (s *Solver) LocalIndex(i, j, kk int) int {
	return i + s.Geom.Nr*(j+s.NLoc*kk)
}

// Solve computes the potential for the local window of the source density
// rho. The layout is LocalIndex order. On error the returned field is nil
// and no partial result is surfaced.
func (s *Solver) Solve(rho []float64) (phi []float64, err error) {
	if len(rho) != s.LocalLen() {
		err = fmt.Errorf("source field has %d cells, local window wants %d", len(rho), s.LocalLen())
		return
	}
	buf := make([]complex128, len(rho))
	for i, val := range rho {
		buf[i] = complex(val, 0)
	}
	if err = s.forwardFFT(buf); err != nil {
		return nil, err
	}
	if err = s.splitParity(buf); err != nil {
		return nil, err
	}
	y, err := s.forwardTheta(buf)
	if err != nil {
		return nil, err
	}
	if err = s.radialSolve(y); err != nil {
		return nil, err
	}
	if err = s.backwardTheta(y, buf); err != nil {
		return nil, err
	}
	if err = s.recombineParity(buf); err != nil {
		return nil, err
	}
	if err = s.inverseFFT(buf); err != nil {
		return nil, err
	}
	phi = make([]float64, len(buf))
	for i, val := range buf {
		phi[i] = real(val)
	}
	return
}
