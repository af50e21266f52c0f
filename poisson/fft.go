package poisson

import (
	"math"
	"math/cmplx"

	"github.com/notargets/gopoisson/cart"
	"github.com/notargets/gopoisson/utils"
)

/*
Distributed in-place radix-2 complex FFT along the phi axis.

The forward transform runs log₂(Nphi) decimation-in-frequency butterfly
stages with stride di = Nphi/2, Nphi/4, ..., 1 and twiddle base angle
-2π/(2·di), leaving the spectrum in bit-reversed slot order. A stage whose
pairs fit inside the local phi block runs locally; otherwise the whole
slab is exchanged with the partner rank di/OLoc blocks away, the lower
half of each pair applying the additive update and the upper half the
subtractive update with twiddle.

The inverse runs the stages in the opposite order with conjugate twiddle,
the twiddle factor moved onto the partner addend, and a single 1/Nphi
pre-scale.
*/

func (s *Solver) forwardFFT(buf []complex128) (err error) {
	var (
		stages = utils.Log2(s.Geom.Nphi)
		slab   = s.Geom.Nr * s.NLoc
	)
	for st := 0; st < stages; st++ {
		di := s.Geom.Nphi >> (st + 1)
		if 2*di <= s.OLoc {
			s.fftStageLocal(buf, di, slab, false)
		} else if err = s.fftStageExchange(buf, di, tagFFTForward+st, slab, false); err != nil {
			return
		}
	}
	return
}

func (s *Solver) inverseFFT(buf []complex128) (err error) {
	var (
		stages = utils.Log2(s.Geom.Nphi)
		slab   = s.Geom.Nr * s.NLoc
		scale  = complex(1/float64(s.Geom.Nphi), 0)
	)
	for i := range buf {
		buf[i] *= scale
	}
	for st := stages - 1; st >= 0; st-- {
		di := s.Geom.Nphi >> (st + 1)
		if 2*di <= s.OLoc {
			s.fftStageLocal(buf, di, slab, true)
		} else if err = s.fftStageExchange(buf, di, tagFFTInverse+st, slab, true); err != nil {
			return
		}
	}
	return
}

// fftStageLocal applies one butterfly stage whose pairs are all local.
func (s *Solver) fftStageLocal(buf []complex128, di, slab int, inverse bool) {
	var (
		base = -math.Pi / float64(di)
	)
	if inverse {
		base = -base
	}
	for group := 0; group < s.OLoc; group += 2 * di {
		for t := 0; t < di; t++ {
			var (
				w = cmplx.Exp(complex(0, base*float64(t)))
				e = (group + t) * slab
				o = (group + t + di) * slab
			)
			for idx := 0; idx < slab; idx++ {
				a, b := buf[e+idx], buf[o+idx]
				if inverse {
					buf[e+idx] = a + w*b
					buf[o+idx] = a - w*b
				} else {
					buf[e+idx] = a + b
					buf[o+idx] = (a - b) * w
				}
			}
		}
	}
}

// fftStageExchange applies one butterfly stage that crosses a process
// boundary: the full local slab is exchanged with the partner rank and
// each side applies its half of the update.
func (s *Solver) fftStageExchange(buf []complex128, di, tag, slab int, inverse bool) (err error) {
	var (
		lower = (s.OS/di)%2 == 0
		shift = di / s.OLoc
		base  = -math.Pi / float64(di)
	)
	if inverse {
		base = -base
	}
	if !lower {
		shift = -shift
	}
	partner, err := s.Comm.Shift(cart.Phi, shift)
	if err != nil {
		return
	}
	theirs, err := s.Comm.SendRecvComplex(partner, tag, buf)
	if err != nil {
		return
	}
	for kk := 0; kk < s.OLoc; kk++ {
		var (
			w   = cmplx.Exp(complex(0, base*float64((s.OS+kk)%di)))
			off = kk * slab
		)
		for idx := off; idx < off+slab; idx++ {
			switch {
			case inverse && lower:
				buf[idx] += w * theirs[idx]
			case inverse:
				buf[idx] = theirs[idx] - w*buf[idx]
			case lower:
				buf[idx] += theirs[idx]
			default:
				buf[idx] = (theirs[idx] - buf[idx]) * w
			}
		}
	}
	return
}
