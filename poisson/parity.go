package poisson

import "github.com/notargets/gopoisson/cart"

/*
Parity projection across the equator.

Each theta block l0 mirrors block P-1-l0 in the same phi column. After the
forward FFT the field is split: the lower half of the grid keeps the even
component and the upper half the odd component, each stored so that local
slot j of an upper rank holds the coefficient of the mirrored half-domain
point. Before the inverse FFT the same exchange recombines them.

With a single theta rank the mirror pair is local; the update uses an
explicit source copy so the in-place data dependency is trivially safe.
*/

func (s *Solver) splitParity(buf []complex128) error {
	return s.parityExchange(buf, tagParitySplit, true)
}

func (s *Solver) recombineParity(buf []complex128) error {
	return s.parityExchange(buf, tagParityRecombine, false)
}

func (s *Solver) parityExchange(buf []complex128, tag int, split bool) (err error) {
	var (
		nr   = s.Geom.Nr
		slab = nr * s.NLoc
	)
	if s.P == 1 {
		src := append([]complex128(nil), buf...)
		half := s.NLoc / 2
		for kk := 0; kk < s.OLoc; kk++ {
			for j := 0; j < half; j++ {
				var (
					mj = s.NLoc - 1 - j
					lo = kk*slab + j*nr
					hi = kk*slab + mj*nr
				)
				for i := 0; i < nr; i++ {
					a, b := src[lo+i], src[hi+i]
					if split {
						buf[lo+i] = 0.5 * (a + b)
						buf[hi+i] = 0.5 * (a - b)
					} else {
						buf[lo+i] = a + b
						buf[hi+i] = a - b
					}
				}
			}
		}
		return
	}

	var (
		pc, _ = s.Comm.Coords()
		lower = pc < s.P/2
	)
	partner, err := s.Comm.Shift(cart.Theta, s.P-1-2*pc)
	if err != nil {
		return
	}
	theirs, err := s.Comm.SendRecvComplex(partner, tag, buf)
	if err != nil {
		return
	}
	for kk := 0; kk < s.OLoc; kk++ {
		for j := 0; j < s.NLoc; j++ {
			var (
				mine   = kk*slab + j*nr
				mirror = kk*slab + (s.NLoc-1-j)*nr
			)
			for i := 0; i < nr; i++ {
				a, b := buf[mine+i], theirs[mirror+i]
				switch {
				case split && lower:
					buf[mine+i] = 0.5 * (a + b)
				case split:
					buf[mine+i] = 0.5 * (b - a)
				case lower:
					buf[mine+i] = a + b
				default:
					buf[mine+i] = b - a
				}
			}
		}
	}
	return
}
