package poisson

import (
	"github.com/notargets/gopoisson/cart"
	"github.com/notargets/gopoisson/utils"
)

/*
Distributed theta transform.

After the parity split the lower half of the process grid holds the even
component and the upper half the odd component, each a function on the
half domain [0, Ntheta/2). A rank's local slots map to half-domain rows
directly (lower half) or mirror-reversed (upper half).

The forward transform projects onto the eigenbasis: each rank forms its
weighted local block, multiplies by the transposed basis sub-blocks to
produce one partial per slab row (= output mode block), and a recursive
halving exchange along theta both sums the partials and routes mode block
r to half-rank r. That leaves rank rows [NS, NS+NLoc) holding exactly the
modes whose eigenvalues sit at Lambda[NS..NS+NLoc), for both parities.

The backward transform is the same machinery with the un-transposed basis
and slab rows labeled by destination rank instead of mode block; the
identical reduction then routes every rank its own field values.
*/

// workSet is the slab-row work buffer of the theta transform: one
// NLoc x 2·Nr partial per (slab row, local phi slot).
type workSet [][]utils.Matrix

// halfInfo resolves this rank's position within its parity half.
func (s *Solver) halfInfo() (parity, half, hb, ph int) {
	pc, _ := s.Comm.Coords()
	ph = s.P / 2
	if pc < ph {
		parity, half, hb = Even, pc, pc
	} else {
		parity, half = Odd, pc-ph
		hb = ph - 1 - half
	}
	return
}

// weightedLocal builds the NLoc x 2Nr matrix x[j, 2i] = Re·vol_th,
// x[j, 2i+1] = Im·vol_th for one phi slot, with rows flipped on the upper
// half so they follow half-domain order.
func (s *Solver) weightedLocal(buf []complex128, kk int, flip bool) (X utils.Matrix) {
	var (
		nr   = s.Geom.Nr
		slab = nr * s.NLoc
	)
	X = utils.NewMatrix(s.NLoc, 2*nr)
	data := X.Data()
	for j := 0; j < s.NLoc; j++ {
		var (
			w   = s.Geom.VolTh[s.NS+j]
			row = j
		)
		if flip {
			row = s.NLoc - 1 - j
		}
		off := kk*slab + j*nr
		for i := 0; i < nr; i++ {
			data[row*2*nr+2*i] = real(buf[off+i]) * w
			data[row*2*nr+2*i+1] = imag(buf[off+i]) * w
		}
	}
	return
}

func (s *Solver) forwardTheta(buf []complex128) (y workSet, err error) {
	var (
		nr = s.Geom.Nr
		m  = s.Geom.Ntheta / 2
	)
	if s.P == 1 {
		// Both parities live on this rank: even data in the lower slots,
		// odd data mirror-stored in the upper slots.
		y = workSet{make([]utils.Matrix, s.OLoc)}
		for kk := 0; kk < s.OLoc; kk++ {
			var (
				V  = s.Modes[kk].V
				X  = s.weightedLocal(buf, kk, false)
				Y0 = utils.NewMatrix(s.NLoc, 2*nr)
			)
			Ye := V[Even].TransposeMul(X.Slice(0, m, 0, 2*nr))
			Yo := V[Odd].TransposeMul(X.Slice(m, 2*m, 0, 2*nr).FlipRows())
			copy(Y0.Data()[:m*2*nr], Ye.Data())
			copy(Y0.Data()[m*2*nr:], Yo.Data())
			y[0][kk] = Y0
		}
		return
	}

	parity, _, hb, ph := s.halfInfo()
	y = make(workSet, ph)
	for l := range y {
		y[l] = make([]utils.Matrix, s.OLoc)
	}
	for kk := 0; kk < s.OLoc; kk++ {
		var (
			V = s.Modes[kk].V[parity]
			X = s.weightedLocal(buf, kk, parity == Odd)
		)
		for l := 0; l < ph; l++ {
			sub := V.Slice(hb*s.NLoc, (hb+1)*s.NLoc, l*s.NLoc, (l+1)*s.NLoc)
			y[l][kk] = sub.TransposeMul(X)
		}
	}
	err = s.reduceSlabs(tagReduceForward, y)
	return
}

func (s *Solver) backwardTheta(y workSet, buf []complex128) (err error) {
	var (
		nr = s.Geom.Nr
		m  = s.Geom.Ntheta / 2
	)
	if s.P == 1 {
		for kk := 0; kk < s.OLoc; kk++ {
			var (
				V  = s.Modes[kk].V
				Y0 = y[0][kk]
			)
			ve := V[Even].Mul(Y0.Slice(0, m, 0, 2*nr))
			vo := V[Odd].Mul(Y0.Slice(m, 2*m, 0, 2*nr)).FlipRows()
			s.repackSlot(buf, kk, ve, 0)
			s.repackSlot(buf, kk, vo, m)
		}
		return
	}

	parity, half, _, ph := s.halfInfo()
	z := make(workSet, ph)
	for l := range z {
		z[l] = make([]utils.Matrix, s.OLoc)
	}
	for kk := 0; kk < s.OLoc; kk++ {
		var (
			V    = s.Modes[kk].V[parity]
			coef = y[0][kk]
		)
		for l := 0; l < ph; l++ {
			// Slab row l is the partial destined for half-rank l; on the
			// odd half that rank's slots mirror half-block ph-1-l.
			rowLo := l * s.NLoc
			if parity == Odd {
				rowLo = (ph - 1 - l) * s.NLoc
			}
			T := V.Slice(rowLo, rowLo+s.NLoc, half*s.NLoc, (half+1)*s.NLoc).Mul(coef)
			if parity == Odd {
				T = T.FlipRows()
			}
			z[l][kk] = T
		}
	}
	if err = s.reduceSlabs(tagReduceBackward, z); err != nil {
		return
	}
	for kk := 0; kk < s.OLoc; kk++ {
		s.repackSlot(buf, kk, z[0][kk], 0)
	}
	return
}

// repackSlot writes the real/imaginary column pairs of V back into the
// complex slab of phi slot kk, starting at local theta row j0.
func (s *Solver) repackSlot(buf []complex128, kk int, V utils.Matrix, j0 int) {
	var (
		nr       = s.Geom.Nr
		slab     = nr * s.NLoc
		nrows, _ = V.Dims()
		data     = V.Data()
	)
	for j := 0; j < nrows; j++ {
		off := kk*slab + (j0+j)*nr
		for i := 0; i < nr; i++ {
			buf[off+i] = complex(data[j*2*nr+2*i], data[j*2*nr+2*i+1])
		}
	}
}

// reduceSlabs performs the recursive-halving reduction along theta within
// this rank's parity half. At stride inc, partners exchange half of their
// slab rows (the right-sending side ships the odd-indexed rows) and the
// survivors are combined pair-wise in ascending order. Both transform
// directions share this driver. After the last level the accumulated
// result sits in row 0.
func (s *Solver) reduceSlabs(tagBase int, y workSet) (err error) {
	var (
		_, half, _, ph = s.halfInfo()
		count          = ph
		nr             = s.Geom.Nr
		rowLen         = s.NLoc * 2 * nr
	)
	for inc := 1; inc <= ph/2; inc *= 2 {
		var (
			rightSender = (half/inc)%2 == 0
			shift       = inc
			nship       = count / 2
		)
		if !rightSender {
			shift = -inc
		}
		partner, errS := s.Comm.Shift(cart.Theta, shift)
		if errS != nil {
			return errS
		}
		send := make([]float64, 0, nship*s.OLoc*rowLen)
		for t := 0; t < nship; t++ {
			l := 2*t + 1 // odd-indexed rows ship right
			if !rightSender {
				l = 2 * t
			}
			for kk := 0; kk < s.OLoc; kk++ {
				send = append(send, y[l][kk].Data()...)
			}
		}
		recv, errS := s.Comm.SendRecvFloats(partner, tagBase+inc, send)
		if errS != nil {
			return errS
		}
		pos := 0
		for t := 0; t < nship; t++ {
			slot := 2*t + 1 // received rows land in the vacated slots
			if !rightSender {
				slot = 2 * t
			}
			for kk := 0; kk < s.OLoc; kk++ {
				y[slot][kk] = utils.NewMatrix(s.NLoc, 2*nr, recv[pos:pos+rowLen])
				pos += rowLen
			}
		}
		count /= 2
		for t := 0; t < count; t++ {
			for kk := 0; kk < s.OLoc; kk++ {
				y[t][kk] = y[2*t][kk].Add(y[2*t+1][kk])
			}
		}
	}
	return
}
