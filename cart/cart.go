/*
Package cart provides the 2-D Cartesian process grid used by the Poisson
solver. Ranks are goroutines executing the same SPMD code path; transport
is a buffered channel per directed rank pair, so a matched pairwise
send/receive never blocks regardless of posting order.

Axis 0 (Theta) is the slowest-varying coordinate: rank = p*Q + q.
*/
package cart

import (
	"fmt"
	"sync"

	"github.com/notargets/gopoisson/utils"
)

type Axis uint8

const (
	Theta Axis = iota
	Phi
)

func (a Axis) String() string {
	if a == Theta {
		return "theta"
	}
	return "phi"
}

type message struct {
	tag int
	f   []float64
	c   []complex128
}

type Grid struct {
	p, q  int
	edges [][]chan message // edges[from][to]
}

// NewGrid creates a P x Q process grid. Both extents must be powers of two.
func NewGrid(p, q int) (g *Grid, err error) {
	if !utils.IsPowerOfTwo(p) || !utils.IsPowerOfTwo(q) {
		err = fmt.Errorf("process grid dimensions must be powers of two, got %d x %d", p, q)
		return
	}
	size := p * q
	g = &Grid{
		p:     p,
		q:     q,
		edges: make([][]chan message, size),
	}
	for from := 0; from < size; from++ {
		g.edges[from] = make([]chan message, size)
		for to := 0; to < size; to++ {
			g.edges[from][to] = make(chan message, 1)
		}
	}
	return
}

func (g *Grid) Dims() (p, q int) { return g.p, g.q }
func (g *Grid) Size() int        { return g.p * g.q }

// Comm returns the endpoint for one rank.
func (g *Grid) Comm(rank int) *Comm {
	if rank < 0 || rank >= g.Size() {
		panic(fmt.Errorf("rank %d out of range for %d x %d grid", rank, g.p, g.q))
	}
	return &Comm{g: g, rank: rank}
}

// Run executes fn once per rank, each on its own goroutine, and waits for
// all of them. The first non-nil error is returned, tagged with its rank.
// A rank that fails while partners are blocked in an exchange leaves the
// run hung; callers treat any rank error as fatal to the whole run.
func (g *Grid) Run(fn func(c *Comm) error) error {
	var (
		wg   sync.WaitGroup
		errs = make([]error, g.Size())
	)
	for rank := 0; rank < g.Size(); rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			errs[rank] = fn(g.Comm(rank))
		}(rank)
	}
	wg.Wait()
	for rank, err := range errs {
		if err != nil {
			return fmt.Errorf("rank %d: %w", rank, err)
		}
	}
	return nil
}

type Comm struct {
	g    *Grid
	rank int
}

func (c *Comm) Rank() int        { return c.rank }
func (c *Comm) Dims() (p, q int) { return c.g.Dims() }

// Coords returns the (theta, phi) coordinates of this rank.
func (c *Comm) Coords() (pc, qc int) {
	pc = c.rank / c.g.q
	qc = c.rank % c.g.q
	return
}

// Shift returns the rank displaced disp blocks along axis. The grid is not
// periodic; shifting off the edge is an error.
func (c *Comm) Shift(axis Axis, disp int) (rank int, err error) {
	pc, qc := c.Coords()
	switch axis {
	case Theta:
		pc += disp
	case Phi:
		qc += disp
	default:
		err = fmt.Errorf("unknown axis %d", axis)
		return
	}
	if pc < 0 || pc >= c.g.p || qc < 0 || qc >= c.g.q {
		err = fmt.Errorf("shift by %d along %s from rank %d leaves the grid", disp, axis, c.rank)
		return
	}
	rank = pc*c.g.q + qc
	return
}

// SendRecvFloats performs a matched pairwise exchange of float64 buffers
// with partner. Both sides must call it with the same tag; a tag mismatch
// is a transport failure and fatal to the run.
func (c *Comm) SendRecvFloats(partner, tag int, send []float64) (recv []float64, err error) {
	cp := make([]float64, len(send))
	copy(cp, send)
	c.g.edges[c.rank][partner] <- message{tag: tag, f: cp}
	msg := <-c.g.edges[partner][c.rank]
	if msg.tag != tag {
		err = fmt.Errorf("tag mismatch on rank %d receiving from %d: want %d, got %d", c.rank, partner, tag, msg.tag)
		return
	}
	if msg.f == nil {
		err = fmt.Errorf("rank %d expected float64 payload from %d, got complex", c.rank, partner)
		return
	}
	recv = msg.f
	return
}

// SendRecvComplex is SendRecvFloats for complex128 buffers.
func (c *Comm) SendRecvComplex(partner, tag int, send []complex128) (recv []complex128, err error) {
	cp := make([]complex128, len(send))
	copy(cp, send)
	c.g.edges[c.rank][partner] <- message{tag: tag, c: cp}
	msg := <-c.g.edges[partner][c.rank]
	if msg.tag != tag {
		err = fmt.Errorf("tag mismatch on rank %d receiving from %d: want %d, got %d", c.rank, partner, tag, msg.tag)
		return
	}
	if msg.c == nil {
		err = fmt.Errorf("rank %d expected complex128 payload from %d, got float64", c.rank, partner)
		return
	}
	recv = msg.c
	return
}
