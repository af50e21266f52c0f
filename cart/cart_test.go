package cart

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridGeometry(t *testing.T) {
	_, err := NewGrid(3, 2)
	assert.Error(t, err, "non power of two extents must be rejected")

	g, err := NewGrid(2, 4)
	require.NoError(t, err)
	require.Equal(t, 8, g.Size())

	c := g.Comm(6) // coords (1, 2)
	pc, qc := c.Coords()
	assert.Equal(t, 1, pc)
	assert.Equal(t, 2, qc)

	rank, err := c.Shift(Theta, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	rank, err = c.Shift(Phi, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, rank)

	_, err = c.Shift(Theta, 1)
	assert.Error(t, err, "shifting off the grid edge must fail")
	_, err = c.Shift(Phi, -3)
	assert.Error(t, err)
}

func TestSendRecvPairwise(t *testing.T) {
	g, err := NewGrid(1, 2)
	require.NoError(t, err)

	results := make([][]float64, 2)
	err = g.Run(func(c *Comm) error {
		partner := 1 - c.Rank()
		send := []float64{float64(c.Rank()), 10}
		recv, err := c.SendRecvFloats(partner, 42, send)
		if err != nil {
			return err
		}
		results[c.Rank()] = recv
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 10}, results[0])
	assert.Equal(t, []float64{0, 10}, results[1])
}

func TestSendRecvComplex(t *testing.T) {
	g, err := NewGrid(1, 2)
	require.NoError(t, err)
	err = g.Run(func(c *Comm) error {
		partner := 1 - c.Rank()
		send := []complex128{complex(float64(c.Rank()), 1)}
		recv, err := c.SendRecvComplex(partner, 7, send)
		if err != nil {
			return err
		}
		want := complex(float64(partner), 1)
		if recv[0] != want {
			return fmt.Errorf("got %v, want %v", recv[0], want)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestTagMismatchIsFatal(t *testing.T) {
	g, err := NewGrid(1, 2)
	require.NoError(t, err)
	err = g.Run(func(c *Comm) error {
		partner := 1 - c.Rank()
		// Each side posts its own tag; both receives must fail.
		_, err := c.SendRecvFloats(partner, 100+c.Rank(), []float64{1})
		if err == nil {
			return fmt.Errorf("tag mismatch went undetected on rank %d", c.Rank())
		}
		return nil
	})
	require.NoError(t, err)
}

func TestSendBufferIsCopied(t *testing.T) {
	g, err := NewGrid(1, 2)
	require.NoError(t, err)
	var mu sync.Mutex
	got := map[int]float64{}
	err = g.Run(func(c *Comm) error {
		partner := 1 - c.Rank()
		send := []float64{float64(c.Rank())}
		recv, err := c.SendRecvFloats(partner, 3, send)
		if err != nil {
			return err
		}
		send[0] = -1 // must not affect what the partner received
		mu.Lock()
		got[c.Rank()] = recv[0]
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1., got[0])
	assert.Equal(t, 0., got[1])
}

func TestRunPropagatesErrors(t *testing.T) {
	g, err := NewGrid(1, 2)
	require.NoError(t, err)
	err = g.Run(func(c *Comm) error {
		if c.Rank() == 1 {
			return fmt.Errorf("boom")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank 1")
	assert.Contains(t, err.Error(), "boom")
}
