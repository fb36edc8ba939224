package sched

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPRNG_SeedZeroPromotedToOne(t *testing.T) {
	p := NewPRNG(0)
	require.Equal(t, uint32(1), p.state)
}

func TestPRNG_NextIsDeterministicForSameSeed(t *testing.T) {
	a := NewPRNG(42)
	b := NewPRNG(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestPRNG_RangeStaysInBounds(t *testing.T) {
	p := NewPRNG(7)
	for n := uint32(1); n <= 37; n++ {
		n := n
		t.Run(fmt.Sprintf("n_%d", n), func(t *testing.T) {
			for i := 0; i < 500; i++ {
				v := p.Range(n)
				assert.Less(t, v, n)
			}
		})
	}
}

func TestPRNG_RangeCoversFullSpread(t *testing.T) {
	p := NewPRNG(1234)
	seen := make(map[uint32]bool)
	const n = 5
	for i := 0; i < 2000; i++ {
		seen[p.Range(n)] = true
	}
	assert.Len(t, seen, n, "expected all %d outcomes to appear over 2000 draws", n)
}
