package alloc

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/keks/heartyfs"
	"github.com/stretchr/testify/require"
)

type op interface {
	Do(*testing.T, *Allocator)
}

type allocOp struct {
	exp    heartyfs.BlockID
	expErr error
}

func (op allocOp) Do(t *testing.T, a *Allocator) {
	bid, err := a.Allocate()
	if op.expErr != nil {
		require.ErrorIs(t, err, op.expErr)
		return
	}

	require.NoError(t, err)
	require.Equal(t, op.exp, bid)
	require.False(t, a.IsFree(bid))
}

type releaseOp struct {
	bid    heartyfs.BlockID
	expErr error
}

func (op releaseOp) Do(t *testing.T, a *Allocator) {
	err := a.Release(op.bid)
	if op.expErr != nil {
		require.ErrorIs(t, err, op.expErr)
		return
	}

	require.NoError(t, err)
	require.True(t, a.IsFree(op.bid))
}

type claimOp struct {
	bid    heartyfs.BlockID
	expErr error
}

func (op claimOp) Do(t *testing.T, a *Allocator) {
	err := a.Claim(op.bid)
	if op.expErr != nil {
		require.ErrorIs(t, err, op.expErr)
		return
	}

	require.NoError(t, err)
	require.False(t, a.IsFree(op.bid))
}

type freeOp struct {
	exp int32
}

func (op freeOp) Do(t *testing.T, a *Allocator) {
	require.Equal(t, op.exp, a.Free())
	require.Equal(t, a.Total()-op.exp, a.Used())
}

// countFree counts the set bits directly.
func countFree(a *Allocator) int32 {
	var n int32
	for i := 0; i < a.total; i++ {
		if a.bits[i/8]>>(i%8)&1 == 1 {
			n++
		}
	}
	return n
}

func TestAllocator(t *testing.T) {
	type testcase struct {
		name  string
		total int
		ops   []op
	}

	var tcs = []testcase{
		{
			name:  "fresh",
			total: 16,
			ops: []op{
				freeOp{14},
				allocOp{exp: 2},
				allocOp{exp: 3},
				freeOp{12},
			},
		},
		{
			name:  "lowest first after release",
			total: 16,
			ops: []op{
				allocOp{exp: 2},
				allocOp{exp: 3},
				allocOp{exp: 4},
				releaseOp{bid: 3},
				allocOp{exp: 3},
				allocOp{exp: 5},
				freeOp{10},
			},
		},
		{
			name:  "double free",
			total: 16,
			ops: []op{
				allocOp{exp: 2},
				releaseOp{bid: 2},
				releaseOp{bid: 2, expErr: heartyfs.ErrDoubleFree},
				releaseOp{bid: 9, expErr: heartyfs.ErrDoubleFree},
				freeOp{14},
			},
		},
		{
			name:  "reserved",
			total: 16,
			ops: []op{
				releaseOp{bid: 0, expErr: heartyfs.ErrProtected},
				releaseOp{bid: 1, expErr: heartyfs.ErrProtected},
				claimOp{bid: 1, expErr: heartyfs.ErrProtected},
				freeOp{14},
			},
		},
		{
			name:  "out of range",
			total: 16,
			ops: []op{
				releaseOp{bid: 16, expErr: heartyfs.ErrOutOfRange},
				claimOp{bid: 100, expErr: heartyfs.ErrOutOfRange},
			},
		},
		{
			name:  "exhaust",
			total: 5,
			ops: []op{
				allocOp{exp: 2},
				allocOp{exp: 3},
				allocOp{exp: 4},
				allocOp{expErr: heartyfs.ErrNoFreeSpace},
				freeOp{0},
				releaseOp{bid: 4},
				allocOp{exp: 4},
			},
		},
		{
			name:  "claim",
			total: 16,
			ops: []op{
				claimOp{bid: 2},
				claimOp{bid: 2, expErr: heartyfs.ErrInUse},
				allocOp{exp: 3},
				releaseOp{bid: 2},
				claimOp{bid: 2},
				freeOp{12},
			},
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			a := Format(tc.total)
			for _, op := range tc.ops {
				op.Do(t, a)
				require.Equal(t, countFree(a), a.Free(), "after %#v", op)
				require.False(t, a.IsFree(0))
				require.False(t, a.IsFree(1))
			}
		})
	}
}

func TestAllocatorRandom(t *testing.T) {
	const total = 2048

	rng := rand.New(rand.NewSource(1))
	a := Format(total)
	held := map[heartyfs.BlockID]bool{}

	for i := 0; i < 20000; i++ {
		if rng.Intn(3) > 0 {
			bid, err := a.Allocate()
			if errors.Is(err, heartyfs.ErrNoFreeSpace) {
				require.Len(t, held, total-2)
				continue
			}
			require.NoError(t, err)
			require.GreaterOrEqual(t, bid, heartyfs.FirstDataID)
			require.False(t, held[bid], "block %d handed out twice", bid)
			held[bid] = true
		} else {
			for bid := range held {
				require.NoError(t, a.Release(bid))
				delete(held, bid)
				break
			}
		}

		require.Equal(t, countFree(a), a.Free())
		require.Equal(t, int32(total-2-len(held)), a.Free())
	}
}

func TestLoad(t *testing.T) {
	a := Format(64)
	for i := 0; i < 10; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	require.NoError(t, a.Release(5))

	b, err := Load(a.Bytes(), 64)
	require.NoError(t, err)
	require.Equal(t, a.Free(), b.Free())
	require.False(t, b.IsFree(4))
	require.True(t, b.IsFree(5))

	bid, err := b.Allocate()
	require.NoError(t, err)
	require.Equal(t, heartyfs.BlockID(5), bid)

	t.Run("reserved marked free", func(t *testing.T) {
		bits := a.Bytes()
		bits[0] |= 1
		_, err := Load(bits, 64)
		require.ErrorIs(t, err, heartyfs.ErrCorrupt)
	})

	t.Run("short bitmap", func(t *testing.T) {
		_, err := Load(make([]byte, 4), 64)
		require.ErrorIs(t, err, heartyfs.ErrCorrupt)
	})
}
