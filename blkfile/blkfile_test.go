package blkfile

import (
	"bytes"
	"os"
	"testing"

	"github.com/keks/heartyfs"
	"github.com/stretchr/testify/require"
)

type testcase struct {
	name string
	ops  []op
}

// runBoth executes the ops once against memory and once against a temp file.
func runBoth(t *testing.T, tc testcase) {
	t.Run(tc.name+"/memory", func(t *testing.T) {
		rwa := &testDisk{}
		for _, op := range tc.ops {
			op.Do(t, rwa)
			t.Logf("ok: %T", op)
		}
	})

	t.Run(tc.name+"/file", func(t *testing.T) {
		f, err := os.CreateTemp("", "TestBlock-*")
		require.NoError(t, err)
		defer os.Remove(f.Name())
		defer f.Close()

		for _, op := range tc.ops {
			op.Do(t, f)
			t.Logf("ok: %T", op)
		}
	})
}

func TestBlock(t *testing.T) {
	var tcs = []testcase{
		{
			name: "set then get",
			ops: []op{
				blkWriteOp{
					data:    []byte("test"),
					expN:    4,
					blkSize: 1 << 9,
				},
				blkReadOp{
					exp:     []byte("test"),
					expN:    4,
					blkSize: 1 << 9,
				},
			},
		},
		{
			name: "set at offset block",
			ops: []op{
				blkWriteOp{
					data:    []byte("test"),
					off:     3,
					expN:    4,
					blkOff:  1 << 9,
					blkSize: 1 << 9,
				},
				blkReadOp{
					off:     (1 << 9) + 3,
					exp:     []byte("test"),
					expN:    4,
					blkSize: 1 << 10,
				},
			},
		},
		{
			name: "write over block end",
			ops: []op{
				blkWriteOp{
					data:    []byte("test"),
					off:     (1 << 9) - 2,
					expN:    2,
					expErr:  "EOF",
					blkSize: 1 << 9,
				},
				blkReadOp{
					off:     (1 << 9) - 2,
					expN:    2,
					expErr:  "EOF",
					exp:     []byte("te"),
					readlen: 4,
					blkSize: 1 << 9,
				},
			},
		},
		{
			name: "write after block end",
			ops: []op{
				blkWriteOp{
					data:    []byte("test"),
					off:     (1 << 9) + 2,
					expN:    0,
					expErr:  "EOF",
					blkSize: 1 << 9,
				},
			},
		},
		{
			name: "read after block end",
			ops: []op{
				blkWriteOp{
					data:    bytes.Repeat([]byte("test"), 1<<7),
					expN:    1 << 9,
					blkSize: 1 << 9,
				},
				blkReadOp{
					off:     (1 << 9) + 2,
					expN:    0,
					expErr:  "EOF",
					exp:     []byte(""),
					readlen: 4,
					blkSize: 1 << 9,
				},
			},
		},
	}

	for _, tc := range tcs {
		runBoth(t, tc)
	}
}

func TestStore(t *testing.T) {
	const bs = heartyfs.BlockSize

	var (
		store *Store
		blk   block
	)

	full := bytes.Repeat([]byte{0xa5}, bs)
	other := bytes.Repeat([]byte{0x5a}, bs)

	var tcs = []testcase{
		{
			name: "write then read",
			ops: []op{
				storeNewOp{store: &store, blksize: bs, count: 8},
				storeWriteOp{store: &store, bid: 3, data: full},
				storeReadOp{store: &store, bid: 3, exp: full},
			},
		},
		{
			name: "neighbours stay apart",
			ops: []op{
				storeNewOp{store: &store, blksize: bs, count: 8},
				storeWriteOp{store: &store, bid: 2, data: full},
				storeWriteOp{store: &store, bid: 3, data: other},
				storeReadOp{store: &store, bid: 2, exp: full},
				storeReadOp{store: &store, bid: 3, exp: other},
			},
		},
		{
			name: "zero clears",
			ops: []op{
				storeNewOp{store: &store, blksize: bs, count: 8},
				storeWriteOp{store: &store, bid: 7, data: full},
				storeZeroOp{store: &store, bid: 7},
				storeReadOp{store: &store, bid: 7, exp: make([]byte, bs)},
			},
		},
		{
			name: "out of range",
			ops: []op{
				storeNewOp{store: &store, blksize: bs, count: 8},
				storeWriteOp{
					store:  &store,
					bid:    8,
					data:   full,
					expErr: "block 8 of 8: block id out of range",
				},
				storeReadOp{
					store:  &store,
					bid:    9,
					expErr: "block 9 of 8: block id out of range",
				},
				storeGetOp{
					store:  &store,
					bid:    8,
					expErr: "block 8 of 8: block id out of range",
				},
			},
		},
		{
			name: "short write",
			ops: []op{
				storeNewOp{store: &store, blksize: bs, count: 8},
				storeWriteOp{
					store:  &store,
					bid:    1,
					data:   []byte("test"),
					expErr: "write of 4 bytes to block 1: block id out of range",
				},
			},
		},
		{
			name: "get, write through view, read block",
			ops: []op{
				storeNewOp{store: &store, blksize: bs, count: 8},
				storeZeroOp{store: &store, bid: 5},
				storeGetOp{store: &store, bid: 5, blk: &blk},
				dumpOp{"blk", &blk},
				blkWriteOp{
					blk:  &blk,
					data: []byte("test"),
					off:  10,
					expN: 4,
				},
				storeReadOp{
					store: &store,
					bid:   5,
					exp:   append(append(make([]byte, 10), "test"...), make([]byte, bs-14)...),
				},
			},
		},
	}

	for _, tc := range tcs {
		runBoth(t, tc)
	}
}

func TestStoreDeviceFull(t *testing.T) {
	disk := &testDisk{limit: 2 * heartyfs.BlockSize}
	store := New(disk, heartyfs.BlockSize, 4)

	require.NoError(t, store.ZeroBlock(1))

	err := store.ZeroBlock(2)
	require.EqualError(t, err, "write block 2: short write")
}
