package blkfile

import (
	"bytes"
	"testing"

	"github.com/keks/heartyfs"
	"github.com/stretchr/testify/require"
)

type op interface {
	Do(*testing.T, heartyfs.ReadWriterAt)
}

type storeNewOp struct {
	store **Store

	blksize int
	count   int
}

func (op storeNewOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	*op.store = New(rwa, op.blksize, op.count)
}

type storeWriteOp struct {
	store **Store
	bid   heartyfs.BlockID
	data  []byte

	expErr string
}

func (op storeWriteOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	err := (*op.store).WriteBlock(op.bid, op.data)
	if op.expErr == "" {
		require.NoError(t, err)
	} else {
		require.EqualError(t, err, op.expErr)
	}
}

type storeZeroOp struct {
	store **Store
	bid   heartyfs.BlockID

	expErr string
}

func (op storeZeroOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	err := (*op.store).ZeroBlock(op.bid)
	if op.expErr == "" {
		require.NoError(t, err)
	} else {
		require.EqualError(t, err, op.expErr)
	}
}

type storeReadOp struct {
	store **Store
	bid   heartyfs.BlockID

	exp    []byte
	expErr string
}

func (op storeReadOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	buf, err := (*op.store).ReadBlock(op.bid)
	if op.expErr == "" {
		require.NoError(t, err)
	} else {
		require.EqualError(t, err, op.expErr)
		return
	}

	require.Equal(t, op.exp, buf)
}

type storeGetOp struct {
	store **Store
	bid   heartyfs.BlockID
	blk   *block

	expErr string
}

func (op storeGetOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	t.Logf("store get bid=%d", op.bid)
	v, err := (*op.store).Get(op.bid)
	if op.expErr == "" {
		require.NoError(t, err)
	} else {
		require.EqualError(t, err, op.expErr)
		return
	}

	*op.blk = *(v.(*block))
}

type blkWriteOp struct {
	blk  *block
	data []byte
	off  int64

	// set these if blk == nil
	blkOff  int64
	blkSize int

	expN   int
	expErr string
}

func (op blkWriteOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	r := require.New(t)

	if op.blk == nil {
		op.blk = &block{
			lower: rwa,
			off:   op.blkOff,
			size:  op.blkSize,
		}
	}

	n, err := op.blk.WriteAt(op.data, op.off)

	t.Logf("writeOp, n: %d, err: %v", n, err)

	r.Equal(op.expN, n)
	if op.expErr == "" {
		r.NoError(err)
	} else {
		r.EqualError(err, op.expErr)
	}
}

type blkReadOp struct {
	blk     *block
	off     int64
	readlen int

	// set these if blk == nil
	blkOff  int64
	blkSize int

	exp    []byte
	expN   int
	expErr string
}

func (op blkReadOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	r := require.New(t)
	if op.readlen == 0 {
		op.readlen = len(op.exp)
	}

	if op.blk == nil {
		op.blk = &block{
			lower: rwa,
			off:   op.blkOff,
			size:  op.blkSize,
		}
	}

	buf := make([]byte, op.readlen)
	n, err := op.blk.ReadAt(buf, op.off)

	t.Logf("readOp, n: %d, err: %v", n, err)

	if op.expErr == "" {
		r.NoError(err)
	} else {
		r.EqualError(err, op.expErr)
	}
	r.Equal(op.expN, n)
	t.Logf("buffer contents %q | 0x%x", buf[:op.expN], buf[:op.expN])
	r.True(bytes.Equal(buf[:op.expN], op.exp))
}

type dumpOp struct {
	name string
	v    interface{}
}

func (op dumpOp) Do(t *testing.T, rwa heartyfs.ReadWriterAt) {
	t.Logf("%s: %#v", op.name, op.v)
}
