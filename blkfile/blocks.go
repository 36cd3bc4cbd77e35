package blkfile

import (
	"io"

	"github.com/keks/heartyfs"
	"github.com/pkg/errors"
)

// Store is a fixed array of equally sized blocks on top of a ReadWriterAt.
// It does not interpret the bytes it stores.
type Store struct {
	lower heartyfs.ReadWriterAt

	blksize int
	count   int
}

// New returns a Store of count blocks of blksize bytes each.
func New(lower heartyfs.ReadWriterAt, blksize, count int) *Store {
	return &Store{
		lower:   lower,
		blksize: blksize,
		count:   count,
	}
}

// BlockSize returns the size of a single block.
func (s *Store) BlockSize() int { return s.blksize }

// Blocks returns the number of blocks in the store.
func (s *Store) Blocks() int { return s.count }

func (s *Store) check(bid heartyfs.BlockID) error {
	if int64(bid) >= int64(s.count) {
		return errors.Wrapf(heartyfs.ErrOutOfRange, "block %d of %d", bid, s.count)
	}

	return nil
}

// Get returns a view on a single block. Accesses beyond the end of the
// block are cut short with io.EOF.
func (s *Store) Get(bid heartyfs.BlockID) (heartyfs.ReadWriterAt, error) {
	if err := s.check(bid); err != nil {
		return nil, err
	}

	return &block{
		off:   int64(bid) * int64(s.blksize),
		size:  s.blksize,
		lower: s.lower,
	}, nil
}

// ReadBlock returns a copy of the contents of a block.
func (s *Store) ReadBlock(bid heartyfs.BlockID) ([]byte, error) {
	blk, err := s.Get(bid)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, s.blksize)
	if _, err := io.ReadFull(readerFromReaderAt(blk, 0), buf); err != nil {
		return nil, errors.Wrapf(err, "read block %d", bid)
	}

	return buf, nil
}

// WriteBlock overwrites a whole block. buf must be exactly one block long.
func (s *Store) WriteBlock(bid heartyfs.BlockID, buf []byte) error {
	if len(buf) != s.blksize {
		return errors.Wrapf(heartyfs.ErrOutOfRange, "write of %d bytes to block %d", len(buf), bid)
	}

	blk, err := s.Get(bid)
	if err != nil {
		return err
	}

	if _, err := blk.WriteAt(buf, 0); err != nil {
		return errors.Wrapf(err, "write block %d", bid)
	}

	return nil
}

// ZeroBlock clears a block.
func (s *Store) ZeroBlock(bid heartyfs.BlockID) error {
	return s.WriteBlock(bid, make([]byte, s.blksize))
}
