package blkfile

import (
	"io"

	"github.com/keks/heartyfs"
)

// block is a window of size bytes at offset off of the lower ReadWriterAt.
// Accesses crossing the end of the window are cut short and report io.EOF.
type block struct {
	off  int64
	size int

	lower heartyfs.ReadWriterAt
}

// clip limits buf to what fits into the window starting at off.
func (blk *block) clip(buf []byte, off int64) ([]byte, bool, error) {
	if off < 0 {
		return nil, false, heartyfs.ErrOutOfRange
	}
	if off >= int64(blk.size) {
		return nil, false, io.EOF
	}

	if room := blk.size - int(off); room < len(buf) {
		return buf[:room], true, nil
	}
	return buf, false, nil
}

func (blk *block) ReadAt(dst []byte, off int64) (int, error) {
	dst, short, err := blk.clip(dst, off)
	if err != nil {
		return 0, err
	}

	n, err := blk.lower.ReadAt(dst, blk.off+off)
	if err == nil && short {
		err = io.EOF
	}
	return n, err
}

func (blk *block) WriteAt(data []byte, off int64) (int, error) {
	data, short, err := blk.clip(data, off)
	if err != nil {
		return 0, err
	}

	// the lower layer only fails on device errors, e.g. a full disk
	n, err := blk.lower.WriteAt(data, blk.off+off)
	if err == nil && short {
		err = io.EOF
	}
	return n, err
}
