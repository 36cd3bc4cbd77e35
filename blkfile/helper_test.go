package blkfile

import (
	"io"
)

// testDisk is an in-memory ReadWriterAt. A disk with limit > 0 refuses to
// grow past limit bytes, otherwise writes extend it like a file would.
type testDisk struct {
	buf   []byte
	limit int
}

func (d *testDisk) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(d.buf)) {
		return 0, io.EOF
	}

	n := copy(buf, d.buf[off:])
	if n < len(buf) {
		return n, io.EOF
	}

	return n, nil
}

func (d *testDisk) WriteAt(data []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrShortWrite
	}

	end := int(off) + len(data)
	if d.limit > 0 && end > d.limit {
		n := 0
		if int(off) < d.limit {
			n = d.write(data[:d.limit-int(off)], off)
		}
		return n, io.ErrShortWrite
	}

	return d.write(data, off), nil
}

func (d *testDisk) write(data []byte, off int64) int {
	if end := int(off) + len(data); end > len(d.buf) {
		d.buf = append(d.buf, make([]byte, end-len(d.buf))...)
	}

	return copy(d.buf[off:], data)
}
