package device

import "github.com/keks/heartyfs"

// Memory is a fixed-size device held in memory.
type Memory struct {
	buf []byte
}

var _ heartyfs.Device = (*Memory)(nil)

// NewMemory returns a zero-filled device of size bytes.
func NewMemory(size int64) *Memory {
	return &Memory{buf: make([]byte, size)}
}

func (m *Memory) ReadAt(buf []byte, off int64) (int, error) { return readAt(m.buf, buf, off) }

func (m *Memory) WriteAt(data []byte, off int64) (int, error) { return writeAt(m.buf, data, off) }

func (m *Memory) Size() int64 { return int64(len(m.buf)) }

// Bytes returns the backing buffer.
func (m *Memory) Bytes() []byte { return m.buf }
