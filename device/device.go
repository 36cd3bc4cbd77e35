// Package device provides the backing storage of an image: a memory mapped
// file guarded by an exclusive lock, and a plain in-memory buffer.
package device

import (
	"io"
	"os"

	"github.com/gofrs/flock"
	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/internal/cleanup"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrLocked is returned by OpenFile with WithoutWait when another handle
// holds the image.
var ErrLocked = errors.New("image is locked by another process")

type options struct {
	wait bool
}

// Option configures OpenFile.
type Option func(*options)

// WithoutWait makes OpenFile fail with ErrLocked instead of blocking when the
// image is locked.
func WithoutWait() Option {
	return func(o *options) { o.wait = false }
}

// File is an image file mapped into memory. The handle holds an exclusive
// lock on the file until it is closed.
type File struct {
	f    *os.File
	lock *flock.Flock
	data []byte
}

var _ heartyfs.Device = (*File)(nil)

// Create makes a zero-filled image file of size bytes. A non-empty existing
// file is left alone. An empty one, as left behind by a lock on a missing
// image, is sized like a new one.
func Create(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return errors.Wrapf(err, "create image %q", path)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "stat image %q", path)
	}

	if stat.Size() == 0 {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return errors.Wrapf(err, "size image %q", path)
		}
	}

	return errors.Wrapf(f.Close(), "close image %q", path)
}

// OpenFile locks and maps the image at path.
func OpenFile(path string, opts ...Option) (*File, error) {
	o := options{wait: true}
	for _, opt := range opts {
		opt(&o)
	}

	var cu cleanup.Cleanup
	defer cu.Clean()

	d := &File{lock: flock.NewFlock(path)}
	if o.wait {
		if err := d.lock.Lock(); err != nil {
			return nil, errors.Wrapf(err, "lock image %q", path)
		}
	} else {
		ok, err := d.lock.TryLock()
		if err != nil {
			return nil, errors.Wrapf(err, "lock image %q", path)
		}
		if !ok {
			return nil, errors.Wrapf(ErrLocked, "%q", path)
		}
	}
	cu.Add(func() { d.lock.Unlock() })

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open image %q", path)
	}
	d.f = f
	cu.Add(func() { f.Close() })

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat image %q", path)
	}
	if stat.Size() == 0 {
		return nil, errors.Errorf("image %q is empty", path)
	}

	d.data, err = unix.Mmap(int(f.Fd()), 0, int(stat.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "map image %q", path)
	}

	cu.Release()
	return d, nil
}

// Size returns the size of the image in bytes.
func (d *File) Size() int64 { return int64(len(d.data)) }

func (d *File) ReadAt(buf []byte, off int64) (int, error) {
	if d.data == nil {
		return 0, os.ErrClosed
	}

	return readAt(d.data, buf, off)
}

func (d *File) WriteAt(data []byte, off int64) (int, error) {
	if d.data == nil {
		return 0, os.ErrClosed
	}

	return writeAt(d.data, data, off)
}

// Sync flushes the mapping to the file.
func (d *File) Sync() error {
	if d.data == nil {
		return os.ErrClosed
	}

	return errors.Wrap(unix.Msync(d.data, unix.MS_SYNC), "msync")
}

// Close flushes and unmaps the image and releases the lock.
func (d *File) Close() error {
	if d.data == nil {
		return os.ErrClosed
	}

	err := d.Sync()
	if uerr := unix.Munmap(d.data); err == nil {
		err = errors.Wrap(uerr, "munmap")
	}
	d.data = nil

	if cerr := d.f.Close(); err == nil {
		err = cerr
	}
	if lerr := d.lock.Unlock(); err == nil {
		err = lerr
	}

	return err
}

func readAt(src, buf []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(src)) {
		return 0, io.EOF
	}

	n := copy(buf, src[off:])
	if n < len(buf) {
		return n, io.EOF
	}

	return n, nil
}

func writeAt(dst, data []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(data)) > int64(len(dst)) {
		return 0, errors.Wrapf(heartyfs.ErrOutOfRange, "write of %d bytes at %d", len(data), off)
	}

	return copy(dst[off:], data), nil
}
