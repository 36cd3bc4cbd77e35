// Package fs implements the filesystem on top of a block device: path
// resolution, directories, files and their data blocks.
//
// A Filesystem serializes its operations with a mutex. Every operation
// either completes or leaves the image as it found it; only failures of the
// device itself can interrupt an operation half way, after which the
// Filesystem refuses further work.
package fs

import (
	"io"
	"sync"

	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/alloc"
	"github.com/keks/heartyfs/blkfile"
	"github.com/keks/heartyfs/internal/cleanup"
	"github.com/keks/heartyfs/layout"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Filesystem is an open image. Only one Filesystem at a time may be open on
// a device; Close releases it.
type Filesystem struct {
	mu sync.Mutex

	dev    heartyfs.Device
	closed bool

	store *blkfile.Store
	sb    *layout.Superblock
	alloc *alloc.Allocator

	// broken is set when a device write failed in the middle of an operation.
	broken error

	log logrus.FieldLogger
}

// Option configures a Filesystem.
type Option func(*Filesystem)

// WithLogger sets the logger used for debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(fs *Filesystem) { fs.log = log }
}

// devices holds the devices with an open Filesystem. Devices are compared
// as interface values, so they must be of comparable type, like pointers.
var devices = struct {
	sync.Mutex
	open map[heartyfs.Device]bool
}{open: make(map[heartyfs.Device]bool)}

func claimDevice(dev heartyfs.Device) error {
	devices.Lock()
	defer devices.Unlock()

	if devices.open[dev] {
		return errors.Wrapf(heartyfs.ErrBusy, "%T", dev)
	}
	devices.open[dev] = true
	return nil
}

func releaseDevice(dev heartyfs.Device) {
	devices.Lock()
	defer devices.Unlock()

	delete(devices.open, dev)
}

// newFilesystem claims dev. The caller releases it if it fails later on.
func newFilesystem(dev heartyfs.Device, opts []Option) (*Filesystem, error) {
	total, err := geometry(dev)
	if err != nil {
		return nil, err
	}

	if err := claimDevice(dev); err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	fs := &Filesystem{
		dev:   dev,
		store: blkfile.New(dev, heartyfs.BlockSize, total),
		log:   discard,
	}
	for _, opt := range opts {
		opt(fs)
	}

	return fs, nil
}

// geometry returns the number of blocks on dev.
func geometry(dev heartyfs.Device) (int, error) {
	size := dev.Size()
	if size%heartyfs.BlockSize != 0 {
		return 0, errors.Wrapf(heartyfs.ErrOutOfRange, "image size %d is not a multiple of %d", size, heartyfs.BlockSize)
	}

	total := size / heartyfs.BlockSize
	if total%8 != 0 || total <= int64(heartyfs.FirstDataID) || total > heartyfs.MaxBlocks {
		return 0, errors.Wrapf(heartyfs.ErrOutOfRange, "image of %d blocks", total)
	}

	return int(total), nil
}

// Format writes an empty filesystem to dev and opens it. Everything stored
// on dev before is lost.
func Format(dev heartyfs.Device, opts ...Option) (*Filesystem, error) {
	fs, err := newFilesystem(dev, opts)
	if err != nil {
		return nil, err
	}

	var cu cleanup.Cleanup
	defer cu.Clean()
	cu.Add(func() { releaseDevice(dev) })

	total := fs.store.Blocks()
	for i := 0; i < total; i++ {
		if err := fs.store.ZeroBlock(heartyfs.BlockID(i)); err != nil {
			return nil, err
		}
	}

	fs.alloc = alloc.Format(total)
	fs.sb = layout.NewSuperblock(int32(total), fs.alloc.Free())
	if err := fs.flush(); err != nil {
		return nil, err
	}

	fs.log.WithFields(logrus.Fields{
		"blocks": total,
		"free":   fs.alloc.Free(),
	}).Debug("formatted")

	cu.Release()
	return fs, nil
}

// Open reads the filesystem stored on dev. It fails with ErrBusy while
// another Filesystem is open on dev. Separate processes are kept apart by
// the lock of device.File, not by Open.
func Open(dev heartyfs.Device, opts ...Option) (*Filesystem, error) {
	fs, err := newFilesystem(dev, opts)
	if err != nil {
		return nil, err
	}

	var cu cleanup.Cleanup
	defer cu.Clean()
	cu.Add(func() { releaseDevice(dev) })

	buf, err := fs.store.ReadBlock(heartyfs.SuperblockID)
	if err != nil {
		return nil, err
	}
	fs.sb, err = layout.DecodeSuperblock(buf)
	if err != nil {
		return nil, err
	}
	if int(fs.sb.TotalBlocks) != fs.store.Blocks() {
		return nil, errors.Wrapf(heartyfs.ErrNotInitialized, "superblock counts %d blocks, device holds %d", fs.sb.TotalBlocks, fs.store.Blocks())
	}

	buf, err = fs.store.ReadBlock(heartyfs.BitmapID)
	if err != nil {
		return nil, err
	}
	fs.alloc, err = alloc.Load(buf, fs.store.Blocks())
	if err != nil {
		return nil, err
	}
	if fs.alloc.Free() != fs.sb.FreeBlocks {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "superblock counts %d free blocks, bitmap %d", fs.sb.FreeBlocks, fs.alloc.Free())
	}

	cu.Release()
	return fs, nil
}

// Close releases the device for other Filesystems. Every change is already
// on the device, Close writes nothing. The device itself stays open.
func (fs *Filesystem) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return heartyfs.ErrClosed
	}
	fs.closed = true
	releaseDevice(fs.dev)

	return nil
}

// Stats summarizes block usage.
type Stats struct {
	TotalBlocks int32
	FreeBlocks  int32
	UsedBlocks  int32
	BlockSize   int32
}

// Stat returns the current block usage.
func (fs *Filesystem) Stat() Stats {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return Stats{
		TotalBlocks: fs.alloc.Total(),
		FreeBlocks:  fs.alloc.Free(),
		UsedBlocks:  fs.alloc.Used(),
		BlockSize:   fs.sb.BlockSize,
	}
}

// begin takes the lock for one operation.
func (fs *Filesystem) begin() (func(), error) {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return nil, heartyfs.ErrClosed
	}
	if fs.broken != nil {
		fs.mu.Unlock()
		return nil, errors.Wrap(fs.broken, "filesystem unusable after failed write")
	}

	return fs.mu.Unlock, nil
}

// flush writes the superblock and the bitmap.
func (fs *Filesystem) flush() error {
	fs.sb.FreeBlocks = fs.alloc.Free()

	if err := fs.store.WriteBlock(heartyfs.SuperblockID, fs.sb.Encode()); err != nil {
		return err
	}

	return fs.store.WriteBlock(heartyfs.BitmapID, fs.alloc.Bytes())
}

// commit runs the writes of an operation and then flushes the metadata. A
// failure leaves the image in an unknown state.
func (fs *Filesystem) commit(writes ...func() error) error {
	for _, w := range writes {
		if err := w(); err != nil {
			fs.broken = err
			return err
		}
	}

	if err := fs.flush(); err != nil {
		fs.broken = err
		return err
	}

	return nil
}

func (fs *Filesystem) allocate() (heartyfs.BlockID, error) {
	bid, err := fs.alloc.Allocate()
	if err != nil {
		return 0, err
	}

	fs.log.WithField("block", bid).Debug("allocated")
	return bid, nil
}

func (fs *Filesystem) release(bid heartyfs.BlockID) error {
	if err := fs.alloc.Release(bid); err != nil {
		return err
	}

	fs.log.WithField("block", bid).Debug("released")
	return nil
}

// undoAllocate is registered as a rollback step after a successful allocate.
func (fs *Filesystem) undoAllocate(bid heartyfs.BlockID) func() {
	return func() {
		if err := fs.alloc.Release(bid); err != nil {
			fs.log.WithError(err).WithField("block", bid).Warn("rollback release failed")
		}
	}
}

// undoRelease is registered as a rollback step after a successful release.
func (fs *Filesystem) undoRelease(bid heartyfs.BlockID) func() {
	return func() {
		if err := fs.alloc.Claim(bid); err != nil {
			fs.log.WithError(err).WithField("block", bid).Warn("rollback claim failed")
		}
	}
}

// load decodes the directory or inode stored in bid. The root directory is
// returned as a copy of the one held in the superblock.
func (fs *Filesystem) load(bid heartyfs.BlockID) (layout.Block, error) {
	if bid == heartyfs.SuperblockID {
		return fs.sb.Root.Clone(), nil
	}
	if bid == heartyfs.BitmapID || fs.alloc.IsFree(bid) {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "entry points at block %d", bid)
	}

	buf, err := fs.store.ReadBlock(bid)
	if err != nil {
		return nil, err
	}

	blk, err := layout.Decode(bid, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "block %d", bid)
	}

	return blk, nil
}

func (fs *Filesystem) loadDir(bid heartyfs.BlockID) (*layout.Directory, error) {
	blk, err := fs.load(bid)
	if err != nil {
		return nil, err
	}

	dir, ok := blk.(*layout.Directory)
	if !ok {
		return nil, errors.Wrapf(heartyfs.ErrNotADirectory, "block %d", bid)
	}

	return dir, nil
}

func (fs *Filesystem) loadInode(bid heartyfs.BlockID) (*layout.Inode, error) {
	blk, err := fs.load(bid)
	if err != nil {
		return nil, err
	}

	ino, ok := blk.(*layout.Inode)
	if !ok {
		return nil, errors.Wrapf(heartyfs.ErrNotAFile, "block %d", bid)
	}

	return ino, nil
}

// saveDir returns the write that stores dir at bid. The root directory is
// kept in the superblock and written by flush.
func (fs *Filesystem) saveDir(bid heartyfs.BlockID, dir *layout.Directory) func() error {
	return func() error {
		if bid == heartyfs.SuperblockID {
			fs.sb.Root = dir
			return nil
		}

		return fs.store.WriteBlock(bid, dir.Encode())
	}
}

func (fs *Filesystem) writeBlock(bid heartyfs.BlockID, buf []byte) func() error {
	return func() error { return fs.store.WriteBlock(bid, buf) }
}

func (fs *Filesystem) zeroBlock(bid heartyfs.BlockID) func() error {
	return func() error { return fs.store.ZeroBlock(bid) }
}
