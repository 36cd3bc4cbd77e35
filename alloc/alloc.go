// Package alloc keeps track of which blocks of an image are in use.
//
// The bitmap holds one bit per block, bit i%8 of byte i/8 for block i. A set
// bit means the block is free, a cleared bit means it is occupied. Blocks 0
// and 1 hold the superblock and the bitmap itself and are never handed out.
package alloc

import (
	"github.com/keks/heartyfs"
	"github.com/pkg/errors"
)

// Allocator hands out blocks lowest id first and maintains the free count.
type Allocator struct {
	bits  []byte
	total int
	free  int32
}

// Format returns an allocator for total blocks with only the reserved
// blocks occupied.
func Format(total int) *Allocator {
	a := &Allocator{
		bits:  make([]byte, (total+7)/8),
		total: total,
	}

	for i := heartyfs.FirstDataID; int(i) < total; i++ {
		a.set(i)
	}
	a.free = int32(total) - int32(heartyfs.FirstDataID)

	return a
}

// Load reads the allocator state from a bitmap block. It fails if the
// bitmap is too short or marks a reserved block as free.
func Load(bits []byte, total int) (*Allocator, error) {
	n := (total + 7) / 8
	if len(bits) < n {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "bitmap of %d bytes for %d blocks", len(bits), total)
	}

	a := &Allocator{
		bits:  append([]byte(nil), bits[:n]...),
		total: total,
	}

	for i := heartyfs.BlockID(0); i < heartyfs.FirstDataID; i++ {
		if a.isSet(i) {
			return nil, errors.Wrapf(heartyfs.ErrCorrupt, "reserved block %d marked free", i)
		}
	}

	for i := 0; i < total; i++ {
		if a.isSet(heartyfs.BlockID(i)) {
			a.free++
		}
	}

	return a, nil
}

func (a *Allocator) isSet(bid heartyfs.BlockID) bool {
	return a.bits[bid/8]>>(bid%8)&1 == 1
}

func (a *Allocator) set(bid heartyfs.BlockID) {
	a.bits[bid/8] |= 1 << (bid % 8)
}

func (a *Allocator) clear(bid heartyfs.BlockID) {
	a.bits[bid/8] &^= 1 << (bid % 8)
}

func (a *Allocator) check(bid heartyfs.BlockID) error {
	if bid < heartyfs.FirstDataID {
		return errors.Wrapf(heartyfs.ErrProtected, "block %d", bid)
	}
	if int64(bid) >= int64(a.total) {
		return errors.Wrapf(heartyfs.ErrOutOfRange, "block %d of %d", bid, a.total)
	}

	return nil
}

// Allocate marks the lowest free block occupied and returns it.
func (a *Allocator) Allocate() (heartyfs.BlockID, error) {
	if a.free == 0 {
		return 0, heartyfs.ErrNoFreeSpace
	}

	for i, b := range a.bits {
		if b == 0 {
			continue
		}

		for j := 0; j < 8; j++ {
			bid := heartyfs.BlockID(i*8 + j)
			if int(bid) >= a.total {
				break
			}
			if bid >= heartyfs.FirstDataID && a.isSet(bid) {
				a.clear(bid)
				a.free--
				return bid, nil
			}
		}
	}

	return 0, heartyfs.ErrNoFreeSpace
}

// Release marks an occupied block free again.
func (a *Allocator) Release(bid heartyfs.BlockID) error {
	if err := a.check(bid); err != nil {
		return err
	}
	if a.isSet(bid) {
		return errors.Wrapf(heartyfs.ErrDoubleFree, "block %d", bid)
	}

	a.set(bid)
	a.free++

	return nil
}

// Claim marks a specific free block occupied.
func (a *Allocator) Claim(bid heartyfs.BlockID) error {
	if err := a.check(bid); err != nil {
		return err
	}
	if !a.isSet(bid) {
		return errors.Wrapf(heartyfs.ErrInUse, "block %d", bid)
	}

	a.clear(bid)
	a.free--

	return nil
}

// IsFree reports whether a block is free. Ids past the end are never free.
func (a *Allocator) IsFree(bid heartyfs.BlockID) bool {
	if int64(bid) >= int64(a.total) {
		return false
	}

	return a.isSet(bid)
}

// Free returns the number of free blocks.
func (a *Allocator) Free() int32 { return a.free }

// Used returns the number of occupied blocks, reserved ones included.
func (a *Allocator) Used() int32 { return int32(a.total) - a.free }

// Total returns the number of blocks tracked.
func (a *Allocator) Total() int32 { return int32(a.total) }

// Bytes returns the bitmap padded to a whole block.
func (a *Allocator) Bytes() []byte {
	buf := make([]byte, heartyfs.BlockSize)
	copy(buf, a.bits)
	return buf
}
