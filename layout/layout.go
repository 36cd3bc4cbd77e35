// Package layout encodes and decodes the blocks of an image.
//
// All integers are stored in the host's native byte order. Every block other
// than the superblock, the bitmap and data blocks starts with a type field
// that is checked before the rest of the block is interpreted.
package layout

import (
	"bytes"
	"encoding/binary"

	"github.com/keks/heartyfs"
	"github.com/pkg/errors"
)

var order = binary.NativeEndian

// Type is the discriminant stored at the start of directory and inode blocks.
type Type int32

const (
	TypeFile      Type = 0
	TypeDirectory Type = 1
)

func (t Type) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Kind tells the variants returned by Decode apart.
type Kind int

const (
	KindSuperblock Kind = iota
	KindBitmap
	KindDirectory
	KindInode
	KindData
)

// Block is one of *Superblock, *Bitmap, *Directory, *Inode or *DataBlock.
type Block interface {
	Kind() Kind
}

type rawEntry struct {
	BlockID int32
	Name    [heartyfs.NameSize]byte
}

type rawDirectory struct {
	Type    int32
	Name    [heartyfs.NameSize]byte
	Size    int32
	Entries [heartyfs.DirEntries]rawEntry
}

type rawSuperblock struct {
	TotalBlocks int32
	FreeBlocks  int32
	BlockSize   int32
	Root        rawDirectory
}

type rawInode struct {
	Type       int32
	Name       [heartyfs.NameSize]byte
	Size       int32
	DataBlocks [heartyfs.InodeBlocks]int32
}

type rawDataBlock struct {
	Used    int32
	Payload [heartyfs.DataPayloadSize]byte
}

// ValidName checks that name can be stored in a directory entry.
func ValidName(name string) error {
	if name == "" || len(name) > heartyfs.MaxNameLen {
		return errors.Wrapf(heartyfs.ErrInvalidName, "%q", name)
	}

	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 0x20 || c > 0x7e || c == '/' {
			return errors.Wrapf(heartyfs.ErrInvalidName, "%q", name)
		}
	}

	return nil
}

func putName(dst *[heartyfs.NameSize]byte, name string) {
	*dst = [heartyfs.NameSize]byte{}
	copy(dst[:heartyfs.MaxNameLen], name)
}

func getName(src [heartyfs.NameSize]byte) string {
	if i := bytes.IndexByte(src[:], 0); i >= 0 {
		return string(src[:i])
	}
	return string(src[:])
}

func encode(v interface{}) []byte {
	var buf bytes.Buffer
	buf.Grow(heartyfs.BlockSize)

	// writes to a bytes.Buffer do not fail
	_ = binary.Write(&buf, order, v)

	out := make([]byte, heartyfs.BlockSize)
	copy(out, buf.Bytes())
	return out
}

func decode(buf []byte, v interface{}) error {
	if len(buf) != heartyfs.BlockSize {
		return errors.Wrapf(heartyfs.ErrCorrupt, "block of %d bytes", len(buf))
	}

	return binary.Read(bytes.NewReader(buf), order, v)
}

// Decode interprets the block with the given id. Blocks 0 and 1 always decode
// as superblock and bitmap; all other blocks must carry a valid type field.
// Data blocks carry no type field and must be read with DecodeDataBlock.
func Decode(bid heartyfs.BlockID, buf []byte) (Block, error) {
	switch bid {
	case heartyfs.SuperblockID:
		return DecodeSuperblock(buf)
	case heartyfs.BitmapID:
		if len(buf) != heartyfs.BlockSize {
			return nil, errors.Wrapf(heartyfs.ErrCorrupt, "block of %d bytes", len(buf))
		}
		return &Bitmap{Bits: append([]byte(nil), buf...)}, nil
	}

	if len(buf) < 4 {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "block %d too short", bid)
	}

	switch t := Type(order.Uint32(buf)); t {
	case TypeDirectory:
		return DecodeDirectory(buf)
	case TypeFile:
		return DecodeInode(buf)
	default:
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "block %d has type %d", bid, t)
	}
}

// Bitmap is the raw content of the bitmap block.
type Bitmap struct {
	Bits []byte
}

func (*Bitmap) Kind() Kind { return KindBitmap }
