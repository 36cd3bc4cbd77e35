package heartyfs // import "github.com/keks/heartyfs"

import (
	"io"
)

// Basic Types

// ReadWriterAt is both a ReaderAt and a WriterAt.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// Device is the backing storage of an image.
type Device interface {
	ReadWriterAt

	// Size returns the size of the device in bytes.
	Size() int64
}

// Block Layer

// BlockID identifies blocks.
type BlockID uint32

const (
	// BlockSize is the size of every block in bytes.
	BlockSize = 1 << 9

	// DefaultImageSize is the size of a freshly created image.
	DefaultImageSize = 1 << 20

	// MaxBlocks is the largest block count whose bitmap fits into a single block.
	MaxBlocks = BlockSize * 8
)

const (
	// SuperblockID is the block holding the superblock and the root directory.
	SuperblockID BlockID = 0

	// BitmapID is the block holding the free block bitmap.
	BitmapID BlockID = 1

	// FirstDataID is the lowest block id the allocator may hand out.
	FirstDataID BlockID = 2
)

// Directory Layer

const (
	// NameSize is the on-disk size of a name, including the terminator.
	NameSize = 28

	// MaxNameLen is the longest name that can be stored.
	MaxNameLen = NameSize - 1

	// DirEntries is the number of entries a directory can hold.
	DirEntries = 14

	// SelfName and ParentName are the protected entries of each directory.
	SelfName   = "."
	ParentName = ".."
)

// File Layer

const (
	// InodeBlocks is the number of data blocks an inode can reference.
	InodeBlocks = 119

	// DataHeaderSize is the size of the header of each data block in bytes.
	DataHeaderSize = 4

	// DataPayloadSize is the number of content bytes a data block can hold.
	DataPayloadSize = BlockSize - DataHeaderSize

	// MaxFileSize is the largest content a single file can hold.
	MaxFileSize = InodeBlocks * DataPayloadSize
)
