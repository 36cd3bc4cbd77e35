package layout

import (
	"github.com/keks/heartyfs"
	"github.com/pkg/errors"
)

// RootName is the name stored in the root directory. An empty root name
// marks an image that was never formatted.
const RootName = "/"

// Superblock describes the image and embeds the root directory.
type Superblock struct {
	TotalBlocks int32
	FreeBlocks  int32
	BlockSize   int32

	Root *Directory
}

func (*Superblock) Kind() Kind { return KindSuperblock }

// NewSuperblock returns the superblock of a freshly formatted image.
func NewSuperblock(total, free int32) *Superblock {
	return &Superblock{
		TotalBlocks: total,
		FreeBlocks:  free,
		BlockSize:   heartyfs.BlockSize,
		Root:        NewDirectory(RootName, heartyfs.SuperblockID, heartyfs.SuperblockID),
	}
}

// Encode returns the block image of the superblock.
func (sb *Superblock) Encode() []byte {
	raw := rawSuperblock{
		TotalBlocks: sb.TotalBlocks,
		FreeBlocks:  sb.FreeBlocks,
		BlockSize:   sb.BlockSize,
		Root:        sb.Root.raw(),
	}

	return encode(&raw)
}

// DecodeSuperblock interprets buf as block 0.
func DecodeSuperblock(buf []byte) (*Superblock, error) {
	var raw rawSuperblock
	if err := decode(buf, &raw); err != nil {
		return nil, err
	}

	if raw.BlockSize != heartyfs.BlockSize || Type(raw.Root.Type) != TypeDirectory || raw.Root.Name[0] == 0 {
		return nil, heartyfs.ErrNotInitialized
	}

	if raw.TotalBlocks <= int32(heartyfs.FirstDataID) || raw.TotalBlocks > heartyfs.MaxBlocks {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "total blocks %d", raw.TotalBlocks)
	}
	if raw.FreeBlocks < 0 || raw.FreeBlocks > raw.TotalBlocks-int32(heartyfs.FirstDataID) {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "free blocks %d of %d", raw.FreeBlocks, raw.TotalBlocks)
	}

	root, err := fromRawDirectory(&raw.Root)
	if err != nil {
		return nil, errors.Wrap(err, "root directory")
	}

	return &Superblock{
		TotalBlocks: raw.TotalBlocks,
		FreeBlocks:  raw.FreeBlocks,
		BlockSize:   raw.BlockSize,
		Root:        root,
	}, nil
}
