package layout

import (
	"github.com/keks/heartyfs"
	"github.com/pkg/errors"
)

// Inode describes a file: its name and the ordered list of its data blocks.
type Inode struct {
	Name       string
	DataBlocks []heartyfs.BlockID
}

func (*Inode) Kind() Kind { return KindInode }

// Clone returns a deep copy of ino.
func (ino *Inode) Clone() *Inode {
	return &Inode{
		Name:       ino.Name,
		DataBlocks: append([]heartyfs.BlockID(nil), ino.DataBlocks...),
	}
}

// Encode returns the block image of the inode.
func (ino *Inode) Encode() []byte {
	raw := rawInode{
		Type: int32(TypeFile),
		Size: int32(len(ino.DataBlocks)),
	}
	putName(&raw.Name, ino.Name)
	for i, bid := range ino.DataBlocks {
		raw.DataBlocks[i] = int32(bid)
	}

	return encode(&raw)
}

// DecodeInode interprets buf as an inode block.
func DecodeInode(buf []byte) (*Inode, error) {
	var raw rawInode
	if err := decode(buf, &raw); err != nil {
		return nil, err
	}

	if Type(raw.Type) != TypeFile {
		return nil, errors.Wrapf(heartyfs.ErrNotAFile, "type %s", Type(raw.Type))
	}
	// a cleared block has the file type but no name
	if raw.Name[0] == 0 {
		return nil, errors.Wrap(heartyfs.ErrCorrupt, "inode without name")
	}
	if raw.Size < 0 || raw.Size > heartyfs.InodeBlocks {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "inode size %d", raw.Size)
	}

	ino := &Inode{
		Name:       getName(raw.Name),
		DataBlocks: make([]heartyfs.BlockID, raw.Size),
	}
	for i := range ino.DataBlocks {
		if raw.DataBlocks[i] < int32(heartyfs.FirstDataID) {
			return nil, errors.Wrapf(heartyfs.ErrCorrupt, "data block %d is %d", i, raw.DataBlocks[i])
		}
		ino.DataBlocks[i] = heartyfs.BlockID(raw.DataBlocks[i])
	}

	return ino, nil
}

// DataBlock holds up to DataPayloadSize bytes of file content.
type DataBlock struct {
	Data []byte
}

func (*DataBlock) Kind() Kind { return KindData }

// Encode returns the block image of the data block. Data beyond the payload
// size is dropped.
func (db *DataBlock) Encode() []byte {
	var raw rawDataBlock
	raw.Used = int32(copy(raw.Payload[:], db.Data))

	return encode(&raw)
}

// DecodeDataBlock interprets buf as a data block.
func DecodeDataBlock(buf []byte) (*DataBlock, error) {
	var raw rawDataBlock
	if err := decode(buf, &raw); err != nil {
		return nil, err
	}

	if raw.Used < 0 || raw.Used > heartyfs.DataPayloadSize {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "data block uses %d bytes", raw.Used)
	}

	return &DataBlock{Data: append([]byte(nil), raw.Payload[:raw.Used]...)}, nil
}
