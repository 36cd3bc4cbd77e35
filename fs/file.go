package fs

import (
	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/internal/cleanup"
	"github.com/keks/heartyfs/layout"
	"github.com/pkg/errors"
)

// createFile allocates an inode holding data and links it into parent as
// name.
func (fs *Filesystem) createFile(parentID heartyfs.BlockID, parent *layout.Directory, name string, data []byte) (heartyfs.BlockID, error) {
	if len(data) > heartyfs.MaxFileSize {
		return 0, errors.Wrapf(heartyfs.ErrFileTooLarge, "%d bytes, at most %d fit", len(data), heartyfs.MaxFileSize)
	}

	var cu cleanup.Cleanup
	defer cu.Clean()

	bid, err := fs.allocate()
	if err != nil {
		return 0, err
	}
	cu.Add(fs.undoAllocate(bid))

	ino := &layout.Inode{Name: name}
	writes, err := fs.fillData(ino, data, &cu)
	if err != nil {
		return 0, err
	}

	if err := parent.Insert(name, bid); err != nil {
		return 0, err
	}

	writes = append(writes,
		fs.writeBlock(bid, ino.Encode()),
		fs.saveDir(parentID, parent),
	)
	if err := fs.commit(writes...); err != nil {
		return 0, err
	}

	cu.Release()
	return bid, nil
}

// appendDataBlock allocates a data block and attaches it to the end of ino.
func (fs *Filesystem) appendDataBlock(ino *layout.Inode) (heartyfs.BlockID, error) {
	if len(ino.DataBlocks) >= heartyfs.InodeBlocks {
		return 0, errors.Wrapf(heartyfs.ErrFileTooLarge, "%q holds %d blocks", ino.Name, len(ino.DataBlocks))
	}

	bid, err := fs.allocate()
	if err != nil {
		return 0, err
	}

	ino.DataBlocks = append(ino.DataBlocks, bid)
	return bid, nil
}

// fillData appends data blocks holding data to ino. The allocations are
// undone by cu, the returned writes store the chunks.
func (fs *Filesystem) fillData(ino *layout.Inode, data []byte, cu *cleanup.Cleanup) ([]func() error, error) {
	var writes []func() error
	for off := 0; off < len(data); off += heartyfs.DataPayloadSize {
		end := off + heartyfs.DataPayloadSize
		if end > len(data) {
			end = len(data)
		}

		db, err := fs.appendDataBlock(ino)
		if err != nil {
			return nil, err
		}
		cu.Add(fs.undoAllocate(db))

		writes = append(writes, fs.writeBlock(db, (&layout.DataBlock{Data: data[off:end]}).Encode()))
	}

	return writes, nil
}

// writeData replaces the content of the inode stored at bid with data.
func (fs *Filesystem) writeData(bid heartyfs.BlockID, ino *layout.Inode, data []byte) error {
	if len(data) > heartyfs.MaxFileSize {
		return errors.Wrapf(heartyfs.ErrFileTooLarge, "%d bytes, at most %d fit", len(data), heartyfs.MaxFileSize)
	}

	var cu cleanup.Cleanup
	defer cu.Clean()

	old := ino.DataBlocks
	for _, db := range old {
		if err := fs.release(db); err != nil {
			return err
		}
		cu.Add(fs.undoRelease(db))
	}

	next := &layout.Inode{Name: ino.Name}
	writes, err := fs.fillData(next, data, &cu)
	if err != nil {
		return err
	}

	reused := make(map[heartyfs.BlockID]bool, len(next.DataBlocks))
	for _, db := range next.DataBlocks {
		reused[db] = true
	}
	for _, db := range old {
		if !reused[db] {
			writes = append(writes, fs.zeroBlock(db))
		}
	}
	writes = append(writes, fs.writeBlock(bid, next.Encode()))

	if err := fs.commit(writes...); err != nil {
		return err
	}

	cu.Release()
	*ino = *next
	return nil
}

// readData returns the concatenated content of the data blocks of ino.
func (fs *Filesystem) readData(ino *layout.Inode) ([]byte, error) {
	var out []byte
	for _, db := range ino.DataBlocks {
		buf, err := fs.store.ReadBlock(db)
		if err != nil {
			return nil, err
		}

		blk, err := layout.DecodeDataBlock(buf)
		if err != nil {
			return nil, errors.Wrapf(err, "data block %d of %q", db, ino.Name)
		}

		out = append(out, blk.Data...)
	}

	return out, nil
}

// removeFile unlinks name from parent and frees the inode and its data.
func (fs *Filesystem) removeFile(parentID heartyfs.BlockID, parent *layout.Directory, name string) error {
	bid, err := parent.Find(name)
	if err != nil {
		return err
	}

	ino, err := fs.loadInode(bid)
	if err != nil {
		return err
	}

	var cu cleanup.Cleanup
	defer cu.Clean()

	var writes []func() error
	for _, db := range ino.DataBlocks {
		if err := fs.release(db); err != nil {
			return err
		}
		cu.Add(fs.undoRelease(db))
		writes = append(writes, fs.zeroBlock(db))
	}

	if err := parent.Remove(name); err != nil {
		return err
	}

	if err := fs.release(bid); err != nil {
		return err
	}
	cu.Add(fs.undoRelease(bid))

	writes = append(writes, fs.zeroBlock(bid), fs.saveDir(parentID, parent))
	if err := fs.commit(writes...); err != nil {
		return err
	}

	cu.Release()
	return nil
}
