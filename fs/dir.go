package fs

import (
	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/internal/cleanup"
	"github.com/keks/heartyfs/layout"
	"github.com/pkg/errors"
)

// createDirectory allocates a directory holding "." and ".." and links it
// into parent as name.
func (fs *Filesystem) createDirectory(parentID heartyfs.BlockID, parent *layout.Directory, name string) (heartyfs.BlockID, error) {
	var cu cleanup.Cleanup
	defer cu.Clean()

	bid, err := fs.allocate()
	if err != nil {
		return 0, err
	}
	cu.Add(fs.undoAllocate(bid))

	dir := &layout.Directory{Name: name}
	if err := dir.Insert(heartyfs.SelfName, bid); err != nil {
		return 0, err
	}
	if err := dir.Insert(heartyfs.ParentName, parentID); err != nil {
		return 0, err
	}
	if err := parent.Insert(name, bid); err != nil {
		return 0, err
	}

	err = fs.commit(
		fs.saveDir(bid, dir),
		fs.saveDir(parentID, parent),
	)
	if err != nil {
		return 0, err
	}

	cu.Release()
	return bid, nil
}

// removeDirectory unlinks the empty directory name from parent and frees it.
func (fs *Filesystem) removeDirectory(parentID heartyfs.BlockID, parent *layout.Directory, name string) error {
	if name == heartyfs.SelfName || name == heartyfs.ParentName {
		return errors.Wrapf(heartyfs.ErrProtected, "entry %q", name)
	}

	bid, err := parent.Find(name)
	if err != nil {
		return err
	}
	if bid == heartyfs.SuperblockID {
		return errors.Wrap(heartyfs.ErrProtected, "root directory")
	}

	dir, err := fs.loadDir(bid)
	if err != nil {
		return err
	}
	if !dir.Empty() {
		return errors.Wrapf(heartyfs.ErrNotEmpty, "%q holds %d entries", name, dir.Len()-2)
	}

	var cu cleanup.Cleanup
	defer cu.Clean()

	if err := parent.Remove(name); err != nil {
		return err
	}
	if err := fs.release(bid); err != nil {
		return err
	}
	cu.Add(fs.undoRelease(bid))

	err = fs.commit(
		fs.zeroBlock(bid),
		fs.saveDir(parentID, parent),
	)
	if err != nil {
		return err
	}

	cu.Release()
	return nil
}
