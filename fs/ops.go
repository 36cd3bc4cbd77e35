package fs

import (
	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/layout"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func (fs *Filesystem) logOp(op, path string, err error) {
	l := fs.log.WithFields(logrus.Fields{"op": op, "path": path})
	if err != nil {
		l.WithError(err).Debug("failed")
		return
	}
	l.Debug("done")
}

// Create makes an empty file at path. The parent directory must exist.
func (fs *Filesystem) Create(path string) (bid heartyfs.BlockID, err error) {
	done, err := fs.begin()
	if err != nil {
		return 0, err
	}
	defer done()
	defer func() { fs.logOp("create", path, err) }()

	res, err := fs.resolveNew(path)
	if err != nil {
		return 0, err
	}

	return fs.createFile(res.DirID, res.Dir, res.Leaf, nil)
}

// WriteNew makes a file at path holding data. Like Create it fails if path
// exists, and a failure leaves no file behind.
func (fs *Filesystem) WriteNew(path string, data []byte) (bid heartyfs.BlockID, err error) {
	done, err := fs.begin()
	if err != nil {
		return 0, err
	}
	defer done()
	defer func() { fs.logOp("writenew", path, err) }()

	res, err := fs.resolveNew(path)
	if err != nil {
		return 0, err
	}

	return fs.createFile(res.DirID, res.Dir, res.Leaf, data)
}

// Mkdir makes an empty directory at path. The parent directory must exist.
func (fs *Filesystem) Mkdir(path string) (bid heartyfs.BlockID, err error) {
	done, err := fs.begin()
	if err != nil {
		return 0, err
	}
	defer done()
	defer func() { fs.logOp("mkdir", path, err) }()

	res, err := fs.resolveNew(path)
	if err != nil {
		return 0, err
	}

	return fs.createDirectory(res.DirID, res.Dir, res.Leaf)
}

// Remove deletes the file at path together with its content.
func (fs *Filesystem) Remove(path string) (err error) {
	done, err := fs.begin()
	if err != nil {
		return err
	}
	defer done()
	defer func() { fs.logOp("remove", path, err) }()

	res, err := fs.resolveExisting(path)
	if err != nil {
		return err
	}
	if res.TargetType != layout.TypeFile {
		return errors.Wrapf(heartyfs.ErrNotAFile, "%q", path)
	}

	return fs.removeFile(res.ContainerID, res.Container, res.Leaf)
}

// Rmdir deletes the empty directory at path. The root cannot be removed.
func (fs *Filesystem) Rmdir(path string) (err error) {
	done, err := fs.begin()
	if err != nil {
		return err
	}
	defer done()
	defer func() { fs.logOp("rmdir", path, err) }()

	res, err := fs.resolveExisting(path)
	if err != nil {
		return err
	}
	if res.IsRoot() {
		return errors.Wrap(heartyfs.ErrProtected, "root directory")
	}
	if res.TargetType != layout.TypeDirectory {
		return errors.Wrapf(heartyfs.ErrNotADirectory, "%q", path)
	}

	return fs.removeDirectory(res.ContainerID, res.Container, res.Leaf)
}

// ReadFile returns the content of the file at path.
func (fs *Filesystem) ReadFile(path string) (data []byte, err error) {
	done, err := fs.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	defer func() { fs.logOp("read", path, err) }()

	res, err := fs.resolveExisting(path)
	if err != nil {
		return nil, err
	}
	if res.TargetType != layout.TypeFile {
		return nil, errors.Wrapf(heartyfs.ErrNotAFile, "%q", path)
	}

	ino, err := fs.loadInode(res.Target)
	if err != nil {
		return nil, err
	}

	return fs.readData(ino)
}

// WriteFile replaces the content of the existing file at path with data.
func (fs *Filesystem) WriteFile(path string, data []byte) (err error) {
	done, err := fs.begin()
	if err != nil {
		return err
	}
	defer done()
	defer func() { fs.logOp("write", path, err) }()

	res, err := fs.resolveExisting(path)
	if err != nil {
		return err
	}
	if res.TargetType != layout.TypeFile {
		return errors.Wrapf(heartyfs.ErrNotAFile, "%q", path)
	}

	ino, err := fs.loadInode(res.Target)
	if err != nil {
		return err
	}

	return fs.writeData(res.Target, ino, data)
}

// DirEntry describes an entry of a directory listing.
type DirEntry struct {
	Name    string
	BlockID heartyfs.BlockID
	Type    layout.Type

	// Size is the content length of files, zero for directories.
	Size int
}

// ReadDir lists the directory at path, "." and ".." included. The order of
// entries is not stable across removals.
func (fs *Filesystem) ReadDir(path string) ([]DirEntry, error) {
	done, err := fs.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	res, err := fs.resolveExisting(path)
	if err != nil {
		return nil, err
	}
	if res.TargetType != layout.TypeDirectory {
		return nil, errors.Wrapf(heartyfs.ErrNotADirectory, "%q", path)
	}

	var out []DirEntry
	for _, e := range res.Dir.Entries {
		blk, err := fs.load(e.BlockID)
		if err != nil {
			return nil, err
		}

		de := DirEntry{Name: e.Name, BlockID: e.BlockID, Type: layout.TypeDirectory}
		if ino, ok := blk.(*layout.Inode); ok {
			de.Type = layout.TypeFile
			data, err := fs.readData(ino)
			if err != nil {
				return nil, err
			}
			de.Size = len(data)
		}
		out = append(out, de)
	}

	return out, nil
}

// CreateFileAt makes an empty file called name in the directory at block
// parent.
func (fs *Filesystem) CreateFileAt(parent heartyfs.BlockID, name string) (heartyfs.BlockID, error) {
	done, err := fs.begin()
	if err != nil {
		return 0, err
	}
	defer done()

	dir, err := fs.loadDir(parent)
	if err != nil {
		return 0, err
	}
	if _, err := dir.Find(name); err == nil {
		return 0, errors.Wrapf(heartyfs.ErrAlreadyExists, "%q", name)
	}

	return fs.createFile(parent, dir, name, nil)
}

// CreateDirectoryAt makes an empty directory called name in the directory
// at block parent.
func (fs *Filesystem) CreateDirectoryAt(parent heartyfs.BlockID, name string) (heartyfs.BlockID, error) {
	done, err := fs.begin()
	if err != nil {
		return 0, err
	}
	defer done()

	dir, err := fs.loadDir(parent)
	if err != nil {
		return 0, err
	}
	if _, err := dir.Find(name); err == nil {
		return 0, errors.Wrapf(heartyfs.ErrAlreadyExists, "%q", name)
	}

	return fs.createDirectory(parent, dir, name)
}

// RemoveFileAt deletes the file called name in the directory at block parent.
func (fs *Filesystem) RemoveFileAt(parent heartyfs.BlockID, name string) error {
	done, err := fs.begin()
	if err != nil {
		return err
	}
	defer done()

	dir, err := fs.loadDir(parent)
	if err != nil {
		return err
	}

	return fs.removeFile(parent, dir, name)
}

// RemoveDirectoryAt deletes the empty directory called name in the directory
// at block parent.
func (fs *Filesystem) RemoveDirectoryAt(parent heartyfs.BlockID, name string) error {
	done, err := fs.begin()
	if err != nil {
		return err
	}
	defer done()

	dir, err := fs.loadDir(parent)
	if err != nil {
		return err
	}

	return fs.removeDirectory(parent, dir, name)
}
