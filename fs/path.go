package fs

import (
	"strings"

	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/layout"
	"github.com/pkg/errors"
)

// Resolution is the outcome of walking a path from the root.
type Resolution struct {
	// Dir is the directory the walk stopped in and DirID its block.
	Dir   *layout.Directory
	DirID heartyfs.BlockID

	// Leaf is the first segment that was not found. If the whole path was
	// found it is the last segment, or empty for the root.
	Leaf string

	// Unresolved counts the segments that were not found. Zero means the
	// path exists, one means Leaf can be created in Dir.
	Unresolved int

	// Target is the block of the last segment found and TargetType its type.
	Target     heartyfs.BlockID
	TargetType layout.Type

	// Container is the directory holding the entry of Target.
	Container   *layout.Directory
	ContainerID heartyfs.BlockID
}

// Exists reports whether the whole path was found.
func (res *Resolution) Exists() bool { return res.Unresolved == 0 }

// IsRoot reports whether the path named the root directory.
func (res *Resolution) IsRoot() bool {
	return res.Exists() && res.Leaf == ""
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// Resolve walks path from the root. Empty segments are ignored, so "/",
// "" and "//" all name the root.
func (fs *Filesystem) Resolve(path string) (*Resolution, error) {
	done, err := fs.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	return fs.resolve(path)
}

func (fs *Filesystem) resolve(path string) (*Resolution, error) {
	segs := splitPath(path)

	root := fs.sb.Root.Clone()
	res := &Resolution{
		Dir:         root,
		DirID:       heartyfs.SuperblockID,
		Target:      heartyfs.SuperblockID,
		TargetType:  layout.TypeDirectory,
		Container:   root,
		ContainerID: heartyfs.SuperblockID,
	}

	for i, seg := range segs {
		bid, err := res.Dir.Find(seg)
		if errors.Is(err, heartyfs.ErrNotFound) {
			res.Leaf = seg
			res.Unresolved = len(segs) - i
			return res, nil
		}

		blk, err := fs.load(bid)
		if err != nil {
			return nil, err
		}

		switch b := blk.(type) {
		case *layout.Directory:
			res.Container, res.ContainerID = res.Dir, res.DirID
			res.Dir, res.DirID = b, bid
			res.TargetType = layout.TypeDirectory
		case *layout.Inode:
			if i < len(segs)-1 {
				return nil, errors.Wrapf(heartyfs.ErrNotADirectory, "%q in %q", seg, path)
			}
			res.Container, res.ContainerID = res.Dir, res.DirID
			res.TargetType = layout.TypeFile
		default:
			return nil, errors.Wrapf(heartyfs.ErrCorrupt, "entry %q points at block %d", seg, bid)
		}

		res.Target = bid
		res.Leaf = seg
	}

	return res, nil
}

// resolveNew resolves the location of an entry that is about to be created.
func (fs *Filesystem) resolveNew(path string) (*Resolution, error) {
	res, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}

	switch {
	case res.Unresolved == 0:
		return nil, errors.Wrapf(heartyfs.ErrAlreadyExists, "%q", path)
	case res.Unresolved > 1:
		return nil, errors.Wrapf(heartyfs.ErrNoSuchParent, "%q", path)
	}

	return res, nil
}

// resolveExisting resolves a path that must exist.
func (fs *Filesystem) resolveExisting(path string) (*Resolution, error) {
	res, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}

	switch {
	case res.Unresolved == 1:
		return nil, errors.Wrapf(heartyfs.ErrNotFound, "%q", path)
	case res.Unresolved > 1:
		return nil, errors.Wrapf(heartyfs.ErrNoSuchParent, "%q", path)
	}

	return res, nil
}
