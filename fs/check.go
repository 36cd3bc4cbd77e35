package fs

import (
	"fmt"
	"strings"

	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/layout"
	"github.com/pkg/errors"
)

// Problem is an inconsistency found by Check.
type Problem struct {
	Block  heartyfs.BlockID
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("block %d: %s", p.Block, p.Reason)
}

// CheckError lists the problems found by Check.
type CheckError struct {
	Problems []Problem
}

func (err *CheckError) Error() string {
	strs := make([]string, len(err.Problems))
	for i, p := range err.Problems {
		strs[i] = p.String()
	}

	return fmt.Sprintf("%d problems: %s", len(err.Problems), strings.Join(strs, "; "))
}

// Is makes a CheckError match ErrCorrupt.
func (err *CheckError) Is(target error) bool {
	return target == heartyfs.ErrCorrupt
}

// Check walks the tree from the root and verifies that every reachable block
// is occupied and referenced once, that every occupied block is reachable,
// and that "." and ".." point where they should.
func (fs *Filesystem) Check() error {
	done, err := fs.begin()
	if err != nil {
		return err
	}
	defer done()

	c := checker{
		fs:   fs,
		seen: map[heartyfs.BlockID]bool{heartyfs.SuperblockID: true, heartyfs.BitmapID: true},
	}
	if err := c.dir(heartyfs.SuperblockID, heartyfs.SuperblockID, fs.sb.Root.Clone()); err != nil {
		return err
	}

	for i := heartyfs.FirstDataID; int32(i) < fs.alloc.Total(); i++ {
		if !fs.alloc.IsFree(i) && !c.seen[i] {
			c.report(i, "occupied but unreachable")
		}
	}

	if len(c.problems) > 0 {
		return &CheckError{Problems: c.problems}
	}
	return nil
}

type checker struct {
	fs       *Filesystem
	seen     map[heartyfs.BlockID]bool
	problems []Problem
}

func (c *checker) report(bid heartyfs.BlockID, format string, args ...interface{}) {
	c.problems = append(c.problems, Problem{Block: bid, Reason: fmt.Sprintf(format, args...)})
}

// mark records a reference to bid and reports whether it should be visited.
func (c *checker) mark(bid heartyfs.BlockID) bool {
	if int32(bid) >= c.fs.alloc.Total() {
		c.report(bid, "out of range")
		return false
	}
	if c.seen[bid] {
		c.report(bid, "referenced more than once")
		return false
	}
	c.seen[bid] = true

	if c.fs.alloc.IsFree(bid) {
		c.report(bid, "referenced but free")
		return false
	}
	return true
}

func (c *checker) dir(bid, parent heartyfs.BlockID, dir *layout.Directory) error {
	if dir.Len() < 2 || dir.Entries[0].Name != heartyfs.SelfName || dir.Entries[1].Name != heartyfs.ParentName {
		c.report(bid, "directory %q lacks . and ..", dir.Name)
		return nil
	}
	if dir.Entries[0].BlockID != bid {
		c.report(bid, ". points at %d", dir.Entries[0].BlockID)
	}
	if dir.Entries[1].BlockID != parent {
		c.report(bid, ".. points at %d, want %d", dir.Entries[1].BlockID, parent)
	}

	names := map[string]bool{}
	for _, e := range dir.Entries[2:] {
		if names[e.Name] {
			c.report(bid, "duplicate entry %q", e.Name)
		}
		names[e.Name] = true

		if !c.mark(e.BlockID) {
			continue
		}

		buf, err := c.fs.store.ReadBlock(e.BlockID)
		if err != nil {
			return err
		}
		blk, err := layout.Decode(e.BlockID, buf)
		if err != nil {
			if errors.Is(err, heartyfs.ErrCorrupt) {
				c.report(e.BlockID, "entry %q: %v", e.Name, err)
				continue
			}
			return err
		}

		switch b := blk.(type) {
		case *layout.Directory:
			if err := c.dir(e.BlockID, bid, b); err != nil {
				return err
			}
		case *layout.Inode:
			for _, db := range b.DataBlocks {
				c.mark(db)
			}
		default:
			c.report(e.BlockID, "entry %q points at a reserved block", e.Name)
		}
	}

	return nil
}
