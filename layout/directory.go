package layout

import (
	"github.com/keks/heartyfs"
	"github.com/pkg/errors"
)

// Entry links a name to the block of a directory or inode.
type Entry struct {
	BlockID heartyfs.BlockID
	Name    string
}

// Directory is a fixed capacity table of entries. By convention entry 0 is
// "." and entry 1 is "..".
//
// Removal swaps the last entry into the freed slot, so the order of entries
// is not preserved across Remove.
type Directory struct {
	Name    string
	Entries []Entry
}

func (*Directory) Kind() Kind { return KindDirectory }

// NewDirectory returns a directory holding only "." and "..".
func NewDirectory(name string, self, parent heartyfs.BlockID) *Directory {
	return &Directory{
		Name: name,
		Entries: []Entry{
			{BlockID: self, Name: heartyfs.SelfName},
			{BlockID: parent, Name: heartyfs.ParentName},
		},
	}
}

// Len returns the number of live entries.
func (dir *Directory) Len() int { return len(dir.Entries) }

// Empty reports whether the directory holds nothing but "." and "..".
func (dir *Directory) Empty() bool { return len(dir.Entries) <= 2 }

// Clone returns a deep copy of dir.
func (dir *Directory) Clone() *Directory {
	return &Directory{
		Name:    dir.Name,
		Entries: append([]Entry(nil), dir.Entries...),
	}
}

func (dir *Directory) index(name string) int {
	for i, e := range dir.Entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Find returns the block id stored under name.
func (dir *Directory) Find(name string) (heartyfs.BlockID, error) {
	i := dir.index(name)
	if i < 0 {
		return 0, errors.Wrapf(heartyfs.ErrNotFound, "%q in %q", name, dir.Name)
	}

	return dir.Entries[i].BlockID, nil
}

// Insert appends an entry.
func (dir *Directory) Insert(name string, bid heartyfs.BlockID) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if len(dir.Entries) >= heartyfs.DirEntries {
		return errors.Wrapf(heartyfs.ErrDirectoryFull, "%q", dir.Name)
	}
	if dir.index(name) >= 0 {
		return errors.Wrapf(heartyfs.ErrDuplicateName, "%q in %q", name, dir.Name)
	}

	dir.Entries = append(dir.Entries, Entry{BlockID: bid, Name: name})
	return nil
}

// Remove deletes the entry called name by moving the last entry into its
// slot. "." and ".." cannot be removed.
func (dir *Directory) Remove(name string) error {
	if name == heartyfs.SelfName || name == heartyfs.ParentName {
		return errors.Wrapf(heartyfs.ErrProtected, "entry %q", name)
	}

	i := dir.index(name)
	if i < 0 {
		return errors.Wrapf(heartyfs.ErrNotFound, "%q in %q", name, dir.Name)
	}

	last := len(dir.Entries) - 1
	dir.Entries[i] = dir.Entries[last]
	dir.Entries[last] = Entry{}
	dir.Entries = dir.Entries[:last]

	return nil
}

func (dir *Directory) raw() rawDirectory {
	raw := rawDirectory{
		Type: int32(TypeDirectory),
		Size: int32(len(dir.Entries)),
	}
	putName(&raw.Name, dir.Name)

	for i, e := range dir.Entries {
		raw.Entries[i].BlockID = int32(e.BlockID)
		putName(&raw.Entries[i].Name, e.Name)
	}

	return raw
}

func fromRawDirectory(raw *rawDirectory) (*Directory, error) {
	if Type(raw.Type) != TypeDirectory {
		return nil, errors.Wrapf(heartyfs.ErrNotADirectory, "type %s", Type(raw.Type))
	}
	if raw.Size < 0 || raw.Size > heartyfs.DirEntries {
		return nil, errors.Wrapf(heartyfs.ErrCorrupt, "directory size %d", raw.Size)
	}

	dir := &Directory{
		Name:    getName(raw.Name),
		Entries: make([]Entry, raw.Size),
	}
	for i := range dir.Entries {
		if raw.Entries[i].BlockID < 0 {
			return nil, errors.Wrapf(heartyfs.ErrCorrupt, "entry %d points at block %d", i, raw.Entries[i].BlockID)
		}
		dir.Entries[i] = Entry{
			BlockID: heartyfs.BlockID(raw.Entries[i].BlockID),
			Name:    getName(raw.Entries[i].Name),
		}
	}

	return dir, nil
}

// Encode returns the block image of a standalone directory.
func (dir *Directory) Encode() []byte {
	raw := dir.raw()
	return encode(&raw)
}

// DecodeDirectory interprets buf as a standalone directory block.
func DecodeDirectory(buf []byte) (*Directory, error) {
	var raw rawDirectory
	if err := decode(buf, &raw); err != nil {
		return nil, err
	}

	return fromRawDirectory(&raw)
}
