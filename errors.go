package heartyfs

// Error is a kind of failure reported by the filesystem. Wrapped errors can be
// matched against the kinds below with errors.Is.
type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrNotInitialized Error = "filesystem not initialized"
	ErrNoFreeSpace    Error = "no free block left"
	ErrDoubleFree     Error = "block already free"
	ErrInUse          Error = "block already in use"
	ErrProtected      Error = "protected"
	ErrDirectoryFull  Error = "directory full"
	ErrDuplicateName  Error = "duplicate name"
	ErrNotFound       Error = "not found"
	ErrNotADirectory  Error = "not a directory"
	ErrNotAFile       Error = "not a file"
	ErrNoSuchParent   Error = "no such parent"
	ErrAlreadyExists  Error = "already exists"
	ErrFileTooLarge   Error = "file too large"
	ErrNotEmpty       Error = "directory not empty"
	ErrOutOfRange     Error = "block id out of range"
	ErrInvalidName    Error = "invalid name"
	ErrCorrupt        Error = "corrupt image"
	ErrBusy           Error = "device already open"
	ErrClosed         Error = "filesystem closed"
)
