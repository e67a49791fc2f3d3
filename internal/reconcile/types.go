package reconcile

// State is the pre-edit classification of a target path. It is decided once
// by Classify and never changes.
type State int

const (
	// StateNew means the path did not exist before the edit.
	StateNew State = iota
	// StateExisting means the path was already mirrored. Nothing else happens to it.
	StateExisting
	// StateTracked means the path existed without a mirror. Its contents were
	// snapshotted for comparison after the edit.
	StateTracked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateExisting:
		return "existing"
	case StateTracked:
		return "tracked"
	default:
		return "unknown"
	}
}

// Outcome is what reconciliation did with a record.
type Outcome int

const (
	// NotCreated: a new path was still absent after the edit.
	NotCreated Outcome = iota
	// Mirrored: the path was created or modified and a mirror was placed.
	Mirrored
	// AlreadyMirrored: the mirror slot was already taken, so nothing was created.
	AlreadyMirrored
	// Unmodified: the edit left the contents unchanged.
	Unmodified
)

func (o Outcome) String() string {
	switch o {
	case NotCreated:
		return "not created"
	case Mirrored:
		return "mirrored"
	case AlreadyMirrored:
		return "already mirrored"
	case Unmodified:
		return "unmodified"
	default:
		return "unknown"
	}
}

// Snapshot is the size and digest of a file's contents.
type Snapshot struct {
	Size   int64
	Digest uint64
}

// Equal reports whether both snapshots describe the same contents. Size is
// checked first, the digest is always checked when sizes agree.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Size == o.Size && s.Digest == o.Digest
}

// Record tracks one target path from classification through reconciliation.
type Record struct {
	// Input is the path as given by the user.
	Input string
	// Path is the canonical absolute path. It is empty for StateNew records
	// until reconciliation finds the file.
	Path  string
	State State
	// Snapshot is only set for StateTracked records.
	Snapshot *Snapshot
}
