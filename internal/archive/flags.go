package archive

import "os"

// Flags control how entries are materialized on disk.
type Flags struct {
	// Overwrite replaces an existing file at the destination.
	Overwrite bool

	// PreservePerms restores the recorded permission bits instead of a
	// reduced mask.
	PreservePerms bool

	// SetOwner restores the recorded owner and group. Only effective for
	// privileged execution.
	SetOwner bool
}

// DefaultFlags returns the extraction flags for the current effective
// privilege: privileged execution additionally restores ownership,
// unprivileged execution only content and a reduced permission mask.
func DefaultFlags() Flags {
	if os.Geteuid() == 0 {
		return Flags{Overwrite: true, PreservePerms: true, SetOwner: true}
	}
	return Flags{Overwrite: true}
}
