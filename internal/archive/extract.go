package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Extract materializes the current entry at dest, honoring flags. The
// entry's remaining bytes are consumed.
func (r *Reader) Extract(e *Entry, dest string, flags Flags) error {
	switch e.Type {
	case TypeDir:
		return os.MkdirAll(dest, dirPerm(e.Mode, flags))
	case TypeSymlink:
		return extractSymlink(e, dest, flags)
	case TypeFile:
		return r.extractFile(e, dest, flags)
	default:
		return fmt.Errorf("unsupported entry type for %s", e.Path)
	}
}

func (r *Reader) extractFile(e *Entry, dest string, flags Flags) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	if err := clearDestination(dest, flags); err != nil {
		return err
	}

	perm := filePerm(e.Mode, flags)
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, e); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Re-apply the permission bits; the initial create is subject to the
	// process umask.
	if err := os.Chmod(dest, perm); err != nil {
		return err
	}
	if flags.SetOwner {
		if err := os.Chown(dest, e.Uid, e.Gid); err != nil {
			return err
		}
	}
	return nil
}

func extractSymlink(e *Entry, dest string, flags Flags) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	if err := clearDestination(dest, flags); err != nil {
		return err
	}
	if err := os.Symlink(e.Linkname, dest); err != nil {
		return err
	}
	if flags.SetOwner {
		if err := os.Lchown(dest, e.Uid, e.Gid); err != nil {
			return err
		}
	}
	return nil
}

func clearDestination(dest string, flags Flags) error {
	if _, err := os.Lstat(dest); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !flags.Overwrite {
		return fmt.Errorf("destination exists: %s", dest)
	}
	return os.Remove(dest)
}

func filePerm(mode os.FileMode, flags Flags) os.FileMode {
	if flags.PreservePerms {
		return mode.Perm()
	}
	return mode.Perm() & 0755
}

func dirPerm(mode os.FileMode, flags Flags) os.FileMode {
	if flags.PreservePerms {
		return mode.Perm()
	}
	return 0755
}
