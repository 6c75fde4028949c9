package unpack

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/utils"
)

// Action is the outcome of a configuration-file decision.
type Action int

const (
	// ActionExtract installs the packaged file at its path.
	ActionExtract Action = iota
	// ActionKeep leaves the on-disk file untouched and skips the entry.
	ActionKeep
)

// resolveConfFile decides what to do with a configuration-file entry whose
// target already exists on disk and whose content differs from the new
// package's recorded digest.
//
//   - Fresh install: the existing file is renamed to <path>.old and the
//     packaged file extracted in its place.
//   - Update, on-disk file identical to what the previous package version
//     shipped: the packaged file overwrites it.
//   - Update, on-disk file locally modified: the local copy is kept. This is
//     the conservative default when both the local file and the new content
//     differ from the previous version's digest.
//
// A failed digest computation is fatal for the whole unpack operation.
func resolveConfFile(cfg *Config, update bool, fullpath, relpath string,
	oldManifest *models.FileManifest, pkgname, version string) (Action, error) {

	if !update {
		backup := fullpath + ".old"
		if err := os.Rename(fullpath, backup); err != nil {
			return ActionKeep, &models.PkgError{
				Kind:   models.ErrIO,
				Pkgver: pkgname + "-" + version,
				Err:    fmt.Errorf("failed to back up config file %s: %w", relpath, err),
			}
		}
		cfg.event(Event{
			Kind:    EventConfigFilePreserved,
			Pkgname: pkgname,
			Version: version,
			Message: fmt.Sprintf("Renamed old configuration file `%s' to `%s.old'.", relpath, relpath),
		})
		return ActionExtract, nil
	}

	prevDigest, recorded := oldManifest.DigestFor(relpath, true)
	if !recorded {
		// Not shipped as a conf file by the previous version; treat the
		// on-disk copy as local data and keep it.
		logrus.Warnf("%s-%s: keeping unrecorded config file %s", pkgname, version, relpath)
		return ActionKeep, nil
	}

	match, err := utils.FileDigestMatch(fullpath, prevDigest)
	if err != nil {
		return ActionKeep, &models.PkgError{
			Kind:   models.ErrDigestCheck,
			Pkgver: pkgname + "-" + version,
			Err:    fmt.Errorf("failed to check config file %s: %w", relpath, err),
		}
	}
	if match {
		// Untouched since the previous version shipped it; safe to
		// overwrite with the new content.
		return ActionExtract, nil
	}

	logrus.Warnf("%s-%s: config file %s was modified locally, keeping current copy",
		pkgname, version, relpath)
	return ActionKeep, nil
}
