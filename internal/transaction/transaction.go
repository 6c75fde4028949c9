// Package transaction decides what operation a requested package needs:
// a fresh install, an update of an installed version, a reinstall, or just
// configuration of an already unpacked package. It resolves the request
// against the repository pool, compares it with the install-state database
// and returns a descriptor tagged with the chosen operation.
package transaction

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/pattern"
	"github.com/ralt/xpkg/internal/pkgdb"
	"github.com/ralt/xpkg/internal/repo"
	"github.com/ralt/xpkg/internal/version"
)

// ErrUpToDate reports that the installed version is already greater than or
// equal to the best candidate in the repository pool.
var ErrUpToDate = errors.New("package is already up to date")

type action int

const (
	actionInstall action = iota
	actionUpdate
	actionReinstall
)

// InstallPkg resolves target (a package name, a pkgver, or a
// "name<op>version" pattern) for installation. An already installed package
// becomes an update, or a reinstall of the repository version when reinstall
// is set. The returned descriptor carries the decided operation in its
// Transaction field.
func InstallPkg(pool repo.Pool, db *pkgdb.DB, target string, reinstall bool) (*models.PackageDescriptor, error) {
	return findPkg(pool, db, target, reinstall)
}

// UpdatePkg resolves an update for a single installed package.
func UpdatePkg(pool repo.Pool, db *pkgdb.DB, target string) (*models.PackageDescriptor, error) {
	return findPkg(pool, db, target, false)
}

// UpdateAll walks every installed package and collects the updates available
// in the pool, skipping packages on hold. Packages that are up to date or no
// longer present in any repository are silently left alone.
func UpdateAll(pool repo.Pool, db *pkgdb.DB) ([]*models.PackageDescriptor, error) {
	var updates []*models.PackageDescriptor
	for _, e := range db.Entries() {
		if e.Hold {
			logrus.Debugf("[rpool] package '%s' on hold, ignoring updates", e.Pkgver)
			continue
		}
		pkgd, err := findPkg(pool, db, e.Name, false)
		if err != nil {
			if errors.Is(err, ErrUpToDate) || models.IsKind(err, models.ErrNotFound) {
				continue
			}
			return nil, err
		}
		updates = append(updates, pkgd)
	}
	return updates, nil
}

func findPkg(pool repo.Pool, db *pkgdb.DB, target string, reinstall bool) (*models.PackageDescriptor, error) {
	byPattern := pattern.IsPattern(target)
	installed := db.Get(installedName(target, byPattern))

	var (
		act   action
		pkgd  *models.PackageDescriptor
		err   error
	)
	if installed == nil {
		// Not installed; a concrete match wins over a virtual one.
		act = actionInstall
		pkgd, err = lookupPkg(pool, target, byPattern)
		if err != nil {
			return nil, err
		}
		if pkgd == nil {
			pkgd, err = pool.FindVirtual(target, byPattern)
			if err != nil {
				return nil, err
			}
		}
	} else {
		act = actionUpdate
		if reinstall {
			act = actionReinstall
		}
		pkgd, err = lookupPkg(pool, target, byPattern)
		if err != nil {
			return nil, err
		}
	}
	if pkgd == nil {
		return nil, &models.PkgError{
			Kind: models.ErrNotFound,
			Err:  fmt.Errorf("package '%s' not found in repository pool", target),
		}
	}

	switch act {
	case actionUpdate:
		// Only a strictly newer repository version is worth an update.
		if version.Compare(pkgd.Pkgver, installed.Pkgver) <= 0 {
			logrus.Debugf("[rpool] skipping '%s' (installed: %s) from repository '%s'",
				pkgd.Pkgver, installed.Pkgver, pkgd.Repository)
			return nil, ErrUpToDate
		}
	case actionReinstall:
		// A newer repository version turns the reinstall into an update.
		if version.Compare(pkgd.Pkgver, installed.Pkgver) > 0 {
			act = actionUpdate
		}
	}

	if installed != nil {
		pkgd.AutomaticInstall = installed.AutomaticInstall
	}

	state := db.State(pkgd.Name)
	switch {
	case act == actionInstall && state == models.StateUnpacked:
		// Interrupted earlier install; only configuration is left.
		pkgd.Transaction = models.TransactionConfigure
	case state == models.StateNotInstalled:
		pkgd.Transaction = models.TransactionInstall
	case act == actionUpdate:
		pkgd.Transaction = models.TransactionUpdate
	default:
		pkgd.Transaction = models.TransactionInstall
	}
	return pkgd, nil
}

// lookupPkg resolves a concrete package from the pool: an exact identity
// when the target carries a version component, the best available version
// otherwise.
func lookupPkg(pool repo.Pool, target string, byPattern bool) (*models.PackageDescriptor, error) {
	if !byPattern && version.PkgName(target) != "" {
		return pool.FindExact(target, "")
	}
	return pool.FindBest(target, byPattern)
}

// installedName maps a lookup target to the package name keyed in the
// install-state database.
func installedName(target string, byPattern bool) string {
	if byPattern {
		return pattern.Name(target)
	}
	if name := version.PkgName(target); name != "" {
		return name
	}
	return target
}
