package unpack

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ralt/xpkg/internal/models"
)

// obsoletePaths computes the paths owned by the previous package version but
// absent from the new manifest: the set difference over the union of files,
// conf_files and links. An absent old manifest yields an empty set. Paths
// come back sorted deepest-first so directories empty out before their
// parents.
func obsoletePaths(prev, cur *models.FileManifest) []string {
	if prev == nil {
		return nil
	}
	keep := cur.PathSet()

	var obsolete []string
	for path := range prev.PathSet() {
		if _, ok := keep[path]; !ok {
			obsolete = append(obsolete, path)
		}
	}
	sort.Slice(obsolete, func(i, j int) bool {
		di := strings.Count(obsolete[i], "/")
		dj := strings.Count(obsolete[j], "/")
		if di != dj {
			return di > dj
		}
		return obsolete[i] < obsolete[j]
	})
	return obsolete
}

// removeObsoletes deletes obsolete files from the install root after a
// successful update. Already-missing files are not an error.
func removeObsoletes(root, pkgname, version string, prev, cur *models.FileManifest) error {
	for _, relpath := range obsoletePaths(prev, cur) {
		fullpath := filepath.Join(root, relpath)
		if err := os.Remove(fullpath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return &models.PkgError{
				Kind:   models.ErrIO,
				Pkgver: pkgname + "-" + version,
				Err:    err,
			}
		}
		logrus.Debugf("%s-%s: removed obsolete file %s", pkgname, version, relpath)
	}
	return nil
}
