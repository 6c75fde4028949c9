// Package repo implements the repository pool: ordered read-only package
// catalogs and the lookup strategies that resolve a name, pattern or pkgver
// against them.
package repo

import (
	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/pattern"
	"github.com/ralt/xpkg/internal/version"
)

// Index is a read-only view of one repository's catalog. It is constructed
// before any resolve call and never mutated by the resolver.
type Index struct {
	// URI identifies the repository; it is the value stamped on the
	// Repository field of every descriptor resolved from this index.
	URI string `json:"-"`

	// Packages maps package name to descriptor.
	Packages map[string]*models.PackageDescriptor `json:"packages"`

	// VirtualPackages maps a virtual (alias) name to the concrete
	// descriptor that provides it.
	VirtualPackages map[string]*models.PackageDescriptor `json:"virtual_packages,omitempty"`
}

// pkgByName looks up a concrete package by name.
func (ri *Index) pkgByName(name string) *models.PackageDescriptor {
	return ri.Packages[name]
}

// pkgByPattern looks up a concrete package whose pkgver satisfies a
// "name<op>version" pattern. At most one candidate can match since the
// catalog holds one descriptor per name.
func (ri *Index) pkgByPattern(pat string) *models.PackageDescriptor {
	for _, p := range ri.Packages {
		if pattern.Match(p.Pkgver, pat) {
			return p
		}
	}
	return nil
}

// pkgByPkgver looks up a concrete package by exact pkgver identity.
func (ri *Index) pkgByPkgver(pkgver string) *models.PackageDescriptor {
	name := version.PkgName(pkgver)
	if name == "" {
		return nil
	}
	if p := ri.Packages[name]; p != nil && p.Pkgver == pkgver {
		return p
	}
	return nil
}

// virtualPkg looks up the virtual-package catalog by name or pattern.
func (ri *Index) virtualPkg(target string, byPattern bool) *models.PackageDescriptor {
	if !byPattern {
		return ri.VirtualPackages[target]
	}
	for _, p := range ri.VirtualPackages {
		if pattern.Match(p.Pkgver, target) {
			return p
		}
	}
	return nil
}
