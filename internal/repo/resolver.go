package repo

import (
	"github.com/sirupsen/logrus"

	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/version"
)

// findAcc accumulates the state of one lookup across the pool iteration.
// The winning descriptor is cloned and annotated only once the scan is over,
// so no catalog entry is ever mutated and no unconfirmed match is annotated.
type findAcc struct {
	target    string
	byPattern bool

	// exact lookups only consider repositories whose URI matches this
	// filter, when set.
	repoFilter string

	pkgd    *models.PackageDescriptor
	pkgRepo string

	// best-match scan state.
	bestPkgver string
	bestRepo   string
}

// take records a confirmed match and its origin repository.
func (acc *findAcc) take(p *models.PackageDescriptor, ri *Index) {
	acc.pkgd = p
	acc.pkgRepo = ri.URI
}

// result clones the matched descriptor and stamps its Repository annotation.
// The clone is owned by the caller.
func (acc *findAcc) result() *models.PackageDescriptor {
	if acc.pkgd == nil {
		return nil
	}
	out := acc.pkgd.Clone()
	out.Repository = acc.pkgRepo
	return out
}

// FindExact scans the pool for an exact pkgver identity. When repoFilter is
// non-empty only the repository with that URI is considered, which lets a
// previously chosen version be re-resolved from its own repository. A miss
// returns (nil, nil).
func (p Pool) FindExact(pkgver, repoFilter string) (*models.PackageDescriptor, error) {
	acc := &findAcc{target: pkgver, repoFilter: repoFilter}
	err := p.ForEach(func(ri *Index, done *bool) error {
		if acc.repoFilter != "" && acc.repoFilter != ri.URI {
			return nil
		}
		if found := ri.pkgByPkgver(acc.target); found != nil {
			acc.take(found, ri)
			*done = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc.result(), nil
}

// Find scans the pool for the first repository holding a concrete package
// matching target (a name, or a "name<op>version" pattern when byPattern is
// set), falling back to that repository's virtual-package catalog before
// moving on. A miss across the whole pool returns (nil, nil).
func (p Pool) Find(target string, byPattern bool) (*models.PackageDescriptor, error) {
	acc := &findAcc{target: target, byPattern: byPattern}
	err := p.ForEach(func(ri *Index, done *bool) error {
		var found *models.PackageDescriptor
		if acc.byPattern {
			found = ri.pkgByPattern(acc.target)
		} else {
			found = ri.pkgByName(acc.target)
		}
		if found == nil {
			found = ri.virtualPkg(acc.target, acc.byPattern)
		}
		if found != nil {
			acc.take(found, ri)
			*done = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc.result(), nil
}

// FindVirtual is Find restricted to the virtual-package catalogs.
func (p Pool) FindVirtual(target string, byPattern bool) (*models.PackageDescriptor, error) {
	acc := &findAcc{target: target, byPattern: byPattern}
	err := p.ForEach(func(ri *Index, done *bool) error {
		if found := ri.virtualPkg(acc.target, acc.byPattern); found != nil {
			acc.take(found, ri)
			*done = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc.result(), nil
}

// FindBest visits every repository in the pool, keeping the highest version
// of any concrete package matching target; ties keep the first repository
// seen. The winner is then re-resolved through FindExact restricted to its
// origin repository, so the returned descriptor and its Repository
// annotation always come from the same index. A miss returns (nil, nil).
func (p Pool) FindBest(target string, byPattern bool) (*models.PackageDescriptor, error) {
	acc := &findAcc{target: target, byPattern: byPattern}
	err := p.ForEach(func(ri *Index, done *bool) error {
		var found *models.PackageDescriptor
		if acc.byPattern {
			found = ri.pkgByPattern(acc.target)
		} else {
			found = ri.pkgByName(acc.target)
		}
		if found == nil {
			logrus.Debugf("[rpool] package '%s' not found in repository '%s'", acc.target, ri.URI)
			return nil
		}
		if acc.bestPkgver == "" || version.Compare(found.Pkgver, acc.bestPkgver) > 0 {
			logrus.Debugf("[rpool] found best match '%s' (%s)", found.Pkgver, ri.URI)
			acc.bestPkgver = found.Pkgver
			acc.bestRepo = ri.URI
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if acc.bestPkgver == "" {
		return nil, nil
	}
	return p.FindExact(acc.bestPkgver, acc.bestRepo)
}
