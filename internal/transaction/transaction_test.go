package transaction

import (
	"errors"
	"testing"

	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/pkgdb"
	"github.com/ralt/xpkg/internal/repo"
)

func mkIndex(uri string, pkgvers ...string) *repo.Index {
	ri := &repo.Index{
		URI:             uri,
		Packages:        make(map[string]*models.PackageDescriptor),
		VirtualPackages: make(map[string]*models.PackageDescriptor),
	}
	for _, pv := range pkgvers {
		p := descriptor(pv)
		ri.Packages[p.Name] = p
	}
	return ri
}

func descriptor(pkgver string) *models.PackageDescriptor {
	i := len(pkgver) - 1
	for i > 0 && pkgver[i] != '-' {
		i--
	}
	return &models.PackageDescriptor{
		Name:    pkgver[:i],
		Version: pkgver[i+1:],
		Pkgver:  pkgver,
	}
}

func openDB(t *testing.T) *pkgdb.DB {
	t.Helper()
	db, err := pkgdb.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open pkgdb: %v", err)
	}
	return db
}

func installed(t *testing.T, db *pkgdb.DB, pkgver string) {
	t.Helper()
	p := descriptor(pkgver)
	if err := db.SetState(p.Name, p.Version, p.Pkgver, models.StateInstalled); err != nil {
		t.Fatalf("seed installed %s: %v", pkgver, err)
	}
}

func TestInstallPkgFresh(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-1.0_1")}
	db := openDB(t)

	pkgd, err := InstallPkg(pool, db, "foo", false)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Transaction != models.TransactionInstall {
		t.Errorf("Transaction = %q, want install", pkgd.Transaction)
	}
	if pkgd.Pkgver != "foo-1.0_1" || pkgd.Repository != "repo-a" {
		t.Errorf("resolved %s from %q", pkgd.Pkgver, pkgd.Repository)
	}
}

func TestInstallPkgByPattern(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-2.0_1")}
	db := openDB(t)

	pkgd, err := InstallPkg(pool, db, "foo>=1.0", false)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Pkgver != "foo-2.0_1" {
		t.Errorf("Pkgver = %q, want foo-2.0_1", pkgd.Pkgver)
	}
	if pkgd.Transaction != models.TransactionInstall {
		t.Errorf("Transaction = %q, want install", pkgd.Transaction)
	}
}

func TestInstallPkgByPkgver(t *testing.T) {
	pool := repo.Pool{
		mkIndex("repo-a", "foo-1.0_1"),
		mkIndex("repo-b", "foo-2.0_1"),
	}
	db := openDB(t)

	// An exact identity pins the version even when a newer one exists.
	pkgd, err := InstallPkg(pool, db, "foo-1.0_1", false)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Pkgver != "foo-1.0_1" || pkgd.Repository != "repo-a" {
		t.Errorf("resolved %s from %q, want foo-1.0_1 from repo-a", pkgd.Pkgver, pkgd.Repository)
	}

	_, err = InstallPkg(pool, db, "foo-3.0_1", false)
	if !models.IsKind(err, models.ErrNotFound) {
		t.Fatalf("InstallPkg error = %v, want ErrNotFound for an absent pkgver", err)
	}
}

func TestInstallPkgVirtualFallback(t *testing.T) {
	ri := mkIndex("repo-a", "dcron-4.5_1")
	ri.VirtualPackages["cron-daemon"] = ri.Packages["dcron"]
	pool := repo.Pool{ri}
	db := openDB(t)

	pkgd, err := InstallPkg(pool, db, "cron-daemon", false)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Pkgver != "dcron-4.5_1" {
		t.Errorf("Pkgver = %q, want the provider dcron-4.5_1", pkgd.Pkgver)
	}
}

func TestInstallPkgNotFound(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-1.0_1")}
	db := openDB(t)

	_, err := InstallPkg(pool, db, "bar", false)
	if !models.IsKind(err, models.ErrNotFound) {
		t.Fatalf("InstallPkg error = %v, want ErrNotFound", err)
	}
}

func TestInstallPkgBestAcrossRepos(t *testing.T) {
	pool := repo.Pool{
		mkIndex("repo-a", "foo-1.0_1"),
		mkIndex("repo-b", "foo-2.0_1"),
	}
	db := openDB(t)

	pkgd, err := InstallPkg(pool, db, "foo", false)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Pkgver != "foo-2.0_1" || pkgd.Repository != "repo-b" {
		t.Errorf("resolved %s from %q, want foo-2.0_1 from repo-b", pkgd.Pkgver, pkgd.Repository)
	}
}

func TestInstalledBecomesUpdate(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-2.0_1")}
	db := openDB(t)
	installed(t, db, "foo-1.0_1")

	pkgd, err := InstallPkg(pool, db, "foo", false)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Transaction != models.TransactionUpdate {
		t.Errorf("Transaction = %q, want update", pkgd.Transaction)
	}
}

func TestUpdatePkgUpToDate(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-1.0_1")}
	db := openDB(t)
	installed(t, db, "foo-1.0_1")

	_, err := UpdatePkg(pool, db, "foo")
	if !errors.Is(err, ErrUpToDate) {
		t.Fatalf("UpdatePkg error = %v, want ErrUpToDate", err)
	}
}

func TestUpdatePkgInstalledNewer(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-1.0_1")}
	db := openDB(t)
	installed(t, db, "foo-2.0_1")

	_, err := UpdatePkg(pool, db, "foo")
	if !errors.Is(err, ErrUpToDate) {
		t.Fatalf("UpdatePkg error = %v, want ErrUpToDate", err)
	}
}

func TestReinstallSameVersion(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-1.0_1")}
	db := openDB(t)
	installed(t, db, "foo-1.0_1")

	pkgd, err := InstallPkg(pool, db, "foo", true)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Transaction != models.TransactionInstall {
		t.Errorf("Transaction = %q, want install for a reinstall", pkgd.Transaction)
	}
}

func TestReinstallWithNewerRepoBecomesUpdate(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-2.0_1")}
	db := openDB(t)
	installed(t, db, "foo-1.0_1")

	pkgd, err := InstallPkg(pool, db, "foo", true)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Transaction != models.TransactionUpdate {
		t.Errorf("Transaction = %q, want update", pkgd.Transaction)
	}
}

func TestUnpackedNeedsConfigureOnly(t *testing.T) {
	db := openDB(t)
	// An earlier install got as far as unpacking but never configured.
	if err := db.SetState("foo", "1.0_1", "foo-1.0_1", models.StateUnpacked); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	// Resolving through a virtual alias exercises the fresh-install path
	// even though the provider's state record exists.
	ri := mkIndex("repo-a", "foo-1.0_1")
	ri.VirtualPackages["foo-virtual"] = ri.Packages["foo"]
	pool := repo.Pool{ri}

	pkgd, err := InstallPkg(pool, db, "foo-virtual", false)
	if err != nil {
		t.Fatalf("InstallPkg failed: %v", err)
	}
	if pkgd.Transaction != models.TransactionConfigure {
		t.Errorf("Transaction = %q, want configure", pkgd.Transaction)
	}
}

func TestUpdateAllSkipsHold(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-2.0_1", "bar-2.0_1", "baz-1.0_1")}
	db := openDB(t)
	installed(t, db, "foo-1.0_1")
	installed(t, db, "bar-1.0_1")
	installed(t, db, "baz-1.0_1")
	db.Get("bar").Hold = true

	updates, err := UpdateAll(pool, db)
	if err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}
	// bar is on hold, baz is up to date; only foo updates.
	if len(updates) != 1 || updates[0].Pkgver != "foo-2.0_1" {
		t.Errorf("updates = %v, want just foo-2.0_1", pkgvers(updates))
	}
	if updates[0].Transaction != models.TransactionUpdate {
		t.Errorf("Transaction = %q, want update", updates[0].Transaction)
	}
}

func TestUpdateAllIgnoresVanishedPackage(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-2.0_1")}
	db := openDB(t)
	installed(t, db, "foo-1.0_1")
	installed(t, db, "gone-1.0_1")

	updates, err := UpdateAll(pool, db)
	if err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}
	if len(updates) != 1 || updates[0].Pkgver != "foo-2.0_1" {
		t.Errorf("updates = %v, want just foo-2.0_1", pkgvers(updates))
	}
}

func TestAutomaticInstallCarriedOver(t *testing.T) {
	pool := repo.Pool{mkIndex("repo-a", "foo-2.0_1")}
	db := openDB(t)
	installed(t, db, "foo-1.0_1")
	db.Get("foo").AutomaticInstall = true

	pkgd, err := UpdatePkg(pool, db, "foo")
	if err != nil {
		t.Fatalf("UpdatePkg failed: %v", err)
	}
	if !pkgd.AutomaticInstall {
		t.Error("AutomaticInstall flag was not carried over from the installed record")
	}
}

func pkgvers(pkgds []*models.PackageDescriptor) []string {
	out := make([]string, len(pkgds))
	for i, p := range pkgds {
		out[i] = p.Pkgver
	}
	return out
}
