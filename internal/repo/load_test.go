package repo

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/ralt/xpkg/internal/models"
)

func writeIndexJSON(t *testing.T, dir string) {
	t.Helper()
	ri := &Index{
		Packages: map[string]*models.PackageDescriptor{
			"foo": {Name: "foo", Version: "1.0", Pkgver: "foo-1.0"},
		},
	}
	data, err := json.Marshal(ri)
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.json"), data, 0644); err != nil {
		t.Fatalf("write index: %v", err)
	}
}

func TestLoadIndexPlainJSON(t *testing.T) {
	dir := t.TempDir()
	writeIndexJSON(t, dir)

	ri, err := LoadIndex(dir, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadIndex failed: %v", err)
	}
	if ri.URI != dir {
		t.Errorf("URI = %q, want %q", ri.URI, dir)
	}
	if ri.Packages["foo"] == nil || ri.Packages["foo"].Pkgver != "foo-1.0" {
		t.Errorf("catalog missing foo-1.0: %+v", ri.Packages)
	}
}

func TestLoadIndexTarGz(t *testing.T) {
	dir := t.TempDir()

	ri := &Index{
		Packages: map[string]*models.PackageDescriptor{
			"bar": {Name: "bar", Version: "2.0_1", Pkgver: "bar-2.0_1"},
		},
	}
	data, err := json.Marshal(ri)
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	if err := tw.WriteHeader(&tar.Header{Name: "index.json", Mode: 0644, Size: int64(len(data))}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := tw.Write(data); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	tw.Close()
	gw.Close()

	if err := os.WriteFile(filepath.Join(dir, "index.tar.gz"), buf.Bytes(), 0644); err != nil {
		t.Fatalf("write repodata: %v", err)
	}

	loaded, err := LoadIndex(dir, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadIndex failed: %v", err)
	}
	if loaded.Packages["bar"] == nil || loaded.Packages["bar"].Pkgver != "bar-2.0_1" {
		t.Errorf("catalog missing bar-2.0_1: %+v", loaded.Packages)
	}
}

func TestLoadIndexMissing(t *testing.T) {
	_, err := LoadIndex(t.TempDir(), LoadOptions{})
	if err == nil {
		t.Fatal("LoadIndex succeeded on an empty directory")
	}
	if !models.IsKind(err, models.ErrIO) {
		t.Errorf("error kind = %v, want ErrIO", err)
	}
}

func TestLoadIndexRequireSignedWithoutSignature(t *testing.T) {
	dir := t.TempDir()
	writeIndexJSON(t, dir)

	_, err := LoadIndex(dir, LoadOptions{RequireSigned: true})
	if err == nil {
		t.Fatal("LoadIndex accepted an unsigned index with RequireSigned set")
	}
}

func TestLoadPoolPreservesOrder(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeIndexJSON(t, dirA)
	writeIndexJSON(t, dirB)

	pool, err := LoadPool([]string{dirA, dirB}, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadPool failed: %v", err)
	}
	if len(pool) != 2 || pool[0].URI != dirA || pool[1].URI != dirB {
		t.Errorf("pool order = %v, want [%s %s]", pool, dirA, dirB)
	}
}
