// Package metadata manages the per-package metadata directory under the
// install root: control scripts, the properties document and the compressed
// file manifest.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/utils"
)

// MetaDir is the metadata tree, relative to the install root.
const MetaDir = "var/db/xpkg"

// ManifestFile is the compressed file-manifest document name.
const ManifestFile = "files.json.gz"

// PkgDir returns the metadata directory for one package.
func PkgDir(root, pkgname string) string {
	return filepath.Join(root, MetaDir, "metadata", pkgname)
}

// MetafilePath returns the path of one metadata file for a package.
func MetafilePath(root, pkgname, name string) string {
	return filepath.Join(PkgDir(root, pkgname), name)
}

// WriteMetafile stores one metadata file, creating the package directory as
// needed.
func WriteMetafile(root, pkgname, name string, data []byte, perm os.FileMode) error {
	return utils.WriteFile(MetafilePath(root, pkgname, name), data, perm)
}

// RemoveMetafile deletes one metadata file. A missing file is not an error.
func RemoveMetafile(root, pkgname, name string) error {
	err := os.Remove(MetafilePath(root, pkgname, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SaveManifest externalizes the file manifest into the package metadata
// directory as gzip-compressed JSON, atomically by replacement.
func SaveManifest(root, pkgname string, m *models.FileManifest) error {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return utils.ReplaceFile(MetafilePath(root, pkgname, ManifestFile), buf.Bytes(), 0644)
}

// LoadManifest internalizes a previously saved file manifest. It returns
// (nil, nil) when no manifest has ever been saved for the package.
func LoadManifest(root, pkgname string) (*models.FileManifest, error) {
	f, err := os.Open(MetafilePath(root, pkgname, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("corrupt manifest for %s: %w", pkgname, err)
	}
	defer gr.Close()

	m := &models.FileManifest{}
	if err := json.NewDecoder(gr).Decode(m); err != nil {
		return nil, fmt.Errorf("corrupt manifest for %s: %w", pkgname, err)
	}
	return m, nil
}

// LoadProperties internalizes the stored properties document for a package.
func LoadProperties(root, pkgname string) (*models.Properties, error) {
	data, err := os.ReadFile(MetafilePath(root, pkgname, "props.json"))
	if err != nil {
		return nil, err
	}
	p := &models.Properties{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("corrupt properties for %s: %w", pkgname, err)
	}
	return p, nil
}
