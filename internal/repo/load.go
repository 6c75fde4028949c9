package repo

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/ralt/xpkg/internal/models"
)

// LoadOptions controls repository index loading.
type LoadOptions struct {
	// KeyringPath points at an armored public key (or keyring) used to
	// verify detached index signatures.
	KeyringPath string

	// RequireSigned makes a missing or unverifiable signature fatal.
	// Without it a signature file is verified when present and the
	// keyring is configured, and skipped otherwise.
	RequireSigned bool
}

// Index file names probed inside a repository directory, most specific
// first.
var indexNames = []string{
	"index.tar.zst",
	"index.tar.xz",
	"index.tar.gz",
	"index.json",
}

// LoadPool loads repository directories in the given order into a pool.
func LoadPool(dirs []string, opts LoadOptions) (Pool, error) {
	pool := make(Pool, 0, len(dirs))
	for _, dir := range dirs {
		ri, err := LoadIndex(dir, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load repository %s: %w", dir, err)
		}
		pool = append(pool, ri)
	}
	return pool, nil
}

// LoadIndex reads one repository directory. The catalog lives in index.json,
// optionally wrapped in a compressed tar ("repodata"); compression is
// detected from the file name. The repository URI is the directory path.
func LoadIndex(dir string, opts LoadOptions) (*Index, error) {
	path, err := locateIndex(dir)
	if err != nil {
		return nil, err
	}

	if err := verifyIndex(path, opts); err != nil {
		return nil, err
	}

	data, err := readIndexFile(path)
	if err != nil {
		return nil, &models.PkgError{Kind: models.ErrIO, Err: err}
	}

	ri := &Index{URI: dir}
	if err := json.Unmarshal(data, ri); err != nil {
		return nil, &models.PkgError{
			Kind: models.ErrInvalidPackage,
			Err:  fmt.Errorf("malformed index %s: %w", path, err),
		}
	}
	logrus.Debugf("[rpool] loaded repository '%s' (%d packages)", dir, len(ri.Packages))
	return ri, nil
}

func locateIndex(dir string) (string, error) {
	for _, name := range indexNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &models.PkgError{
		Kind: models.ErrIO,
		Err:  fmt.Errorf("no repository index found in %s", dir),
	}
}

func verifyIndex(path string, opts LoadOptions) error {
	sigPath := path + ".sig"
	_, sigErr := os.Stat(sigPath)
	haveSig := sigErr == nil

	if opts.KeyringPath == "" || !haveSig {
		if opts.RequireSigned {
			return &models.PkgError{
				Kind: models.ErrInvalidConfig,
				Err:  fmt.Errorf("signed index required but signature or keyring missing for %s", path),
			}
		}
		return nil
	}
	if err := VerifyDetached(path, sigPath, opts.KeyringPath); err != nil {
		return err
	}
	logrus.Debugf("[rpool] verified signature for %s", path)
	return nil
}

// readIndexFile returns the raw index.json bytes, unwrapping tar and
// compression layers as the file name dictates.
func readIndexFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	if name == "index.json" {
		return io.ReadAll(f)
	}

	var r io.Reader
	switch {
	case strings.HasSuffix(name, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(name, ".tar.xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, err
		}
		r = xr
	case strings.HasSuffix(name, ".tar.gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		r = gr
	default:
		return nil, fmt.Errorf("unsupported index format: %s", name)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if filepath.Base(hdr.Name) == "index.json" {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("index.json not found in %s", name)
}
