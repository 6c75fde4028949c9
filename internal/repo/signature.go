package repo

import (
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"

	"github.com/ralt/xpkg/internal/models"
)

// VerifyDetached checks an armored detached signature of the file at path
// against the armored keyring at keyringPath.
func VerifyDetached(path, sigPath, keyringPath string) error {
	keyFile, err := os.Open(keyringPath)
	if err != nil {
		return &models.PkgError{
			Kind: models.ErrInvalidConfig,
			Err:  fmt.Errorf("failed to open keyring: %w", err),
		}
	}
	defer keyFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		// Try as binary keyring
		if _, serr := keyFile.Seek(0, 0); serr == nil {
			keyring, err = openpgp.ReadKeyRing(keyFile)
		}
		if err != nil {
			return &models.PkgError{
				Kind: models.ErrInvalidConfig,
				Err:  fmt.Errorf("failed to read keyring: %w", err),
			}
		}
	}

	signed, err := os.Open(path)
	if err != nil {
		return &models.PkgError{Kind: models.ErrIO, Err: err}
	}
	defer signed.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return &models.PkgError{Kind: models.ErrIO, Err: err}
	}
	defer sig.Close()

	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, signed, sig, nil); err != nil {
		return &models.PkgError{
			Kind: models.ErrInvalidPackage,
			Err:  fmt.Errorf("signature verification failed for %s: %w", path, err),
		}
	}
	return nil
}
