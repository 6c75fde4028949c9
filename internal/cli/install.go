package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/xpkg/internal/archive"
	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/pkgdb"
	"github.com/ralt/xpkg/internal/repo"
	"github.com/ralt/xpkg/internal/transaction"
	"github.com/ralt/xpkg/internal/unpack"
	"github.com/ralt/xpkg/internal/version"
)

type installConfig struct {
	RootDir      string
	Pkgver       string
	Update       bool
	Preserve     bool
	ConfFile     string
	Repositories []string
	Keyring      string
	Signed       bool
	Reinstall    bool
}

// NewInstallCmd creates the install command
func NewInstallCmd() *cobra.Command {
	var config installConfig

	cmd := &cobra.Command{
		Use:   "install <archive|name|pattern>",
		Short: "Unpack a binary package onto the install root",
		Long: `Unpacks a binary package onto the target filesystem root. With one
or more --repository directories the argument is resolved against the
pool and the matching archive is taken from the winning repository;
without them the argument is a local archive path and --pkgver names
its identity.

The package's INSTALL script pre action runs before extraction;
configuration files and files removed by an upgrade are reconciled as
part of the operation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(config.Repositories) > 0 {
				return installFromRepositories(args[0], &config)
			}

			pkgd, err := describeArchive(args[0], &config)
			if err != nil {
				return err
			}
			return runInstall(args[0], pkgd, &config)
		},
	}

	cmd.Flags().StringVarP(&config.RootDir, "rootdir", "R", "/", "Target filesystem root")
	cmd.Flags().StringVar(&config.Pkgver, "pkgver", "", "Package identity (name-version) of a local archive")
	cmd.Flags().BoolVar(&config.Update, "update", false, "Treat a local-archive operation as an update of the installed version")
	cmd.Flags().BoolVar(&config.Preserve, "preserve", false, "Keep files dropped by the new version on disk")
	cmd.Flags().StringVar(&config.ConfFile, "conffile", "", "Manager configuration file handed to package scripts")
	cmd.Flags().StringArrayVarP(&config.Repositories, "repository", "r", nil, "Repository directory to resolve from (repeatable, ordered)")
	cmd.Flags().StringVar(&config.Keyring, "keyring", "", "Armored public keyring for index signature verification")
	cmd.Flags().BoolVar(&config.Signed, "signed", false, "Require a verifiable index signature")
	cmd.Flags().BoolVar(&config.Reinstall, "reinstall", false, "Reinstall even when the version is already installed")

	return cmd
}

// installFromRepositories resolves the target against the pool, decides the
// operation against the install-state database and unpacks the archive from
// the winning repository directory.
func installFromRepositories(target string, config *installConfig) error {
	pool, err := repo.LoadPool(config.Repositories, repo.LoadOptions{
		KeyringPath:   config.Keyring,
		RequireSigned: config.Signed,
	})
	if err != nil {
		return err
	}
	db, err := pkgdb.Open(config.RootDir)
	if err != nil {
		return &models.PkgError{
			Kind: models.ErrIO,
			Err:  fmt.Errorf("failed to open package database: %w", err),
		}
	}

	pkgd, err := transaction.InstallPkg(pool, db, target, config.Reinstall)
	if err != nil {
		if errors.Is(err, transaction.ErrUpToDate) {
			logrus.Infof("%s: already up to date", target)
			return nil
		}
		return err
	}
	if pkgd.Transaction == models.TransactionConfigure {
		logrus.Infof("%s: already unpacked, configuration pending", pkgd.Pkgver)
		return nil
	}
	if config.Preserve {
		pkgd.Preserve = true
	}

	logrus.Debugf("%s: %s from repository '%s'", pkgd.Pkgver, pkgd.Transaction, pkgd.Repository)
	return unpackArchiveFile(filepath.Join(pkgd.Repository, pkgd.Filename), pkgd, db, config)
}

// describeArchive builds the package descriptor for a local archive from the
// --pkgver identity.
func describeArchive(path string, config *installConfig) (*models.PackageDescriptor, error) {
	if config.Pkgver == "" {
		return nil, &models.PkgError{
			Kind: models.ErrInvalidConfig,
			Err:  fmt.Errorf("--pkgver is required when installing a local archive"),
		}
	}
	name := version.PkgName(config.Pkgver)
	if name == "" {
		return nil, &models.PkgError{
			Kind: models.ErrInvalidConfig,
			Err:  fmt.Errorf("invalid pkgver '%s': expected name-version", config.Pkgver),
		}
	}

	trans := models.TransactionInstall
	if config.Update {
		trans = models.TransactionUpdate
	}
	return &models.PackageDescriptor{
		Name:        name,
		Version:     version.PkgVersion(config.Pkgver),
		Pkgver:      config.Pkgver,
		Filename:    filepath.Base(path),
		Transaction: trans,
		Preserve:    config.Preserve,
	}, nil
}

func runInstall(path string, pkgd *models.PackageDescriptor, config *installConfig) error {
	db, err := pkgdb.Open(config.RootDir)
	if err != nil {
		return &models.PkgError{
			Kind:   models.ErrIO,
			Pkgver: pkgd.Pkgver,
			Err:    fmt.Errorf("failed to open package database: %w", err),
		}
	}
	return unpackArchiveFile(path, pkgd, db, config)
}

func unpackArchiveFile(path string, pkgd *models.PackageDescriptor, db *pkgdb.DB, config *installConfig) error {
	ar, err := archive.Open(path)
	if err != nil {
		return &models.PkgError{
			Kind:   models.ErrIO,
			Pkgver: pkgd.Pkgver,
			Err:    fmt.Errorf("failed to open archive %s: %w", path, err),
		}
	}
	defer ar.Close()

	cfg := &unpack.Config{
		RootDir:  config.RootDir,
		ConfFile: config.ConfFile,
		OnEvent: func(ev unpack.Event) {
			if ev.Kind == unpack.EventConfigFilePreserved {
				logrus.Info(ev.Message)
			}
		},
	}
	if err := unpack.Unpack(cfg, pkgd, ar, db); err != nil {
		return err
	}

	logrus.Infof("%s: unpacked into %s", pkgd.Pkgver, config.RootDir)
	return nil
}
