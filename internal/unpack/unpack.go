// Package unpack implements the binary package unpack transaction.
//
// Unpacking a binary package involves the following steps:
//   - The pre-install action of the INSTALL script is executed, if the
//     package ships one.
//   - Metadata entries are internalized: the file manifest and the
//     properties document must both be seen before any package data.
//   - All remaining entries are extracted, with digest-based skipping of
//     unchanged files and preserve/merge handling of configuration files.
//   - On updates, files owned by the previous version but absent from the
//     new manifest are removed.
//   - The new file manifest is persisted and the install state advances to
//     unpacked.
//
// The persisted install state is written to half-unpacked before any file
// extraction and to unpacked only after every step succeeded; nothing is
// rolled back on failure.
package unpack

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/xpkg/internal/archive"
	"github.com/ralt/xpkg/internal/metadata"
	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/pkgdb"
	"github.com/ralt/xpkg/internal/utils"
)

// Leading entries tolerated before both metadata manifests must have been
// seen; archives exceeding it are not valid binary packages.
const maxLeadingDataEntries = 4

// Unpack streams a resolved package's archive onto the install root,
// bracketing the extraction with the half-unpacked and unpacked states.
func Unpack(cfg *Config, pkgd *models.PackageDescriptor, ar *archive.Reader, db *pkgdb.DB) error {
	cfg.event(Event{Kind: EventUnpackStart, Pkgname: pkgd.Name, Version: pkgd.Version})
	logrus.Infof("Unpacking %s...", pkgd.Pkgver)

	if err := db.SetState(pkgd.Name, pkgd.Version, pkgd.Pkgver, models.StateHalfUnpacked); err != nil {
		return failf(cfg, pkgd, err, "failed to set state to half-unpacked: %v", err)
	}

	if err := unpackArchive(cfg, pkgd, ar, db); err != nil {
		return err
	}

	if err := db.SetState(pkgd.Name, pkgd.Version, pkgd.Pkgver, models.StateUnpacked); err != nil {
		return failf(cfg, pkgd, err, "failed to set state to unpacked: %v", err)
	}
	cfg.event(Event{Kind: EventUnpackDone, Pkgname: pkgd.Name, Version: pkgd.Version})
	logrus.Infof("Unpacked %s", pkgd.Pkgver)
	return nil
}

// failf emits the failure event and wraps err (or a new error built from the
// format) into a PkgError carrying the pkgver context.
func failf(cfg *Config, pkgd *models.PackageDescriptor, err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	cfg.event(Event{
		Kind:    EventUnpackFail,
		Pkgname: pkgd.Name,
		Version: pkgd.Version,
		Message: fmt.Sprintf("%s: [unpack] %s", pkgd.Pkgver, msg),
		Err:     err,
	})
	if pe, ok := err.(*models.PkgError); ok {
		return pe
	}
	if err == nil {
		err = fmt.Errorf("%s", msg)
	}
	return &models.PkgError{Kind: models.ErrIO, Pkgver: pkgd.Pkgver, Err: err}
}

func unpackArchive(cfg *Config, pkgd *models.PackageDescriptor, ar *archive.Reader, db *pkgdb.DB) error {
	update := pkgd.Transaction == models.TransactionUpdate
	flags := cfg.flags()

	if err := ensureRootDir(cfg.RootDir); err != nil {
		return failf(cfg, pkgd, err, "failed to create rootdir `%s': %v", cfg.RootDir, err)
	}

	// A package upgrade might not ship control scripts anymore; drop the
	// previous version's before extracting.
	if update {
		for _, name := range []string{archive.InstallScriptName, archive.RemoveScriptName} {
			if err := metadata.RemoveMetafile(cfg.RootDir, pkgd.Name, name); err != nil {
				return failf(cfg, pkgd, err, "failed to remove metafile `%s': %v", name, err)
			}
		}
	}

	var (
		filesd      *models.FileManifest
		propsd      *models.Properties
		oldManifest *models.FileManifest
		nmetadata   int
		extracted   int
		total       int
		skipped     int
	)

	// The previous version's manifest drives conf-file decisions and the
	// obsolete-file diff.
	if update {
		var err error
		oldManifest, err = metadata.LoadManifest(cfg.RootDir, pkgd.Name)
		if err != nil {
			return failf(cfg, pkgd, err, "failed to load previous manifest: %v", err)
		}
	}

	for {
		entry, err := ar.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return failf(cfg, pkgd, err, "error while reading archive: %v", err)
		}

		prog := &Progress{Entry: entry.Path, EntrySize: entry.Size}

		switch archive.Classify(entry) {
		case archive.KindDirectory:
			// Directories are not tracked; their creation is implied
			// by the files they contain.
			ar.Skip()
			continue

		case archive.KindInstallScript:
			data, err := io.ReadAll(entry)
			if err != nil {
				return failf(cfg, pkgd, err, "failed to extract metafile `%s': %v", entry.Path, err)
			}
			if err := metadata.WriteMetafile(cfg.RootDir, pkgd.Name, archive.InstallScriptName, data, 0750); err != nil {
				return failf(cfg, pkgd, err, "failed to extract metafile `%s': %v", entry.Path, err)
			}
			// The pre-install action runs as soon as the script lands;
			// a failing script aborts the whole operation.
			scriptPath := metadata.MetafilePath(cfg.RootDir, pkgd.Name, archive.InstallScriptName)
			if err := cfg.runner()(scriptPath, "pre", pkgd.Name, pkgd.Version, update, cfg.ConfFile); err != nil {
				return failf(cfg, pkgd, &models.PkgError{
					Kind:   models.ErrScriptFailure,
					Pkgver: pkgd.Pkgver,
					Err:    err,
				}, "INSTALL script failed to execute pre ACTION: %v", err)
			}
			nmetadata++
			extracted++
			prog.IsMetadata = true

		case archive.KindRemoveScript:
			data, err := io.ReadAll(entry)
			if err != nil {
				return failf(cfg, pkgd, err, "failed to extract metafile `%s': %v", entry.Path, err)
			}
			if err := metadata.WriteMetafile(cfg.RootDir, pkgd.Name, archive.RemoveScriptName, data, 0750); err != nil {
				return failf(cfg, pkgd, err, "failed to extract metafile `%s': %v", entry.Path, err)
			}
			nmetadata++
			extracted++
			prog.IsMetadata = true

		case archive.KindFileManifest:
			// Internalized now for conf-file and obsolete decisions;
			// externalized to the metadata directory at the end.
			filesd = &models.FileManifest{}
			if err := decodeEntry(entry, filesd); err != nil {
				return failf(cfg, pkgd, invalidPkg(pkgd, entry.Path, err), "invalid file manifest: %v", err)
			}
			nmetadata++
			extracted++
			prog.IsMetadata = true

		case archive.KindPropsManifest:
			data, err := io.ReadAll(entry)
			if err != nil {
				return failf(cfg, pkgd, err, "failed to extract metafile `%s': %v", entry.Path, err)
			}
			propsd = &models.Properties{}
			if err := json.Unmarshal(data, propsd); err != nil {
				return failf(cfg, pkgd, invalidPkg(pkgd, entry.Path, err), "invalid properties document: %v", err)
			}
			if err := metadata.WriteMetafile(cfg.RootDir, pkgd.Name, archive.PropsManifestName, data, 0644); err != nil {
				return failf(cfg, pkgd, err, "failed to extract metafile `%s': %v", entry.Path, err)
			}
			nmetadata++
			extracted++
			prog.IsMetadata = true

		case archive.KindData:
			if propsd == nil || filesd == nil {
				// Both manifests must precede package data; tolerate a
				// few leading entries as format quirks, then give up.
				ar.Skip()
				if skipped >= maxLeadingDataEntries-1 {
					return failf(cfg, pkgd,
						invalidPkg(pkgd, entry.Path, fmt.Errorf("missing %s or %s",
							archive.FileManifestName, archive.PropsManifestName)),
						"invalid binary package `%s'", pkgd.Filename)
				}
				skipped++
				continue
			}
			// Control scripts may trail the payload, so the metadata
			// share of the total is recomputed per entry.
			total = nmetadata + filesd.EntryCount()

			action, err := handleDataEntry(cfg, pkgd, ar, entry, prog, update, flags, filesd, propsd, oldManifest)
			if err != nil {
				return err
			}
			if action == ActionKeep {
				ar.Skip()
				prog.ExtractCount = extracted
				prog.TotalCount = total
				cfg.progress(prog)
				continue
			}
			extracted++
		}

		prog.ExtractCount = extracted
		prog.TotalCount = total
		cfg.progress(prog)
	}

	if filesd == nil || propsd == nil {
		return failf(cfg, pkgd,
			invalidPkg(pkgd, "", fmt.Errorf("missing %s or %s",
				archive.FileManifestName, archive.PropsManifestName)),
			"invalid binary package `%s'", pkgd.Filename)
	}

	// Obsolete files only matter on updates of non-preserved packages.
	if update && !pkgd.Preserve {
		if err := removeObsoletes(cfg.RootDir, pkgd.Name, pkgd.Version, oldManifest, filesd); err != nil {
			return failf(cfg, pkgd, err, "failed to remove obsolete files: %v", err)
		}
	}

	if err := metadata.SaveManifest(cfg.RootDir, pkgd.Name, filesd); err != nil {
		return failf(cfg, pkgd, err, "failed to externalize file manifest: %v", err)
	}
	return nil
}

// handleDataEntry routes one package data entry: digest-based skip for
// unchanged files, configuration-file policy, plain extraction otherwise.
func handleDataEntry(cfg *Config, pkgd *models.PackageDescriptor, ar *archive.Reader,
	entry *archive.Entry, prog *Progress, update bool, flags archive.Flags,
	filesd *models.FileManifest, propsd *models.Properties,
	oldManifest *models.FileManifest) (Action, error) {

	fullpath := filepath.Join(cfg.RootDir, entry.Path)

	if entry.Type != archive.TypeFile {
		if err := ar.Extract(entry, fullpath, flags); err != nil {
			return ActionKeep, failf(cfg, pkgd, err, "failed to extract file `%s': %v", entry.Path, err)
		}
		return ActionExtract, nil
	}

	confFile := propsd.IsConfFile(entry.Path)
	prog.IsConf = confFile

	fileExists := false
	if _, err := os.Lstat(fullpath); err == nil {
		fileExists = true

		// Unchanged files are never re-extracted, conf or not.
		if want, ok := filesd.DigestFor(entry.Path, confFile); ok {
			match, err := utils.FileDigestMatch(fullpath, want)
			if err != nil {
				return ActionKeep, failf(cfg, pkgd, &models.PkgError{
					Kind:   models.ErrDigestCheck,
					Pkgver: pkgd.Pkgver,
					Err:    err,
				}, "failed to check hash for `%s': %v", entry.Path, err)
			}
			if match {
				logrus.Debugf("%s: entry %s matches current digest, skipping",
					pkgd.Pkgver, entry.Path)
				return ActionKeep, nil
			}
		}
	}

	if confFile && fileExists {
		action, err := resolveConfFile(cfg, update, fullpath, entry.Path, oldManifest, pkgd.Name, pkgd.Version)
		if err != nil {
			return ActionKeep, failf(cfg, pkgd, err, "failed to resolve config file `%s': %v", entry.Path, err)
		}
		if action == ActionKeep {
			return ActionKeep, nil
		}
	}

	if err := ar.Extract(entry, fullpath, flags); err != nil {
		return ActionKeep, failf(cfg, pkgd, err, "failed to extract file `%s': %v", entry.Path, err)
	}
	return ActionExtract, nil
}

func ensureRootDir(root string) error {
	if _, err := os.Stat(root); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(root, 0750)
}

func decodeEntry(entry *archive.Entry, v interface{}) error {
	data, err := io.ReadAll(entry)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func invalidPkg(pkgd *models.PackageDescriptor, path string, err error) error {
	if path != "" {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return &models.PkgError{Kind: models.ErrInvalidPackage, Pkgver: pkgd.Pkgver, Err: err}
}
