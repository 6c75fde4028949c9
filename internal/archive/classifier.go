package archive

// Well-known metadata entry paths inside a binary package.
const (
	InstallScriptName = "INSTALL"
	RemoveScriptName  = "REMOVE"
	FileManifestName  = "files.json"
	PropsManifestName = "props.json"
)

// Kind is the role of an archive entry in a binary package.
type Kind int

const (
	// KindData is any entry that is not one of the special metadata
	// entries: a regular file, symlink or other payload.
	KindData Kind = iota
	KindInstallScript
	KindRemoveScript
	KindFileManifest
	KindPropsManifest
	// KindDirectory entries are skipped entirely.
	KindDirectory
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindInstallScript:
		return "install-script"
	case KindRemoveScript:
		return "remove-script"
	case KindFileManifest:
		return "file-manifest"
	case KindPropsManifest:
		return "properties-manifest"
	case KindDirectory:
		return "directory"
	default:
		return "data"
	}
}

// Classify decides the role of an archive entry. The four special entries
// are matched by their fixed root-relative paths; directories are
// recognized by file type; everything else is package data.
func Classify(e *Entry) Kind {
	if e.Type == TypeDir {
		return KindDirectory
	}
	switch e.Path {
	case InstallScriptName:
		return KindInstallScript
	case RemoveScriptName:
		return KindRemoveScript
	case FileManifestName:
		return KindFileManifest
	case PropsManifestName:
		return KindPropsManifest
	}
	return KindData
}
