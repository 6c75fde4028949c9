package models

// ManifestEntry is one recorded file, configuration file or symlink in a
// package file manifest.
type ManifestEntry struct {
	Path   string `json:"file"`
	SHA256 string `json:"sha256,omitempty"`
	Target string `json:"target,omitempty"` // symlink target
}

// FileManifest is the internalized files metadata entry of a binary package:
// every path the package owns, with per-file digests. A path listed in
// ConfFiles must not also appear in Files.
type FileManifest struct {
	Files     []ManifestEntry `json:"files,omitempty"`
	ConfFiles []ManifestEntry `json:"conf_files,omitempty"`
	Links     []ManifestEntry `json:"links,omitempty"`
}

// EntryCount returns the number of recorded files, conf files and links.
func (m *FileManifest) EntryCount() int {
	if m == nil {
		return 0
	}
	return len(m.Files) + len(m.ConfFiles) + len(m.Links)
}

// DigestFor returns the recorded digest for path, searching the conf_files
// collection when conf is set and the files collection otherwise.
func (m *FileManifest) DigestFor(path string, conf bool) (string, bool) {
	if m == nil {
		return "", false
	}
	entries := m.Files
	if conf {
		entries = m.ConfFiles
	}
	for i := range entries {
		if entries[i].Path == path {
			return entries[i].SHA256, true
		}
	}
	return "", false
}

// PathSet returns every path recorded in the manifest across all three
// collections.
func (m *FileManifest) PathSet() map[string]struct{} {
	set := make(map[string]struct{})
	if m == nil {
		return set
	}
	for _, coll := range [][]ManifestEntry{m.Files, m.ConfFiles, m.Links} {
		for i := range coll {
			set[coll[i].Path] = struct{}{}
		}
	}
	return set
}
