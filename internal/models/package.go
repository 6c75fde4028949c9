package models

// Transaction values a resolved package descriptor may carry.
const (
	TransactionInstall   = "install"
	TransactionUpdate    = "update"
	TransactionConfigure = "configure"
	TransactionRemove    = "remove"
)

// PackageDescriptor represents one binary package build as published in a
// repository index. Identity is Pkgver; two descriptors with an equal Pkgver
// are the same package version. Repository is empty in the index and set
// exactly once by the pool resolver on the copy it returns.
type PackageDescriptor struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Pkgver       string `json:"pkgver"`
	Architecture string `json:"architecture,omitempty"`
	Filename     string `json:"filename,omitempty"`
	SHA256Sum    string `json:"filename-sha256,omitempty"`
	Size         int64  `json:"filename-size,omitempty"`
	Description  string `json:"short_desc,omitempty"`
	Homepage     string `json:"homepage,omitempty"`
	License      string `json:"license,omitempty"`

	// Set by the transaction layer, never present in a repository index.
	Transaction string `json:"transaction,omitempty"`

	// Repository is the URI of the repository the descriptor was
	// resolved from.
	Repository string `json:"repository,omitempty"`

	Preserve         bool `json:"preserve,omitempty"`
	Hold             bool `json:"hold,omitempty"`
	AutomaticInstall bool `json:"automatic-install,omitempty"`
}

// Clone returns an owned copy of the descriptor, so callers can mutate the
// result independently of the repository index it came from.
func (p *PackageDescriptor) Clone() *PackageDescriptor {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
