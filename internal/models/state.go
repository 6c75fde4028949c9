package models

// InstallState is the persisted per-package install state. The unpack engine
// only ever writes StateHalfUnpacked and StateUnpacked; the other values are
// owned by configuration and repair tooling.
type InstallState string

const (
	StateNotInstalled InstallState = "not-installed"
	StateHalfUnpacked InstallState = "half-unpacked"
	StateUnpacked     InstallState = "unpacked"
	StateInstalled    InstallState = "installed"
	StateBroken       InstallState = "broken"
	StateConfigFiles  InstallState = "config-files"
)

// Valid reports whether s is one of the defined install states.
func (s InstallState) Valid() bool {
	switch s {
	case StateNotInstalled, StateHalfUnpacked, StateUnpacked,
		StateInstalled, StateBroken, StateConfigFiles:
		return true
	}
	return false
}
