package unpack

import (
	"github.com/ralt/xpkg/internal/archive"
	"github.com/ralt/xpkg/internal/script"
)

// Config carries the runtime context for one unpack transaction. It is
// treated as immutable by the engine; a zero value plus RootDir is a valid
// configuration.
type Config struct {
	// RootDir is the target filesystem root. Created if missing.
	RootDir string

	// ConfFile is the manager configuration file path handed to control
	// scripts.
	ConfFile string

	// Flags override the privilege-derived extraction flags when set.
	Flags *archive.Flags

	// RunScript overrides the control script runner; the default executes
	// the script as a subprocess.
	RunScript script.Runner

	// OnProgress, when set, is invoked after each fully handled entry.
	OnProgress ProgressFunc

	// OnEvent, when set, receives unpack lifecycle events.
	OnEvent EventFunc
}

func (cfg *Config) flags() archive.Flags {
	if cfg.Flags != nil {
		return *cfg.Flags
	}
	return archive.DefaultFlags()
}

func (cfg *Config) runner() script.Runner {
	if cfg.RunScript != nil {
		return cfg.RunScript
	}
	return script.Execute
}

func (cfg *Config) event(ev Event) {
	if cfg.OnEvent != nil {
		cfg.OnEvent(ev)
	}
}

func (cfg *Config) progress(p *Progress) {
	if cfg.OnProgress != nil {
		cfg.OnProgress(p)
	}
}
