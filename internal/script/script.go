// Package script runs package control scripts (INSTALL/REMOVE).
package script

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Runner executes a control script with the conventional argument vector:
// action, package name, version, "yes"/"no" update marker and the manager
// configuration file path. A non-zero exit status is returned as an error.
type Runner func(path, action, pkgname, version string, update bool, conffile string) error

// Execute is the default Runner, invoking the script as a subprocess.
func Execute(path, action, pkgname, version string, update bool, conffile string) error {
	updateArg := "no"
	if update {
		updateArg = "yes"
	}

	logrus.Debugf("executing %s %s for %s-%s", path, action, pkgname, version)
	cmd := exec.Command(path, action, pkgname, version, updateArg, conffile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s script %s action exited with status %d",
				pkgname, action, exitErr.ExitCode())
		}
		return fmt.Errorf("failed to execute %s: %w", path, err)
	}
	return nil
}
