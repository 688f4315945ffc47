/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cmd contains the command-line interface for the groundseg
// reference driver.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var configFile string

// RootCmd is the groundseg command. It takes one positional argument, a
// path to a whitespace-separated list of "x y z" point triples
// (spec.md 6).
var RootCmd = &cobra.Command{
	Use:   "groundseg [points-file]",
	Short: "Segment a ground-surface point cloud into planar regions.",
	Args:  cobra.ExactArgs(1),
	RunE:  runE,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"path to a TOML configuration file overriding the built-in defaults")
}

// exitCode classifies a CLI-level failure into the exit codes named in
// spec.md 6: 1 for usage errors, 2 for point-file parse errors, 3 for
// numeric failures.
type exitCode struct {
	code int
	err  error
}

func (e *exitCode) Error() string { return e.err.Error() }
func (e *exitCode) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &exitCode{code: 1, err: newSprintfError(format, args...)}
}

func parseErrorf(format string, args ...interface{}) error {
	return &exitCode{code: 2, err: newSprintfError(format, args...)}
}

func numericError(err error) error {
	return &exitCode{code: 3, err: err}
}

// ExitCodeFor returns the process exit code for an error returned from
// RootCmd.Execute(). A nil error yields 0; an unrecognized error yields 1.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var ec *exitCode
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}
