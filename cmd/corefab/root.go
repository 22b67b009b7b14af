// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// usageError marks an error as a bad-usage condition so Execute can pick
// exit code 2 for it (§6 "Exit codes: 0 clean, 1 unrecoverable error, 2 bad
// usage") rather than the 1 an ordinary runtime failure gets. cobra itself
// only distinguishes "an error occurred"; this wrapper carries the rest.
type usageError struct{ err error }

func (u *usageError) Error() string { return u.err.Error() }
func (u *usageError) Unwrap() error { return u.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "corefab",
		Short:         "multiconsole machine core frontend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUIStub()
		},
	}
	root.AddCommand(newRunCmd())
	return root
}

// runGUIStub stands in for the frontend's no-argument path (§6 "no flags ->
// open GUI"). A windowed, audio-backed frontend is an explicit Non-goal
// (§14 "GUI/menu layer"), so bare invocation reports that clearly rather
// than silently doing nothing.
func runGUIStub() error {
	fmt.Fprintln(os.Stderr, "corefab: no rom path given; this build has no GUI frontend, use `corefab run <rom-path>...`")
	return fmt.Errorf("GUI frontend is not part of this build")
}

// Execute runs the root command against os.Args and maps its outcome onto
// §6's exit code contract.
func Execute() int {
	return executeArgs(os.Args[1:])
}

// executeArgs is Execute with the argument vector injectable, so tests can
// drive the command tree without touching os.Args.
func executeArgs(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "corefab:", err)

	var ue *usageError
	if stderrors.As(err, &ue) {
		return 2
	}
	return 1
}
