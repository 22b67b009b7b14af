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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/resources"
)

// usageError marks an error as a bad-usage condition, mirroring
// cmd/corefab's exit-code split (§6) even though this binary's own CLI
// contract doesn't spell out exit codes explicitly; consistent behaviour
// across both binaries beats a silent asymmetry.
type usageError struct{ err error }

func (u *usageError) Error() string { return u.err.Error() }
func (u *usageError) Unwrap() error { return u.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "corefabtool",
		Short:         "rom store, metadata database and search utility",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDatabaseCmd(), newRomCmd(), newSearchCmd())
	return root
}

// openStore opens the same content-addressed rom store and metadata index
// cmd/corefab resolves at runtime, rooted under resources.AbsDataDir.
func openStore() (*program.Store, error) {
	dataDir, err := resources.AbsDataDir()
	if err != nil {
		return nil, err
	}
	return program.Open(filepath.Join(dataDir, "roms"), filepath.Join(dataDir, "programs.db"))
}

// Execute runs the root command against os.Args.
func Execute() int {
	return executeArgs(os.Args[1:])
}

func executeArgs(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "corefabtool:", err)

	var ue *usageError
	if stderrors.As(err, &ue) {
		return 2
	}
	return 1
}
