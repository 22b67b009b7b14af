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
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "database", Short: "manage the local program metadata index"}
	cmd.AddCommand(newDatabaseImportCmd(), newDatabaseRedumpCmd())
	return cmd
}

func newDatabaseImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "bulk-load program metadata entries from a JSON database file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("database import requires exactly one path")}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.ImportDatabase(f)
			if err != nil {
				return err
			}
			fmt.Printf("corefabtool: imported %d program metadata entries\n", n)
			return nil
		},
	}
}

// newDatabaseRedumpCmd is an explicit, named stub: fetching DAT files over
// the network is out of scope for this build (§1 "the ROM-database
// import/export tooling" is the deep tooling behind this command, not the
// command surface itself, which §6 names explicitly). `database import`
// reads a JSON array of program metadata entries; it does not parse Redump
// DAT files.
func newDatabaseRedumpCmd() *cobra.Command {
	redump := &cobra.Command{Use: "redump", Short: "redump.org DAT management"}
	redump.AddCommand(&cobra.Command{
		Use:   "download [systems...|all]",
		Short: "fetch Redump DAT files over the network (not part of this build)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("database redump download requires network access and is out of scope for this build; `database import` reads JSON metadata, not DAT files")
		},
	})
	return redump
}
