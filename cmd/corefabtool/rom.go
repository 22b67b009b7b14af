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
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/romid"
)

func newRomCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rom", Short: "manage the local rom blob store"}
	cmd.AddCommand(newRomImportCmd(), newRomExportCmd(), newRomVerifyCmd())
	return cmd
}

func newRomImportCmd() *cobra.Command {
	var symlink bool

	cmd := &cobra.Command{
		Use:   "import <rom-path> [<rom-path>...]",
		Short: "import one or more rom files into the content-addressed store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &usageError{fmt.Errorf("rom import requires at least one path")}
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, path := range args {
				var id romid.RomId
				var err error
				if symlink {
					id, err = store.ImportPathSymlink(path)
				} else {
					id, err = store.ImportPath(path)
				}
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s\n", id, path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&symlink, "symlink", false, "symlink into the store instead of copying")
	return cmd
}

func newRomExportCmd() *cobra.Command {
	var symlink bool
	var styleName string

	cmd := &cobra.Command{
		Use:   "export <destination-dir>",
		Short: "export every known single-file program under destination-dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("rom export requires exactly one destination directory")}
			}
			style, err := parseExportStyle(styleName)
			if err != nil {
				return &usageError{err}
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			dest := args[0]
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}

			count := 0
			err = store.ForEach(func(id program.ProgramId, info program.ProgramInfo) error {
				if info.Kind != program.Single || info.Single == nil {
					// Complex, multi-file programs have no single blob to
					// place at one export path; skipped, not an error.
					return nil
				}

				romID, err := romid.Parse(info.Single.RomId)
				if err != nil {
					return err
				}

				destPath := filepath.Join(dest, program.ExportName(info, style))
				if symlink {
					if err := os.Symlink(store.BlobPath(romID), destPath); err != nil {
						return err
					}
				} else if err := copyBlob(store, romID, destPath); err != nil {
					return err
				}
				count++
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("corefabtool: exported %d program(s) to %s\n", count, dest)
			return nil
		},
	}
	cmd.Flags().BoolVar(&symlink, "symlink", false, "symlink exported files instead of copying")
	cmd.Flags().StringVar(&styleName, "style", "native", "export naming style: nointro, native, or emulationstation")
	return cmd
}

func copyBlob(store *program.Store, id romid.RomId, destPath string) error {
	r, err := store.OpenRom(id, program.Required)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = io.Copy(w, r)
	return err
}

func parseExportStyle(name string) (program.ExportStyle, error) {
	switch name {
	case "", "native":
		return program.StyleNative, nil
	case "nointro":
		return program.StyleNointro, nil
	case "emulationstation":
		return program.StyleEmulationStation, nil
	default:
		return 0, fmt.Errorf("unknown export style %q (want nointro, native, or emulationstation)", name)
	}
}

func newRomVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "check that every program in the metadata index has its rom blob(s) present",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			missing := 0
			err = store.ForEach(func(id program.ProgramId, info program.ProgramInfo) error {
				for _, romIdHex := range romIdsOf(info) {
					romID, err := romid.Parse(romIdHex)
					if err != nil {
						return err
					}
					if _, err := os.Stat(store.BlobPath(romID)); os.IsNotExist(err) {
						missing++
						fmt.Printf("missing: %s/%s rom %s\n", id.MachineId, id.Name, romIdHex)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			if missing > 0 {
				return fmt.Errorf("%d rom(s) missing from the store", missing)
			}
			fmt.Println("corefabtool: every indexed rom is present")
			return nil
		},
	}
}

func romIdsOf(info program.ProgramInfo) []string {
	if info.Kind == program.Single {
		if info.Single == nil {
			return nil
		}
		return []string{info.Single.RomId}
	}
	ids := make([]string, 0, len(info.Complex))
	for id := range info.Complex {
		ids = append(ids, id)
	}
	return ids
}
