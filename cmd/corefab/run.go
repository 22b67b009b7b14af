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
	"context"
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/multiconsole/corefab/logger"
	"github.com/multiconsole/corefab/program"
	"github.com/multiconsole/corefab/resources"
	"github.com/multiconsole/corefab/romid"
)

// headlessTick is the bounded span the run loop advances the scheduler by.
// Absent a display or audio backend to pace real-time playback (§14
// Non-goal "GUI/menu layer"), there is no wall-clock to drive the machine
// against, so this build exercises one macro tick rather than looping
// forever.
var headlessTick = big.NewRat(1, 60)

func newRunCmd() *cobra.Command {
	var forcedMachineId string

	cmd := &cobra.Command{
		Use:   "run <rom-path> [<rom-path>...]",
		Short: "build and run a machine from one or more rom files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &usageError{fmt.Errorf("run requires at least one rom path")}
			}
			return runMachine(cmd.Context(), args, forcedMachineId)
		},
	}
	cmd.Flags().StringVar(&forcedMachineId, "forced-machine-id", "",
		"skip identification and build this machine id directly")
	return cmd
}

// runMachine imports every given rom path into the local store, identifies
// (or accepts forcedMachineId as) the machine it belongs to, stages and
// builds that machine, and runs it for one headless tick.
func runMachine(ctx context.Context, romPaths []string, forcedMachineId string) error {
	dataDir, err := resources.AbsDataDir()
	if err != nil {
		return err
	}

	store, err := program.Open(filepath.Join(dataDir, "roms"), filepath.Join(dataDir, "programs.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	ids := make([]romid.RomId, 0, len(romPaths))
	for _, p := range romPaths {
		id, err := store.ImportPath(p)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	machineId := forcedMachineId
	if machineId == "" {
		pid, _, found, err := store.IdentifyRomIds(ids)
		if err != nil {
			return err
		}
		if !found {
			return &usageError{fmt.Errorf("could not identify a machine for the given rom(s), pass --forced-machine-id")}
		}
		machineId = pid.MachineId
	}

	build, ok := manifests[machineId]
	if !ok {
		return &usageError{fmt.Errorf("unknown machine id %q", machineId)}
	}

	b, _ := build(ids[0], store)
	if b.Err() != nil {
		return b.Err()
	}

	m, err := b.Build(ctx, nil, nil)
	if err != nil {
		return err
	}

	logger.Logf("corefab", "built machine id=%s rom=%s", machineId, romPaths[0])

	if err := m.Scheduler.Run(headlessTick); err != nil {
		return err
	}

	fmt.Printf("corefab: %s machine ran (headless; no GUI/audio backend in this build)\n", machineId)
	return nil
}
