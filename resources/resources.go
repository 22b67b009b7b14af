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

// Package resources resolves paths relative to the platform data directory
// (the root all of save/snapshot archives, the ROM store, the metadata
// database and the environment file live under).
package resources

import (
	"os"
	"path/filepath"
)

// dataDirName is the platform data directory, relative to wherever the
// caller decides to root it (see AbsDataDir).
const dataDirName = ".corefab"

// JoinPath joins the given path elements onto the (relative) platform data
// directory, ignoring empty elements. It performs no filesystem access;
// callers that need an absolute, creatable location should join the result
// onto AbsDataDir().
func JoinPath(elements ...string) (string, error) {
	parts := []string{dataDirName}
	for _, e := range elements {
		if e == "" {
			continue
		}
		parts = append(parts, e)
	}
	return filepath.Join(parts...), nil
}

// AbsDataDir returns the absolute platform data directory, rooted at the
// user's home directory unless overridden by COREFAB_HOME, creating it if
// necessary.
func AbsDataDir() (string, error) {
	var root string

	if d := os.Getenv("COREFAB_HOME"); d != "" {
		root = d
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		root = filepath.Join(home, dataDirName)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}

	return root, nil
}
