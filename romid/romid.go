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

// Package romid defines RomId, the content-addressed identity of a ROM blob
// (§4.A). It generalises the teacher's digest package, which computes SHA-1
// hashes of the television's pixel/audio streams for regression testing,
// into the module's ROM identity primitive: note that the use of SHA-1 here
// is fine because this is not a cryptographic task, only a content-address.
package romid

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
)

// Size is the length, in bytes, of a RomId.
const Size = sha1.Size

// RomId is the SHA-1 digest identity of a ROM blob.
type RomId [Size]byte

// Calculate streams r and returns its RomId, without holding the entire blob
// in memory at once.
func Calculate(r io.Reader) (RomId, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return RomId{}, err
	}

	var id RomId
	copy(id[:], h.Sum(nil))
	return id, nil
}

// CalculateBytes is a convenience wrapper around Calculate for in-memory data.
func CalculateBytes(b []byte) RomId {
	var id RomId
	sum := sha1.Sum(b)
	copy(id[:], sum[:])
	return id
}

// Equal compares two RomIds in constant time.
func (id RomId) Equal(other RomId) bool {
	return subtle.ConstantTimeCompare(id[:], other[:]) == 1
}

// String returns the lowercase-hex representation.
func (id RomId) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value (no ROM identified yet).
func (id RomId) IsZero() bool {
	return id == RomId{}
}

// Parse decodes a lowercase-hex RomId string, as produced by String().
func Parse(s string) (RomId, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return RomId{}, err
	}
	if len(b) != Size {
		return RomId{}, errShortRomId{got: len(b)}
	}

	var id RomId
	copy(id[:], b)
	return id, nil
}

type errShortRomId struct {
	got int
}

func (e errShortRomId) Error() string {
	return fmt.Sprintf("romid: expected a %d-byte hex string, got %d bytes", Size, e.got)
}
