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

package nes

import (
	"github.com/multiconsole/corefab/curated"
)

const (
	inesHeaderSize = 16
	inesMagic      = "NES\x1a"
	prgBankSize    = 16 * 1024
	chrBankSize    = 8 * 1024
	trainerSize    = 512
)

// inesHeader is the decoded iNES file header (§13, grounded on
// original_source/definition/nes/src/cartridge/ines.rs -- filtered out of
// the retrieval pack as pure data-format parsing, but the iNES layout is the
// long-standardised public format, not a guess). INes.parse in the original
// returns a richer struct (region/timing mode, among others); this boundary
// keeps only what the mapper needs to carve PRG/CHR out of the file and
// what definition/nes's cartridge exposes for the bus-conflict decision
// (§9 OQ3).
type inesHeader struct {
	Mapper   uint8
	PRGBanks int
	CHRBanks int
	Battery  bool
	Trainer  bool
}

// parseINes decodes an iNES header and slices PRG/CHR ROM data out of raw.
func parseINes(raw []byte) (*inesHeader, []byte, []byte, error) {
	if len(raw) < inesHeaderSize || string(raw[:4]) != inesMagic {
		return nil, nil, nil, curated.Errorf("nes: not an iNES image")
	}

	h := &inesHeader{
		PRGBanks: int(raw[4]),
		CHRBanks: int(raw[5]),
		Battery:  raw[6]&(1<<1) != 0,
		Trainer:  raw[6]&(1<<2) != 0,
		Mapper:   (raw[6] >> 4) | (raw[7] & 0xf0),
	}

	offset := inesHeaderSize
	if h.Trainer {
		offset += trainerSize
	}

	prgSize := h.PRGBanks * prgBankSize
	if offset+prgSize > len(raw) {
		return nil, nil, nil, curated.Errorf("nes: iNES image truncated in PRG ROM")
	}
	prg := raw[offset : offset+prgSize]
	offset += prgSize

	chrSize := h.CHRBanks * chrBankSize
	if offset+chrSize > len(raw) {
		return nil, nil, nil, curated.Errorf("nes: iNES image truncated in CHR ROM")
	}
	chr := raw[offset : offset+chrSize]

	return h, prg, chr, nil
}
