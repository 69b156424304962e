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

package cpu

import "github.com/carraway/advance/util"

// DecodedArmInstruction is a decoded 32-bit ARM instruction word. Go has
// no tagged union, so each variant is its own concrete type implementing
// this marker interface; the execute stage recovers the variant with a
// type switch.
type DecodedArmInstruction interface {
	instructionCond() uint8
}

// DataProcessingImmediate is a data-processing instruction whose second
// operand is an immediate rotated by an even amount.
type DataProcessingImmediate struct {
	Cond   uint8
	Opcode uint8
	S      bool
	Rn     uint8
	Rd     uint8
	Rotate uint8
	Imm    uint8
}

func (i DataProcessingImmediate) instructionCond() uint8 { return i.Cond }

// LoadStoreImmOffset is LDR/STR with a 12-bit immediate offset.
type LoadStoreImmOffset struct {
	Cond    uint8
	P       bool
	U       bool
	B       bool
	W       bool
	L       bool
	Rn      uint8
	Rd      uint8
	Imm12   uint16
}

func (i LoadStoreImmOffset) instructionCond() uint8 { return i.Cond }

// LoadStoreHalfImmOffset is LDRH/STRH with a split 8-bit immediate offset.
type LoadStoreHalfImmOffset struct {
	Cond   uint8
	P      bool
	U      bool
	W      bool
	L      bool
	Rn     uint8
	Rd     uint8
	ImmHi  uint8
	ImmLo  uint8
}

func (i LoadStoreHalfImmOffset) instructionCond() uint8 { return i.Cond }

// LoadStoreMultiple is LDM/STM.
type LoadStoreMultiple struct {
	Cond    uint8
	P       bool
	U       bool
	S       bool
	W       bool
	L       bool
	Rn      uint8
	RegList uint16
}

func (i LoadStoreMultiple) instructionCond() uint8 { return i.Cond }

// BranchImm is B/BL.
type BranchImm struct {
	Cond    uint8
	L       bool
	Offset24 uint32
}

func (i BranchImm) instructionCond() uint8 { return i.Cond }

// BranchAndExchangeReg is BX.
type BranchAndExchangeReg struct {
	Cond uint8
	Rm   uint8
}

func (i BranchAndExchangeReg) instructionCond() uint8 { return i.Cond }

// MoveToStatusReg is MSR (register form).
type MoveToStatusReg struct {
	Cond      uint8
	Saved     bool
	FieldMask uint8
	Rm        uint8
}

func (i MoveToStatusReg) instructionCond() uint8 { return i.Cond }

// Undefined is an instruction encoding the ARM architecture reserves but
// this decoder recognises the shape of (none currently produced; kept so
// execute's type switch has somewhere to route architecturally-undefined
// encodings once they're added).
type Undefined struct {
	Cond uint8
	Word uint32
}

func (i Undefined) instructionCond() uint8 { return i.Cond }

// Unknown is a word that matched none of the recognised patterns.
type Unknown struct {
	Cond uint8
	Word uint32
}

func (i Unknown) instructionCond() uint8 { return i.Cond }

// matchesPattern reports whether instr matches a fixed-order bit pattern.
// Positions in pattern other than '0' or '1' match any bit. pattern is
// given most-significant-bit first (bit 31 leftmost), spaces are ignored.
func matchesPattern(instr uint32, pattern string) bool {
	pos := uint(31)
	for _, c := range pattern {
		if c == ' ' {
			continue
		}
		bit := (instr >> pos) & 1
		switch c {
		case '0':
			if bit != 0 {
				return false
			}
		case '1':
			if bit != 1 {
				return false
			}
		}
		pos--
	}
	return true
}

// Decode turns a 32-bit instruction word into a DecodedArmInstruction.
// Patterns are tried in a fixed order, most specific first: BX and MSR
// overlap the general data-processing pattern and must be tested before
// it. The first match wins; an unmatched word decodes to Unknown.
func Decode(instr uint32) DecodedArmInstruction {
	cond := uint8(util.Bits(instr, 28, 31))

	if matchesPattern(instr, "cccc 0001 0010 1111 1111 1111 0001 mmmm") {
		return BranchAndExchangeReg{
			Cond: cond,
			Rm:   uint8(util.Bits(instr, 0, 3)),
		}
	}

	if matchesPattern(instr, "cccc 0001 0R10 ffff 1111 0000 0000 mmmm") {
		return MoveToStatusReg{
			Cond:      cond,
			Saved:     util.Bit(instr, 22) != 0,
			FieldMask: uint8(util.Bits(instr, 16, 19)),
			Rm:        uint8(util.Bits(instr, 0, 3)),
		}
	}

	if matchesPattern(instr, "cccc 000P U1WL nnnn dddd hhhh 1011 llll") {
		return LoadStoreHalfImmOffset{
			Cond:  cond,
			P:     util.Bit(instr, 24) != 0,
			U:     util.Bit(instr, 23) != 0,
			W:     util.Bit(instr, 21) != 0,
			L:     util.Bit(instr, 20) != 0,
			Rn:    uint8(util.Bits(instr, 16, 19)),
			Rd:    uint8(util.Bits(instr, 12, 15)),
			ImmHi: uint8(util.Bits(instr, 8, 11)),
			ImmLo: uint8(util.Bits(instr, 0, 3)),
		}
	}

	if matchesPattern(instr, "cccc 001o ooos nnnn dddd rrrr iiii iiii") {
		return DataProcessingImmediate{
			Cond:   cond,
			Opcode: uint8(util.Bits(instr, 21, 24)),
			S:      util.Bit(instr, 20) != 0,
			Rn:     uint8(util.Bits(instr, 16, 19)),
			Rd:     uint8(util.Bits(instr, 12, 15)),
			Rotate: uint8(util.Bits(instr, 8, 11)),
			Imm:    uint8(util.Bits(instr, 0, 7)),
		}
	}

	if matchesPattern(instr, "cccc 010P UBWL nnnn dddd iiii iiii iiii") {
		return LoadStoreImmOffset{
			Cond:  cond,
			P:     util.Bit(instr, 24) != 0,
			U:     util.Bit(instr, 23) != 0,
			B:     util.Bit(instr, 22) != 0,
			W:     util.Bit(instr, 21) != 0,
			L:     util.Bit(instr, 20) != 0,
			Rn:    uint8(util.Bits(instr, 16, 19)),
			Rd:    uint8(util.Bits(instr, 12, 15)),
			Imm12: uint16(util.Bits(instr, 0, 11)),
		}
	}

	if matchesPattern(instr, "cccc 100P USWL nnnn rrrr rrrr rrrr rrrr") {
		return LoadStoreMultiple{
			Cond:    cond,
			P:       util.Bit(instr, 24) != 0,
			U:       util.Bit(instr, 23) != 0,
			S:       util.Bit(instr, 22) != 0,
			W:       util.Bit(instr, 21) != 0,
			L:       util.Bit(instr, 20) != 0,
			Rn:      uint8(util.Bits(instr, 16, 19)),
			RegList: uint16(util.Bits(instr, 0, 15)),
		}
	}

	if matchesPattern(instr, "cccc 101L iiii iiii iiii iiii iiii iiii") {
		return BranchImm{
			Cond:     cond,
			L:        util.Bit(instr, 24) != 0,
			Offset24: util.Bits(instr, 0, 23),
		}
	}

	return Unknown{Cond: cond, Word: instr}
}
