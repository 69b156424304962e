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

import "math/bits"

// addWithCarry computes x + y + carryIn as a 33-bit sum, returning the
// 32-bit result along with the carry and signed-overflow flags that
// result defines.
func addWithCarry(x, y uint32, carryIn bool) (result uint32, carryOut, overflowOut bool) {
	var cin uint64
	if carryIn {
		cin = 1
	}
	sum := uint64(x) + uint64(y) + cin
	result = uint32(sum)
	carryOut = sum>>32 != 0
	overflowOut = ((x^result)&(y^result))&0x80000000 != 0
	return
}

// rotateImmediate applies the data-processing immediate shifter: the 8-bit
// immediate rotated right by 2*rotate bits. The shifter carry-out equals
// the result's top bit when rotate is non-zero, otherwise the incoming C
// flag passes through unchanged.
func rotateImmediate(imm uint8, rotate uint8, carryIn bool) (value uint32, shifterCarry bool) {
	value = bits.RotateLeft32(uint32(imm), -int(2*rotate))
	if rotate != 0 {
		return value, value>>31 != 0
	}
	return value, carryIn
}

// dataProcessingResult is what the ALU produces for one data-processing
// operation: the value bound for Rd (when the opcode writes it) and the
// flags that a flag-setting form would latch.
type dataProcessingResult struct {
	value      uint32
	writesRd   bool
	carryOut   bool
	overflow   bool
}

// compute implements the table in the ARM data-processing opcode map: the
// operation, and its carry/overflow policy.
func compute(opcode uint8, op1, op2 uint32, carryIn bool, shifterCarry bool, currentV bool) dataProcessingResult {
	logic := func(value uint32) dataProcessingResult {
		return dataProcessingResult{value: value, writesRd: true, carryOut: shifterCarry, overflow: currentV}
	}
	compareLogic := func(value uint32) dataProcessingResult {
		r := logic(value)
		r.writesRd = false
		return r
	}
	arith := func(value uint32, c, v bool) dataProcessingResult {
		return dataProcessingResult{value: value, writesRd: true, carryOut: c, overflow: v}
	}
	compareArith := func(value uint32, c, v bool) dataProcessingResult {
		r := arith(value, c, v)
		r.writesRd = false
		return r
	}

	switch opcode {
	case 0: // AND
		return logic(op1 & op2)
	case 8: // TST
		return compareLogic(op1 & op2)
	case 1: // EOR
		return logic(op1 ^ op2)
	case 9: // TEQ
		return compareLogic(op1 ^ op2)
	case 2: // SUB
		v, c, o := addWithCarry(op1, ^op2, true)
		return arith(v, c, o)
	case 10: // CMP
		v, c, o := addWithCarry(op1, ^op2, true)
		return compareArith(v, c, o)
	case 3: // RSB
		v, c, o := addWithCarry(op2, ^op1, true)
		return arith(v, c, o)
	case 4: // ADD
		v, c, o := addWithCarry(op1, op2, false)
		return arith(v, c, o)
	case 11: // CMN
		v, c, o := addWithCarry(op1, op2, false)
		return compareArith(v, c, o)
	case 5: // ADC
		v, c, o := addWithCarry(op1, op2, carryIn)
		return arith(v, c, o)
	case 6: // SBC
		v, c, o := addWithCarry(op1, ^op2, carryIn)
		return arith(v, c, o)
	case 7: // RSC
		v, c, o := addWithCarry(op2, ^op1, carryIn)
		return arith(v, c, o)
	case 12: // ORR
		return logic(op1 | op2)
	case 13: // MOV
		return logic(op2)
	case 14: // BIC
		return logic(op1 &^ op2)
	case 15: // MVN
		return logic(^op2)
	default:
		return logic(0)
	}
}
