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

package cpu_test

import (
	"math/rand"
	"testing"

	"github.com/carraway/advance/cpu"
	"github.com/carraway/advance/test"
)

func TestDecodeMovImmediate(t *testing.T) {
	got := cpu.Decode(0xE3A00302)
	test.ExpectEquality(t, got, cpu.DataProcessingImmediate{
		Cond: 0b1110, Opcode: 0b1101, S: false, Rn: 0, Rd: 0, Rotate: 3, Imm: 0x02,
	})
}

func TestDecodeCmpImmediate(t *testing.T) {
	got := cpu.Decode(0xE35100EA)
	test.ExpectEquality(t, got, cpu.DataProcessingImmediate{
		Cond: 0b1110, Opcode: 0b1010, S: true, Rn: 1, Rd: 0, Rotate: 0, Imm: 234,
	})
}

func TestDecodeLdrPcRelative(t *testing.T) {
	got := cpu.Decode(0xE59FD0B8)
	test.ExpectEquality(t, got, cpu.LoadStoreImmOffset{
		Cond: 0b1110, P: true, U: true, B: false, W: false, L: true,
		Rn: 15, Rd: 13, Imm12: 0xB8,
	})
}

func TestDecodeLdrb(t *testing.T) {
	got := cpu.Decode(0xE5D01003)
	test.ExpectEquality(t, got, cpu.LoadStoreImmOffset{
		Cond: 0b1110, P: true, U: true, B: true, W: false, L: true,
		Rn: 0, Rd: 1, Imm12: 3,
	})
}

func TestDecodeStr(t *testing.T) {
	got := cpu.Decode(0xE5800208)
	test.ExpectEquality(t, got, cpu.LoadStoreImmOffset{
		Cond: 0b1110, P: true, U: true, B: false, W: false, L: false,
		Rn: 0, Rd: 0, Imm12: 520,
	})
}

func TestDecodeStrh(t *testing.T) {
	got := cpu.Decode(0xE0C010B2)
	test.ExpectEquality(t, got, cpu.LoadStoreHalfImmOffset{
		Cond: 0b1110, P: false, U: true, W: false, L: false,
		Rn: 0, Rd: 1, ImmHi: 0, ImmLo: 2,
	})
}

func TestDecodeBranchImm(t *testing.T) {
	got := cpu.Decode(0xEA000006)
	test.ExpectEquality(t, got, cpu.BranchImm{Cond: 0b1110, L: false, Offset24: 6})
}

func TestDecodeBx(t *testing.T) {
	got := cpu.Decode(0xE12FFF10)
	test.ExpectEquality(t, got, cpu.BranchAndExchangeReg{Cond: 0b1110, Rm: 0})
}

func TestDecodeMsr(t *testing.T) {
	got := cpu.Decode(0xE129F000)
	test.ExpectEquality(t, got, cpu.MoveToStatusReg{
		Cond: 0b1110, Saved: false, FieldMask: 0b1001, Rm: 0,
	})
}

func TestDecodeStmdb(t *testing.T) {
	got := cpu.Decode(0xE92D0003)
	test.ExpectEquality(t, got, cpu.LoadStoreMultiple{
		Cond: 0b1110, P: true, U: false, S: false, W: true, L: false,
		Rn: 13, RegList: 0b11,
	})
}

// Fuzzes over random words: each should produce exactly one decoded
// variant (including Unknown), never panic.
func TestDecodeFuzzNeverPanics(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1<<16; i++ {
		word := r.Uint32()
		got := cpu.Decode(word)
		if got == nil {
			t.Fatalf("decode of 0x%08X returned nil", word)
		}
	}
}
