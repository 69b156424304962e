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
	"encoding/binary"
	"testing"

	"github.com/carraway/advance/bus"
	"github.com/carraway/advance/cpu"
	"github.com/carraway/advance/memory"
	"github.com/carraway/advance/scheduler"
	"github.com/carraway/advance/test"
)

// harness wires a CPU directly to a Memory unit over a shared Bus, driven
// by a real Scheduler, so pipeline timing tests exercise the same code
// path production wiring would use.
type harness struct {
	b   *bus.Bus
	m   *memory.Memory
	c   *cpu.CPU
	sch *scheduler.Scheduler
}

func newHarness(t *testing.T, iwram map[uint32]uint32) *harness {
	t.Helper()

	b := bus.New()
	m := memory.New(b, nil, nil, 0, memory.DefaultCartTiming())
	c := cpu.New(b, 0x03000000)

	for addr, word := range iwram {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], word)
		for i, by := range buf {
			test.ExpectSuccess(t, m.Poke(addr+uint32(i), by))
		}
	}

	sch := scheduler.New()
	sch.AddTask(c.Task())
	sch.AddTask(m.Task())

	return &harness{b: b, m: m, c: c, sch: sch}
}

func (h *harness) runCycles(n uint64) {
	h.sch.RunFor(n)
}

func TestMovImmediateExecutesOnThirdCycle(t *testing.T) {
	// mov r0, #0x08000000 at the reset vector; IWRAM is 1-cycle memory so
	// three pipeline cycles (two refill bubbles, then execute) suffice.
	h := newHarness(t, map[uint32]uint32{
		0x03000000: 0xE3A00302,
	})
	h.runCycles(3)
	test.ExpectEquality(t, h.c.R(0), uint32(0x08000000))
}

func TestBranchCausesTwoCycleBubbleThenRetargetsFetch(t *testing.T) {
	// b +0x20 at the reset vector (IWRAM base); after the branch executes
	// on the third cycle, the pipeline refills from the new target.
	h := newHarness(t, map[uint32]uint32{
		0x03000000: 0xEA000006, // b pc+0x20 (relative to IWRAM base)
	})
	h.runCycles(3)
	// the branch retargets pc to base+0x20 during its own execute cycle;
	// that same cycle's fetch stage then advances pc by 4 past it.
	test.ExpectEquality(t, h.c.R(15), uint32(0x03000000+0x20+4))
}

func TestBranchWithLinkSetsLinkRegister(t *testing.T) {
	h := newHarness(t, map[uint32]uint32{
		0x03000000: 0xEB000006, // bl pc+0x20
	})
	h.runCycles(3)
	test.ExpectEquality(t, h.c.R(14), uint32(0x03000000+4))
}

func TestLoadImmediateWritesDestinationRegister(t *testing.T) {
	h := newHarness(t, map[uint32]uint32{
		0x03000000: 0xE59F0000, // ldr r0, [pc, #0]
		0x03000008: 0xCAFEBABE, // value at pc+8 (the ldr's own pc+8 base)
	})
	h.runCycles(8)
	test.ExpectEquality(t, h.c.R(0), uint32(0xCAFEBABE))
}

func TestStmdbDecrementsBeforeAndWritesBack(t *testing.T) {
	h := newHarness(t, map[uint32]uint32{
		0x03000000: 0xE92D0003, // stmdb sp!, {r0, r1}
		0x03000004: 0xE3A02009, // mov r2, #9 -- must run exactly once, after the stm
	})
	// seed r13 (sp), r0, r1 directly via the register file before running
	h.c.SetRForTest(13, 0x03000100)
	h.c.SetRForTest(0, 0x11111111)
	h.c.SetRForTest(1, 0x22222222)

	h.runCycles(10)

	test.ExpectEquality(t, h.c.R(13), uint32(0x030000F8))

	v0, err := h.m.Peek(0x030000F8)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v0, byte(0x11))

	v1, err := h.m.Peek(0x030000FC)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v1, byte(0x22))

	// the stm must not re-dispatch: if it did, r13 would decrement and
	// write back a second time and mov r2 would never be reached.
	test.ExpectEquality(t, h.c.R(2), uint32(9))
	if h.c.R(15) <= 0x03000004 {
		t.Fatalf("pc did not advance past the instruction following the stm: R(15)=0x%08X", h.c.R(15))
	}
}

func TestConditionFailureActsAsNop(t *testing.T) {
	h := newHarness(t, map[uint32]uint32{
		// moveq r0, #1 -- Z starts clear, so this must not execute
		0x03000000: 0x03A00001,
	})
	h.runCycles(3)
	test.ExpectEquality(t, h.c.R(0), uint32(0))
}
